package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

var adminPermission int64 = discordgo.PermissionAdministrator

// registerEngineCommands wires the round-engine admin commands.
func registerEngineCommands(r *CommandRegistry) {
	r.Register(startCommand())
	r.Register(stopCommand())
	r.Register(shutdownCommand())
	r.Register(postCommand())
	r.Register(refreshCommand())
	r.Register(setBlockCommand())
	r.Register(setRewardsCommand())
	r.Register(setBaseRewardCommand())
	r.Register(setDurationCommand())
	r.Register(runBlocksCommand())
}

func startCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "start",
		Description:              "Open mining for picks",
		DefaultMemberPermissions: &adminPermission,
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		changed := b.Deps.Engine.SetActive(context.Background(), true)
		msg := "Mining is already running."
		if changed {
			msg = "⛏️ Mining is open - pick your runes!"
			b.refresher.RequestRefresh()
		}
		sendEmbed(s, i, createEmbed("Game Started", msg, ColorSuccess, FooterGlyphBotAdmin))
	}

	return cmd, handler
}

func stopCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "stop",
		Description:              "Pause mining (blocks keep advancing)",
		DefaultMemberPermissions: &adminPermission,
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		changed := b.Deps.Engine.SetActive(context.Background(), false)
		msg := "Mining is already paused."
		if changed {
			msg = "🛑 Mining paused. Picks are rejected until the next /start."
			b.refresher.RequestRefresh()
		}
		sendEmbed(s, i, createEmbed("Game Stopped", msg, ColorWarning, FooterGlyphBotAdmin))
	}

	return cmd, handler
}

func shutdownCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "shutdown",
		Description:              "Flush state and shut the bot down",
		DefaultMemberPermissions: &adminPermission,
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		sendEmbed(s, i, createEmbed("Shutting Down", "Flushing state and going offline. 👋", ColorDanger, FooterGlyphBotAdmin))
		if b.Deps.Shutdown != nil {
			b.Deps.Shutdown()
		}
	}

	return cmd, handler
}

func postCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "post",
		Description:              "Post a fresh game panel in this channel",
		DefaultMemberPermissions: &adminPermission,
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferEphemeral(s, i) {
			return
		}
		if err := b.refresher.Post(context.Background()); err != nil {
			slog.Error(LogMsgPanelPostFailed, "error", err)
			respondError(s, i, MsgGenericError)
			return
		}
		respondError(s, i, "Panel posted.")
	}

	return cmd, handler
}

func refreshCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "refresh",
		Description:              "Force a panel refresh",
		DefaultMemberPermissions: &adminPermission,
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferEphemeral(s, i) {
			return
		}
		b.refresher.RequestRefresh()
		respondError(s, i, "Panel refresh requested.")
	}

	return cmd, handler
}

func setBlockCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "setblock",
		Description:              "Set the current block number",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "block",
				Description: "Block number (>= 1)",
				Required:    true,
				MinValue:    &[]float64{1}[0],
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		block := getOptions(i)[0].IntValue()
		if err := b.Deps.Engine.SetCurrentBlock(context.Background(), block); err != nil {
			respondFriendlyError(s, i, err.Error())
			return
		}
		b.refresher.RequestRefresh()
		sendEmbed(s, i, createEmbed("Block Set", fmt.Sprintf("Current block is now **%d**.", block), ColorNeutral, FooterGlyphBotAdmin))
	}

	return cmd, handler
}

func setRewardsCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "setrewards",
		Description:              "Set total rewards per block",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "amount",
				Description: "Total glyphs per block",
				Required:    true,
				MinValue:    &[]float64{1}[0],
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		amount := getOptions(i)[0].IntValue()
		if err := b.Deps.Engine.SetTotalRewards(context.Background(), amount); err != nil {
			respondFriendlyError(s, i, err.Error())
			return
		}
		sendEmbed(s, i, createEmbed("Rewards Set", fmt.Sprintf("Total rewards per block: **%s**.", formatGlyphs(amount)), ColorNeutral, FooterGlyphBotAdmin))
	}

	return cmd, handler
}

func setBaseRewardCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "setbasereward",
		Description:              "Set the base reward used for payout tiers",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "amount",
				Description: "Base reward in glyphs",
				Required:    true,
				MinValue:    &[]float64{1}[0],
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		amount := getOptions(i)[0].IntValue()
		if err := b.Deps.Engine.SetBaseReward(context.Background(), amount); err != nil {
			respondFriendlyError(s, i, err.Error())
			return
		}
		sendEmbed(s, i, createEmbed("Base Reward Set", fmt.Sprintf("Base reward: **%s**.", formatGlyphs(amount)), ColorNeutral, FooterGlyphBotAdmin))
	}

	return cmd, handler
}

func setDurationCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "setduration",
		Description:              "Set block duration and restart the countdown",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "seconds",
				Description: "Block duration in seconds",
				Required:    true,
				MinValue:    &[]float64{1}[0],
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		seconds := getOptions(i)[0].IntValue()
		if err := b.Deps.Engine.SetBlockDuration(context.Background(), seconds); err != nil {
			respondFriendlyError(s, i, err.Error())
			return
		}
		b.refresher.RequestRefresh()
		sendEmbed(s, i, createEmbed("Duration Set", fmt.Sprintf("Blocks now last **%d** seconds; countdown restarted.", seconds), ColorNeutral, FooterGlyphBotAdmin))
	}

	return cmd, handler
}

func runBlocksCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "runblocks",
		Description:              "Run a fixed number of blocks, then shut down",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "blocks",
				Description: "How many blocks to run",
				Required:    true,
				MinValue:    &[]float64{1}[0],
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		blocks := int(getOptions(i)[0].IntValue())
		b.Deps.Engine.StartAutorun(context.Background(), blocks)
		b.Deps.Engine.SetActive(context.Background(), true)
		sendEmbed(s, i, createEmbed("Autorun Armed",
			fmt.Sprintf("Running **%d** more blocks, then shutting down.", blocks),
			ColorWarning, FooterGlyphBotAdmin))
	}

	return cmd, handler
}
