package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/runeworks/glyphbot/internal/utils"
)

// registerGrumbleCommands wires the grumble side-game commands.
func registerGrumbleCommands(r *CommandRegistry) {
	r.Register(grumbleCommand())
	r.Register(grumbleRestartCommand())
	r.Register(grumblePanelCommand())
	r.Register(grumbleTimerCommand())
}

func grumbleCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "grumble",
		Description:              "Start a grumble ending at the next block",
		DefaultMemberPermissions: &adminPermission,
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		ctx := context.Background()
		g, err := b.Deps.Grumble.Start(ctx)
		if err != nil {
			respondFriendlyError(s, i, err.Error())
			return
		}

		embed := grumbleEmbed(b, g.PrizePool, 0)
		msg, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Embeds:     &[]*discordgo.MessageEmbed{embed},
			Components: &[]discordgo.MessageComponent{grumbleJoinRow()},
		})
		if err == nil && msg != nil {
			_ = b.Deps.Grumble.SetMessageRef(ctx, msg.ID, msg.ChannelID)
		}
	}

	return cmd, handler
}

func grumbleRestartCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "grumble_restart",
		Description:              "Re-anchor the active grumble to the current block",
		DefaultMemberPermissions: &adminPermission,
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		if err := b.Deps.Grumble.Restart(context.Background()); err != nil {
			respondFriendlyError(s, i, err.Error())
			return
		}
		sendEmbed(s, i, createEmbed("Grumble Restarted",
			"The grumble now ends with the current block. Bets and pool carry over.",
			ColorWarning, FooterGlyphBotAdmin))
	}

	return cmd, handler
}

func grumblePanelCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "grumblepanel",
		Description:              "Repost the grumble join panel",
		DefaultMemberPermissions: &adminPermission,
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		ctx := context.Background()
		g, ok := b.Deps.Grumble.State(ctx)
		if !ok || !g.IsActive {
			respondError(s, i, MsgGrumbleNotActive)
			return
		}

		embed := grumbleEmbed(b, g.PrizePool, len(g.Bets))
		msg, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Embeds:     &[]*discordgo.MessageEmbed{embed},
			Components: &[]discordgo.MessageComponent{grumbleJoinRow()},
		})
		if err == nil && msg != nil {
			_ = b.Deps.Grumble.SetMessageRef(ctx, msg.ID, msg.ChannelID)
		}
	}

	return cmd, handler
}

func grumbleTimerCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "grumbletimer",
		Description:              "Give the active grumble a custom countdown",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "seconds",
				Description: "Countdown in seconds (overrides block expiry)",
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
		if err := b.Deps.Grumble.SetTimer(context.Background(), seconds); err != nil {
			respondFriendlyError(s, i, err.Error())
			return
		}
		sendEmbed(s, i, createEmbed("Grumble Timer Set",
			fmt.Sprintf("The grumble now ends in **%s**, regardless of blocks.", utils.FormatDurationMs(seconds*1000)),
			ColorWarning, FooterGlyphBotAdmin))
	}

	return cmd, handler
}

func grumbleEmbed(b *Bot, pool int64, bets int) *discordgo.MessageEmbed {
	timeLeft := b.Deps.Grumble.TimeLeft(context.Background())
	description := fmt.Sprintf(
		"Guess the next system rune! Closest guesses split the pool.\n\n**Pool:** %s\n**Bets:** %d\n**Ends in:** %s",
		formatGlyphs(pool), bets, utils.FormatDurationMs(timeLeft.Milliseconds()))
	return createEmbed("📣 Grumble!", description, ColorDanger, "")
}

func grumbleJoinRow() discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Join Grumble",
				Style:    discordgo.DangerButton,
				CustomID: ComponentGrumbleJoin,
				Emoji:    &discordgo.ComponentEmoji{Name: "🎟️"},
			},
		},
	}
}
