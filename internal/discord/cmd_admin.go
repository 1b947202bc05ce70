package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// registerAdminCommands wires balance and lifecycle admin commands.
func registerAdminCommands(r *CommandRegistry) {
	r.Register(setGlyphsCommand())
	r.Register(resetBalancesCommand())
	r.Register(resetRecordsCommand())
	r.Register(resetAllCommand())
	r.Register(exportCommand())
}

func setGlyphsCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "setglyphs",
		Description:              "Set a user's glyph balance",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Target user",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "amount",
				Description: "New balance",
				Required:    true,
				MinValue:    &[]float64{0}[0],
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		options := getOptions(i)
		target := options[0].UserValue(s)
		amount := options[1].IntValue()

		if err := b.Deps.Ledger.SetBalance(context.Background(), target.ID, amount); err != nil {
			respondFriendlyError(s, i, err.Error())
			return
		}
		sendEmbed(s, i, createEmbed("Balance Set",
			fmt.Sprintf("<@%s> now holds **%s**.", target.ID, formatGlyphs(amount)),
			ColorNeutral, FooterGlyphBotAdmin))
	}

	return cmd, handler
}

func resetBalancesCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "resetbalances",
		Description:              "Zero every glyph balance",
		DefaultMemberPermissions: &adminPermission,
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		b.Deps.Ledger.ResetAll(context.Background())
		sendEmbed(s, i, createEmbed("Balances Reset",
			"Every balance is back to zero.", ColorDanger, FooterGlyphBotAdmin))
	}

	return cmd, handler
}

func resetRecordsCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "resetrecords",
		Description:              "Clear the block history",
		DefaultMemberPermissions: &adminPermission,
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		b.Deps.Engine.ResetRecords(context.Background())
		sendEmbed(s, i, createEmbed("Records Reset",
			"Block history cleared.", ColorDanger, FooterGlyphBotAdmin))
	}

	return cmd, handler
}

func resetAllCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "resetall",
		Description:              "Full reset: block 1, no history, no balances",
		DefaultMemberPermissions: &adminPermission,
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		b.Deps.Engine.ResetAll(context.Background())
		b.refresher.RequestRefresh()
		sendEmbed(s, i, createEmbed("Full Reset",
			"Back to block 1. History and balances wiped.", ColorDanger, FooterGlyphBotAdmin))
	}

	return cmd, handler
}

func exportCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "export",
		Description:              "Write a full game snapshot to disk",
		DefaultMemberPermissions: &adminPermission,
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		result, err := b.Deps.Export.Export(context.Background())
		if err != nil {
			slog.Error(LogMsgActionFailed, "command", "export", "error", err)
			respondError(s, i, MsgGenericError)
			return
		}
		sendEmbed(s, i, createEmbed("Export Complete",
			fmt.Sprintf("Snapshot written to `%s`.", result.RelativePath),
			ColorSuccess, FooterGlyphBotAdmin))
	}

	return cmd, handler
}
