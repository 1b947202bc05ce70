package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/runeworks/glyphbot/internal/market"
)

// registerMarketCommands wires the loot market admin commands.
func registerMarketCommands(r *CommandRegistry) {
	r.Register(addPacksCommand())
	r.Register(addDollarsCommand())
	r.Register(setClaimLimitCommand())
	r.Register(resetClaimsCommand())
	r.Register(toggleClaimsCommand())
}

func addPacksCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "addpacks",
		Description:              "Grant or remove packs for a user",
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
				Name:        "count",
				Description: "Packs to add (negative removes)",
				Required:    true,
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		options := getOptions(i)
		target := options[0].UserValue(s)
		count := int(options[1].IntValue())

		total := b.Deps.Market.AddPacks(context.Background(), target.ID, count)
		sendEmbed(s, i, createEmbed("Packs Updated",
			fmt.Sprintf("<@%s> now holds **%d** pack(s).", target.ID, total),
			ColorNeutral, FooterGlyphBotAdmin))
	}

	return cmd, handler
}

func addDollarsCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "adddollars",
		Description:              "Grant dollars to a user (capped at the dollar limit)",
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
				Description: "Dollars to add",
				Required:    true,
				MinValue:    &[]float64{1}[0],
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		options := getOptions(i)
		target := options[0].UserValue(s)
		amount := int(options[1].IntValue())

		update := b.Deps.Market.AddDollars(context.Background(), target.ID, amount)
		msg := fmt.Sprintf("<@%s> now has **$%d**.", target.ID, update.NewBalance)
		if update.Capped {
			msg += fmt.Sprintf(" (capped at $%d)", market.MaxDollarBalance)
		}
		sendEmbed(s, i, createEmbed("Dollars Updated", msg, ColorNeutral, FooterGlyphBotAdmin))
	}

	return cmd, handler
}

func setClaimLimitCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "setclaimlimit",
		Description:              "Set the global dollar claim limit",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "limit",
				Description: "Total dollars claimable before the pool closes",
				Required:    true,
				MinValue:    &[]float64{1}[0],
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		limit := int(getOptions(i)[0].IntValue())
		if err := b.Deps.Market.SetClaimLimit(context.Background(), limit); err != nil {
			respondFriendlyError(s, i, err.Error())
			return
		}
		sendEmbed(s, i, createEmbed("Claim Limit Set",
			fmt.Sprintf("Global claim limit is now **$%d**.", limit),
			ColorNeutral, FooterGlyphBotAdmin))
	}

	return cmd, handler
}

func resetClaimsCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "resetclaims",
		Description:              "Reset the claimed-dollars counter",
		DefaultMemberPermissions: &adminPermission,
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		b.Deps.Market.ResetClaimCounter(context.Background())
		sendEmbed(s, i, createEmbed("Claims Reset",
			"The claimed-dollars counter is back to zero.",
			ColorNeutral, FooterGlyphBotAdmin))
	}

	return cmd, handler
}

func toggleClaimsCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "toggleclaims",
		Description:              "Enable or disable the claim button",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "disabled",
				Description: "true disables claiming",
				Required:    true,
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		disabled := getOptions(i)[0].BoolValue()
		b.Deps.Market.SetClaimDisabled(context.Background(), disabled)
		msg := "Claims are **open**."
		if disabled {
			msg = "Claims are **closed**."
		}
		sendEmbed(s, i, createEmbed("Claims Toggled", msg, ColorNeutral, FooterGlyphBotAdmin))
	}

	return cmd, handler
}
