package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/runeworks/glyphbot/internal/utils"
)

// registerAuctionCommands wires the sealed-bid auction commands.
func registerAuctionCommands(r *CommandRegistry) {
	r.Register(auctionCommand())
	r.Register(auctionStatusCommand())
}

func auctionCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "auction",
		Description:              "Start a sealed-bid auction",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "prize",
				Description: "What is being auctioned",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "minutes",
				Description: "How long bidding stays open",
				Required:    true,
				MinValue:    &[]float64{1}[0],
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "winners",
				Description: "Number of winners (default: 1)",
				Required:    false,
				MinValue:    &[]float64{1}[0],
			},
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "tag",
				Description: "Role to tag in the announcement",
				Required:    false,
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferResponse(s, i) {
			return
		}
		ctx := context.Background()
		options := getOptions(i)
		prize := options[0].StringValue()
		minutes := options[1].IntValue()
		winners := 1
		var rolesToTag []string
		for _, opt := range options[2:] {
			switch opt.Name {
			case "winners":
				winners = int(opt.IntValue())
			case "tag":
				rolesToTag = append(rolesToTag, opt.RoleValue(s, i.GuildID).ID)
			}
		}

		endTime := time.Now().Add(time.Duration(minutes) * time.Minute)
		a, err := b.Deps.Auction.Create(ctx, prize, rolesToTag, endTime, winners)
		if err != nil {
			respondFriendlyError(s, i, err.Error())
			return
		}

		description := fmt.Sprintf(
			"**Prize:** %s\n**Winners:** %d\n**Bidding closes in:** %s\n\nBids are sealed and escrowed - one bid per player, no take-backs.",
			prize, winners, utils.FormatDurationMs(time.Until(endTime).Milliseconds()))
		for _, roleID := range rolesToTag {
			description = fmt.Sprintf("<@&%s>\n%s", roleID, description)
		}

		embed := createEmbed("🔨 Auction Open", description, ColorWarning, "")
		row := discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Place Bid",
					Style:    discordgo.PrimaryButton,
					CustomID: fmt.Sprintf("%s:%s", ComponentAuctionBid, a.ID),
					Emoji:    &discordgo.ComponentEmoji{Name: "🪙"},
				},
			},
		}
		msg, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Embeds:     &[]*discordgo.MessageEmbed{embed},
			Components: &[]discordgo.MessageComponent{row},
		})
		if err == nil && msg != nil {
			_ = b.Deps.Auction.SetMessageRef(ctx, a.ID, msg.ID, msg.ChannelID)
		}
	}

	return cmd, handler
}

func auctionStatusCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "auctionstatus",
		Description:              "List active auctions and their bid counts",
		DefaultMemberPermissions: &adminPermission,
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		if !deferEphemeral(s, i) {
			return
		}
		active := b.Deps.Auction.Active(context.Background())
		if len(active) == 0 {
			respondError(s, i, "No active auctions.")
			return
		}

		description := ""
		for _, a := range active {
			description += fmt.Sprintf("**%s** - %d bid(s), closes in %s\n",
				a.Description, len(a.Bids),
				utils.FormatDurationMs(a.EndTime-time.Now().UnixMilli()))
		}
		sendEmbed(s, i, createEmbed("Active Auctions", description, ColorWarning, FooterGlyphBotAdmin))
	}

	return cmd, handler
}
