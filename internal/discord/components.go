package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/utils"
)

// registerComponents wires every button, select, and modal on the panels.
func registerComponents(r *CommandRegistry) {
	r.RegisterComponent(ComponentMine, handleMine)
	r.RegisterComponent(ComponentRuneSelect, handleRuneSelect)
	r.RegisterComponent(ComponentBalance, handleBalance)
	r.RegisterComponent(ComponentCheckBet, handleCheckBet)
	r.RegisterComponent(ComponentLastReward, handleLastReward)
	r.RegisterComponent(ComponentRewardRecords, handleRewardRecords)
	r.RegisterComponent(ComponentLeaderboard, handleLeaderboard)
	r.RegisterComponent(ComponentBuyPack, handleBuyPack)
	r.RegisterComponent(ComponentOpenPack, handleOpenPack)
	r.RegisterComponent(ComponentClaimDollars, handleClaimDollars)
	r.RegisterComponent(ComponentGrumbleJoin, handleGrumbleJoin)
	r.RegisterComponent(ComponentGrumbleRuneSelect, handleGrumbleRuneSelect)
	r.RegisterComponent(ComponentAuctionBid, handleAuctionBid)
	r.RegisterModal(ComponentGrumbleBetModal, handleGrumbleBetSubmit)
	r.RegisterModal(ComponentAuctionBidModal, handleAuctionBidSubmit)
}

// respondEphemeral answers a component press with a private message.
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		slog.Error(LogMsgRespondFailed, "error", err)
	}
}

// respondEphemeralEmbed answers a component press with a private embed.
func respondEphemeralEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		slog.Error(LogMsgRespondFailed, "error", err)
	}
}

// runeOptions builds the 22-rune select menu options.
func runeOptions() []discordgo.SelectMenuOption {
	options := make([]discordgo.SelectMenuOption, 0, len(domain.Symbols))
	for idx, symbol := range domain.Symbols {
		options = append(options, discordgo.SelectMenuOption{
			Label: fmt.Sprintf("%s  (rune %d)", symbol, idx+1),
			Value: symbol,
		})
	}
	return options
}

func runeSelectResponse(s *discordgo.Session, i *discordgo.InteractionCreate, customID, placeholder string) {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: placeholder,
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.SelectMenu{
							CustomID:    customID,
							Placeholder: "Pick a rune",
							Options:     runeOptions(),
						},
					},
				},
			},
		},
	}); err != nil {
		slog.Error(LogMsgRespondFailed, "error", err)
	}
}

func handleMine(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, _ string) {
	if !b.Deps.Engine.IsActive(context.Background()) {
		respondEphemeral(s, i, MsgEngineStopped)
		return
	}
	runeSelectResponse(s, i, ComponentRuneSelect, "Which rune will the system draw this block?")
}

func handleRuneSelect(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, _ string) {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		respondEphemeral(s, i, MsgGenericError)
		return
	}
	user := getInteractionUser(i)
	symbol := values[0]

	if err := b.Deps.Engine.RecordChoice(context.Background(), user.ID, symbol); err != nil {
		respondEphemeral(s, i, formatFriendlyError(err.Error()))
		return
	}
	timeLeft := b.Deps.Engine.TimeLeft(context.Background())
	respondEphemeral(s, i, fmt.Sprintf("⛏️ Locked in **%s** for this block. Resolution in %s.",
		symbol, utils.FormatDurationMs(timeLeft.Milliseconds())))
}

func handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, _ string) {
	ctx := context.Background()
	user := getInteractionUser(i)

	balance := b.Deps.Ledger.Balance(ctx, user.ID)
	packs := b.Deps.Market.PackCount(ctx, user.ID)
	dollars := b.Deps.Market.DollarBalance(ctx, user.ID)

	description := fmt.Sprintf("**Glyphs:** %s\n**Packs:** %d\n**Dollars:** $%d",
		formatAmount(balance), packs, dollars)
	respondEphemeralEmbed(s, i, createEmbed("💰 Your Stash", description, ColorPrimary, ""))
}

func handleCheckBet(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, _ string) {
	ctx := context.Background()
	user := getInteractionUser(i)

	lines := []string{}
	if choice, ok := b.Deps.Engine.UserChoice(ctx, user.ID); ok {
		lines = append(lines, fmt.Sprintf("**Current pick:** %s", choice))
	} else {
		lines = append(lines, "You haven't picked a rune this block.")
	}
	if bet, ok := b.Deps.Grumble.UserBet(ctx, user.ID); ok {
		lines = append(lines, fmt.Sprintf("**Grumble bet:** %s on %s", formatGlyphs(bet.Amount), bet.Guess))
	}
	respondEphemeralEmbed(s, i, createEmbed("🎯 Your Bets", strings.Join(lines, "\n"), ColorPrimary, ""))
}

func handleLastReward(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, _ string) {
	ctx := context.Background()
	user := getInteractionUser(i)

	record, ok := b.Deps.Engine.LastBlockRecord(ctx)
	if !ok {
		respondEphemeral(s, i, "The last block had no miners.")
		return
	}

	for _, r := range record.MemberResults {
		if r.UserID != user.ID {
			continue
		}
		description := fmt.Sprintf(
			"**Block %d** drew %s.\nYou picked %s (distance %d) and earned **%s**.",
			record.BlockNumber, record.SystemChoice, r.Choice, r.Distance, formatGlyphs(r.Reward))
		respondEphemeralEmbed(s, i, createEmbed("⚡ Last Reward", description, ColorSuccess, ""))
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("You sat out block %d.", record.BlockNumber))
}

func handleRewardRecords(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, _ string) {
	ctx := context.Background()
	user := getInteractionUser(i)

	history := b.Deps.Engine.UserHistory(ctx, user.ID)
	if len(history) == 0 {
		respondEphemeral(s, i, "No mining history yet. Hit Mine!")
		return
	}
	if len(history) > RecordsPageSize {
		history = history[:RecordsPageSize]
	}

	var sb strings.Builder
	for _, record := range history {
		for _, r := range record.MemberResults {
			if r.UserID != user.ID {
				continue
			}
			fmt.Fprintf(&sb, "Block %d: picked %s vs %s - **%s**\n",
				record.BlockNumber, r.Choice, record.SystemChoice, formatGlyphs(r.Reward))
		}
	}
	respondEphemeralEmbed(s, i, createEmbed("📜 Reward Records", sb.String(), ColorPrimary, ""))
}

func handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, _ string) {
	ctx := context.Background()
	top := b.Deps.Leaderboard.Top(ctx, 10)
	if len(top) == 0 {
		respondEphemeral(s, i, "The leaderboard is empty. Be the first to mine!")
		return
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var sb strings.Builder
	for idx, row := range top {
		rank := fmt.Sprintf("%d.", idx+1)
		if idx < len(medals) {
			rank = medals[idx]
		}
		fmt.Fprintf(&sb, "%s <@%s> - %s, %d exact hit(s)\n",
			rank, row.UserID, formatGlyphs(row.Balance), row.ExactMatches)
	}

	user := getInteractionUser(i)
	if rank, row, ok := b.Deps.Leaderboard.UserRank(ctx, user.ID); ok && rank > 10 {
		fmt.Fprintf(&sb, "\nYou: #%d with %s", rank, formatGlyphs(row.Balance))
	}
	respondEphemeralEmbed(s, i, createEmbed("🏆 Leaderboard", sb.String(), ColorWarning, ""))
}

func handleBuyPack(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, _ string) {
	user := getInteractionUser(i)
	packs, balance, err := b.Deps.Market.BuyPack(context.Background(), user.ID)
	if err != nil {
		respondEphemeral(s, i, formatFriendlyError(err.Error()))
		return
	}
	respondEphemeralEmbed(s, i, createEmbed("📦 Pack Purchased",
		fmt.Sprintf("You now hold **%d** pack(s). Balance: %s.", packs, formatGlyphs(balance)),
		ColorSuccess, ""))
}

func handleOpenPack(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, _ string) {
	user := getInteractionUser(i)
	result, err := b.Deps.Market.Open(context.Background(), user.ID, getMemberRoles(i))
	if err != nil {
		respondEphemeral(s, i, formatFriendlyError(err.Error()))
		return
	}

	description := fmt.Sprintf("**%s**\n\nPacks left: %d", result.Prize.Label, result.PacksRemaining)
	if result.Prize.Type == domain.PrizeTypeGlyphs {
		description += fmt.Sprintf("\nGlyph balance: %s", formatAmount(result.GlyphBalance))
	} else if result.Dollars != nil {
		description += fmt.Sprintf("\nDollar balance: $%d", result.Dollars.NewBalance)
		if result.Dollars.Capped {
			description += " (at the cap)"
		}
	}

	embed := createEmbed("🎁 Pack Opened!", description, ColorSuccess, "")
	if result.Prize.ImageURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: result.Prize.ImageURL}
	}
	respondEphemeralEmbed(s, i, embed)
}

func handleClaimDollars(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, _ string) {
	user := getInteractionUser(i)
	claimed, err := b.Deps.Market.Claim(context.Background(), user.ID)
	if err != nil {
		respondEphemeral(s, i, formatFriendlyError(err.Error()))
		return
	}
	respondEphemeralEmbed(s, i, createEmbed("💵 Claim Submitted",
		fmt.Sprintf("You claimed **$%d**. A mod will be in touch!", claimed),
		ColorSuccess, ""))
}

func handleGrumbleJoin(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, _ string) {
	ctx := context.Background()
	if !b.Deps.Grumble.IsActive(ctx) {
		respondEphemeral(s, i, MsgGrumbleNotActive)
		return
	}
	user := getInteractionUser(i)
	if _, ok := b.Deps.Grumble.UserBet(ctx, user.ID); ok {
		respondEphemeral(s, i, MsgGrumbleAlreadyJoined)
		return
	}
	runeSelectResponse(s, i, ComponentGrumbleRuneSelect, "Guess the rune the grumble will land on:")
}

func handleGrumbleRuneSelect(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, _ string) {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		respondEphemeral(s, i, MsgGenericError)
		return
	}
	symbol := values[0]

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: fmt.Sprintf("%s:%s", ComponentGrumbleBetModal, symbol),
			Title:    fmt.Sprintf("Bet on %s", symbol),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    ComponentGrumbleBetInput,
							Label:       "Glyphs to wager",
							Style:       discordgo.TextInputShort,
							Placeholder: "e.g. 1000",
							Required:    true,
							MaxLength:   12,
						},
					},
				},
			},
		},
	}); err != nil {
		slog.Error(LogMsgRespondFailed, "error", err)
	}
}

func handleGrumbleBetSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, symbol string) {
	amount, err := modalIntValue(i, ComponentGrumbleBetInput)
	if err != nil {
		respondEphemeral(s, i, "That doesn't look like a number.")
		return
	}
	user := getInteractionUser(i)

	if err := b.Deps.Grumble.Join(context.Background(), user.ID, symbol, amount); err != nil {
		respondEphemeral(s, i, formatFriendlyError(err.Error()))
		return
	}
	b.refresher.RequestRefresh()
	respondEphemeralEmbed(s, i, createEmbed("🎟️ Bet Placed",
		fmt.Sprintf("You wagered **%s** on %s. Good luck!", formatGlyphs(amount), symbol),
		ColorDanger, ""))
}

func handleAuctionBid(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, auctionID string) {
	ctx := context.Background()
	user := getInteractionUser(i)
	if _, ok := b.Deps.Auction.UserBid(ctx, auctionID, user.ID); ok {
		respondEphemeral(s, i, MsgAlreadyBid)
		return
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: fmt.Sprintf("%s:%s", ComponentAuctionBidModal, auctionID),
			Title:    "Place Sealed Bid",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    ComponentAuctionBidInput,
							Label:       "Glyphs to bid (escrowed immediately)",
							Style:       discordgo.TextInputShort,
							Placeholder: "e.g. 5000",
							Required:    true,
							MaxLength:   12,
						},
					},
				},
			},
		},
	}); err != nil {
		slog.Error(LogMsgRespondFailed, "error", err)
	}
}

func handleAuctionBidSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, auctionID string) {
	amount, err := modalIntValue(i, ComponentAuctionBidInput)
	if err != nil {
		respondEphemeral(s, i, "That doesn't look like a number.")
		return
	}
	user := getInteractionUser(i)

	if err := b.Deps.Auction.PlaceBid(context.Background(), auctionID, user.ID, amount); err != nil {
		respondEphemeral(s, i, formatFriendlyError(err.Error()))
		return
	}
	respondEphemeralEmbed(s, i, createEmbed("🪙 Bid Sealed",
		fmt.Sprintf("Your bid of **%s** is escrowed. Results at the deadline!", formatGlyphs(amount)),
		ColorWarning, ""))
}

// modalIntValue digs the named text input out of a modal submission.
func modalIntValue(i *discordgo.InteractionCreate, inputID string) (int64, error) {
	for _, row := range i.ModalSubmitData().Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			input, ok := component.(*discordgo.TextInput)
			if !ok || input.CustomID != inputID {
				continue
			}
			return strconv.ParseInt(strings.TrimSpace(input.Value), 10, 64)
		}
	}
	return 0, fmt.Errorf("input %s not found", inputID)
}
