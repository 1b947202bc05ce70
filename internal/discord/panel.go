package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/event"
	"github.com/runeworks/glyphbot/internal/utils"
)

// PanelRefresher owns the persistent game panel message: it posts it,
// re-renders it when blocks advance, and fans out round notifications.
// Refreshes are throttled so a burst of events produces one edit.
type PanelRefresher struct {
	bot *Bot

	mu        sync.Mutex
	channelID string
	messageID string
	lastEdit  time.Time

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewPanelRefresher creates a refresher bound to the bot's game channel.
func NewPanelRefresher(b *Bot) *PanelRefresher {
	return &PanelRefresher{
		bot:      b,
		shutdown: make(chan struct{}),
	}
}

// Subscribe subscribes the refresher to relevant events
func (p *PanelRefresher) Subscribe(bus event.Bus) {
	bus.Subscribe(event.BlockAdvanced, p.handleBlockAdvanced)
	bus.Subscribe(event.GrumbleResolved, func(ctx context.Context, e event.Event) error {
		p.RequestRefresh()
		return p.notifyGrumbleResolved(ctx, e)
	})
	bus.Subscribe(event.GrumblePoolKept, func(context.Context, event.Event) error {
		p.RequestRefresh()
		return nil
	})
}

func (p *PanelRefresher) handleBlockAdvanced(ctx context.Context, e event.Event) error {
	select {
	case <-p.shutdown:
		return nil
	default:
	}

	payload, err := event.DecodePayload[domain.BlockAdvancedPayloadV1](e.Payload)
	if err != nil {
		return err
	}

	p.RequestRefresh()
	if payload.Participants > 0 {
		p.notifyBlockResolved(payload)
	}
	return nil
}

// Post publishes a fresh panel message in the game channel, replacing any
// panel tracked from an earlier post.
func (p *PanelRefresher) Post(ctx context.Context) error {
	embed, components := p.render(ctx)
	msg, err := p.bot.Session.ChannelMessageSendComplex(p.bot.Config.GameChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		return fmt.Errorf("failed to post panel: %w", err)
	}

	p.mu.Lock()
	p.channelID = msg.ChannelID
	p.messageID = msg.ID
	p.lastEdit = time.Now()
	p.mu.Unlock()
	return nil
}

// RequestRefresh re-renders the panel message. Edits inside the throttle
// window are dropped; the next block advance repaints anyway.
func (p *PanelRefresher) RequestRefresh() {
	p.mu.Lock()
	if p.messageID == "" || time.Since(p.lastEdit) < PanelRefreshInterval {
		p.mu.Unlock()
		return
	}
	p.lastEdit = time.Now()
	channelID, messageID := p.channelID, p.messageID
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		embed, components := p.render(context.Background())
		_, err := p.bot.Session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    channelID,
			ID:         messageID,
			Embeds:     &[]*discordgo.MessageEmbed{embed},
			Components: &components,
		})
		if err != nil {
			slog.Error(LogMsgPanelRefreshFailed, "error", err)
		}
	}()
}

// Shutdown waits for in-flight panel edits.
func (p *PanelRefresher) Shutdown(ctx context.Context) error {
	slog.Info(LogMsgPanelRefresherStop)
	close(p.shutdown)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info(LogMsgPanelRefresherDone)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *PanelRefresher) render(ctx context.Context) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	d := p.bot.Deps
	block := d.Engine.CurrentBlock(ctx)
	timeLeft := d.Engine.TimeLeft(ctx)

	status := "⛏️ Mining open - pick your rune!"
	if !d.Engine.IsActive(ctx) {
		status = "🛑 Mining paused"
	}

	description := fmt.Sprintf("%s\n\n**Block:** %d\n**Next block in:** %s",
		status, block, utils.FormatDurationMs(timeLeft.Milliseconds()))
	if last := d.Engine.LastSystemChoice(ctx); last != "" {
		description += fmt.Sprintf("\n**Last system rune:** %s", last)
	}
	if g, ok := d.Grumble.State(ctx); ok && g.IsActive {
		description += fmt.Sprintf("\n\n📣 **Grumble running!** Pool: %s - ends in %s",
			formatGlyphs(g.PrizePool), utils.FormatDurationMs(d.Grumble.TimeLeft(ctx).Milliseconds()))
	}

	embed := createEmbed("ᚱ Glyph Mine", description, ColorPrimary, "")
	return embed, panelComponents()
}

func panelComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Mine", Style: discordgo.PrimaryButton, CustomID: ComponentMine, Emoji: &discordgo.ComponentEmoji{Name: "⛏️"}},
				discordgo.Button{Label: "Balance", Style: discordgo.SecondaryButton, CustomID: ComponentBalance, Emoji: &discordgo.ComponentEmoji{Name: "💰"}},
				discordgo.Button{Label: "Check Bet", Style: discordgo.SecondaryButton, CustomID: ComponentCheckBet},
				discordgo.Button{Label: "Last Reward", Style: discordgo.SecondaryButton, CustomID: ComponentLastReward},
				discordgo.Button{Label: "Records", Style: discordgo.SecondaryButton, CustomID: ComponentRewardRecords},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Leaderboard", Style: discordgo.SecondaryButton, CustomID: ComponentLeaderboard, Emoji: &discordgo.ComponentEmoji{Name: "🏆"}},
				discordgo.Button{Label: "Buy Pack", Style: discordgo.SuccessButton, CustomID: ComponentBuyPack, Emoji: &discordgo.ComponentEmoji{Name: "📦"}},
				discordgo.Button{Label: "Open Pack", Style: discordgo.SuccessButton, CustomID: ComponentOpenPack},
				discordgo.Button{Label: "Claim $", Style: discordgo.SuccessButton, CustomID: ComponentClaimDollars},
			},
		},
	}
}

// notifyBlockResolved announces a settled round in the notify channel.
func (p *PanelRefresher) notifyBlockResolved(payload domain.BlockAdvancedPayloadV1) {
	channelID := p.bot.Config.NotifyChannelID
	if channelID == "" {
		return
	}

	content := fmt.Sprintf("Block **%d** resolved! System rune: %s - %d miners shared %s.",
		payload.NewBlock-1, payload.SystemChoice, payload.Participants, formatGlyphs(payload.TotalRewards))
	if p.bot.Config.NotifyRoleID != "" {
		content = fmt.Sprintf("<@&%s> %s", p.bot.Config.NotifyRoleID, content)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if _, err := p.bot.Session.ChannelMessageSend(channelID, content); err != nil {
			slog.Error(LogMsgNotifyFailed, "error", err)
		}
	}()
}

func (p *PanelRefresher) notifyGrumbleResolved(_ context.Context, e event.Event) error {
	channelID := p.bot.Config.NotifyChannelID
	if channelID == "" {
		return nil
	}

	payload, err := event.DecodePayload[domain.GrumbleResolvedPayloadV1](e.Payload)
	if err != nil {
		return err
	}

	var content string
	if len(payload.WinnerIDs) == 0 {
		content = fmt.Sprintf("The grumble ended on %s with no takers.", payload.SystemChoice)
	} else {
		mentions := ""
		for idx, id := range payload.WinnerIDs {
			if idx > 0 {
				mentions += ", "
			}
			mentions += fmt.Sprintf("<@%s>", id)
		}
		content = fmt.Sprintf("📣 Grumble over! System rune %s - %s each take %s.",
			payload.SystemChoice, mentions, formatGlyphs(payload.PrizePerWinner))
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if _, err := p.bot.Session.ChannelMessageSend(channelID, content); err != nil {
			slog.Error(LogMsgNotifyFailed, "error", err)
		}
	}()
	return nil
}
