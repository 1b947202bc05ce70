package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Config holds the bot configuration
type Config struct {
	Token           string
	AppID           string
	GuildID         string
	GameChannelID   string
	NotifyChannelID string
	NotifyRoleID    string
}

// Bot represents the Discord bot
type Bot struct {
	Session  *discordgo.Session
	AppID    string
	GuildID  string
	Config   Config
	Registry *CommandRegistry
	Deps     *Deps

	throttle  *Throttle
	refresher *PanelRefresher
}

// New creates a new Discord bot with every command and component wired.
func New(cfg Config, deps *Deps) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	s.Identify.Intents |= discordgo.IntentGuildMembers

	b := &Bot{
		Session:  s,
		AppID:    cfg.AppID,
		GuildID:  cfg.GuildID,
		Config:   cfg,
		Registry: NewCommandRegistry(),
		Deps:     deps,
		throttle: NewThrottle(UserActionCooldown),
	}
	b.refresher = NewPanelRefresher(b)

	registerEngineCommands(b.Registry)
	registerGrumbleCommands(b.Registry)
	registerMarketCommands(b.Registry)
	registerAuctionCommands(b.Registry)
	registerAdminCommands(b.Registry)
	registerComponents(b.Registry)

	return b, nil
}

// Refresher exposes the panel refresher for event bus wiring.
func (b *Bot) Refresher() *PanelRefresher {
	return b.refresher
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	b.Session.AddHandler(b.ready)
	b.Session.AddHandler(b.interactionCreate)
	b.Session.AddHandler(b.guildMemberRemove)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() {
	_ = b.Session.Close()
}

func (b *Bot) ready(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info(LogMsgBotReady, "user", s.State.User.Username)
}

func (b *Bot) interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Buttons and selects get a per-user cooldown; slash commands are
	// naturally rate limited by Discord's own UI.
	if i.Type == discordgo.InteractionMessageComponent {
		user := getInteractionUser(i)
		if user != nil && !b.throttle.Allow(user.ID) {
			respondCooldown(s, i)
			return
		}
	}
	b.Registry.Handle(s, i, b)
}

// guildMemberRemove forwards departures to the grumble anti-abuse check. A
// would-be winner leaving preserves the pool into a fresh session.
func (b *Bot) guildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.User == nil {
		return
	}
	ctx := context.Background()
	preserved, err := b.Deps.Grumble.HandleMemberRemove(ctx, m.User.ID)
	if err != nil {
		slog.Error(LogMsgMemberRemoveFailed, "user_id", m.User.ID, "error", err)
		return
	}
	if preserved {
		slog.Info(LogMsgMemberRemoveHandled, "user_id", m.User.ID)
		b.refresher.RequestRefresh()
	}
}

// respondCooldown answers a throttled component press with an ephemeral nudge.
func respondCooldown(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: MsgCooldownActive,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		slog.Error(LogMsgRespondFailed, "error", err)
	}
}
