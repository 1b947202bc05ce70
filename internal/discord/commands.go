package discord

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/runeworks/glyphbot/internal/auction"
	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/engine"
	"github.com/runeworks/glyphbot/internal/export"
	"github.com/runeworks/glyphbot/internal/grumble"
	"github.com/runeworks/glyphbot/internal/leaderboard"
	"github.com/runeworks/glyphbot/internal/ledger"
	"github.com/runeworks/glyphbot/internal/market"
)

// Deps bundles the game services the transport layer calls into.
type Deps struct {
	Engine      engine.Service
	Grumble     grumble.Service
	Market      market.Service
	Auction     auction.Service
	Leaderboard leaderboard.Service
	Ledger      ledger.Service
	Export      export.Service

	// Shutdown asks main to stop the process. Wired at startup.
	Shutdown func()
}

// CommandHandler handles a slash command
type CommandHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot)

// ComponentHandler handles a button, select, or modal interaction. The arg
// is the part of the custom ID after the first ":" (empty when absent).
type ComponentHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, arg string)

// CommandRegistry holds the registered commands and component handlers
type CommandRegistry struct {
	Commands   map[string]*discordgo.ApplicationCommand
	Handlers   map[string]CommandHandler
	Components map[string]ComponentHandler
	Modals     map[string]ComponentHandler
}

// NewCommandRegistry creates a new registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		Commands:   make(map[string]*discordgo.ApplicationCommand),
		Handlers:   make(map[string]CommandHandler),
		Components: make(map[string]ComponentHandler),
		Modals:     make(map[string]ComponentHandler),
	}
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(cmd *discordgo.ApplicationCommand, handler CommandHandler) {
	r.Commands[cmd.Name] = cmd
	r.Handlers[cmd.Name] = handler
}

// RegisterComponent adds a component handler keyed by custom ID prefix
func (r *CommandRegistry) RegisterComponent(prefix string, handler ComponentHandler) {
	r.Components[prefix] = handler
}

// RegisterModal adds a modal submit handler keyed by custom ID prefix
func (r *CommandRegistry) RegisterModal(prefix string, handler ComponentHandler) {
	r.Modals[prefix] = handler
}

// Handle processes an interaction
func (r *CommandRegistry) Handle(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if h, ok := r.Handlers[i.ApplicationCommandData().Name]; ok {
			h(s, i, b)
		}
	case discordgo.InteractionMessageComponent:
		prefix, arg := splitCustomID(i.MessageComponentData().CustomID)
		if h, ok := r.Components[prefix]; ok {
			h(s, i, b, arg)
			return
		}
		slog.Warn(LogMsgUnknownComponent, "custom_id", i.MessageComponentData().CustomID)
	case discordgo.InteractionModalSubmit:
		prefix, arg := splitCustomID(i.ModalSubmitData().CustomID)
		if h, ok := r.Modals[prefix]; ok {
			h(s, i, b, arg)
			return
		}
		slog.Warn(LogMsgUnknownComponent, "custom_id", i.ModalSubmitData().CustomID)
	}
}

// splitCustomID splits "prefix:arg" custom IDs; plain IDs have no arg.
func splitCustomID(id string) (prefix, arg string) {
	if idx := strings.IndexByte(id, ':'); idx >= 0 {
		return id[:idx], id[idx+1:]
	}
	return id, ""
}

// RegisterCommands intelligently registers/updates commands with Discord.
// Only performs updates if commands have changed to avoid rate limits.
func (b *Bot) RegisterCommands(forceUpdate bool) error {
	slog.Info(LogMsgCommandsChecking)

	existingCmds, err := b.Session.ApplicationCommands(b.AppID, b.GuildID)
	if err != nil {
		return fmt.Errorf("failed to fetch existing commands: %w", err)
	}

	desiredCmds := make([]*discordgo.ApplicationCommand, 0, len(b.Registry.Commands))
	for _, cmd := range b.Registry.Commands {
		desiredCmds = append(desiredCmds, cmd)
	}

	if !forceUpdate && commandsEqual(existingCmds, desiredCmds) {
		slog.Info(LogMsgCommandsUnchanged, "count", len(existingCmds))
		return nil
	}

	if _, err := b.Session.ApplicationCommandBulkOverwrite(b.AppID, b.GuildID, desiredCmds); err != nil {
		return fmt.Errorf("failed to update commands: %w", err)
	}

	slog.Info(LogMsgCommandsUpdated, "count", len(desiredCmds))
	return nil
}

// commandsEqual checks if two command sets are equivalent
func commandsEqual(existing, desired []*discordgo.ApplicationCommand) bool {
	if len(existing) != len(desired) {
		return false
	}

	existingMap := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existing {
		existingMap[cmd.Name] = cmd
	}

	for _, want := range desired {
		have, ok := existingMap[want.Name]
		if !ok {
			return false
		}
		if !commandEqual(have, want) {
			return false
		}
	}

	return true
}

// commandEqual checks if two commands are equivalent
func commandEqual(a, b *discordgo.ApplicationCommand) bool {
	if a.Name != b.Name || a.Description != b.Description {
		return false
	}

	if (a.DefaultMemberPermissions == nil) != (b.DefaultMemberPermissions == nil) {
		return false
	}
	if a.DefaultMemberPermissions != nil && b.DefaultMemberPermissions != nil {
		if *a.DefaultMemberPermissions != *b.DefaultMemberPermissions {
			return false
		}
	}

	if len(a.Options) != len(b.Options) {
		return false
	}
	for i := range a.Options {
		if !optionEqual(a.Options[i], b.Options[i]) {
			return false
		}
	}

	return true
}

// optionEqual checks if two command options are equivalent
func optionEqual(a, b *discordgo.ApplicationCommandOption) bool {
	if a.Name != b.Name || a.Description != b.Description ||
		a.Type != b.Type || a.Required != b.Required {
		return false
	}

	if len(a.Choices) != len(b.Choices) {
		return false
	}
	for i := range a.Choices {
		if a.Choices[i].Name != b.Choices[i].Name || a.Choices[i].Value != b.Choices[i].Value {
			return false
		}
	}

	return true
}

// deferResponse acknowledges an interaction with a deferred message.
// Required before any operation that might take longer than 3 seconds.
// Returns false if deferral failed (should return early from handler).
func deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		slog.Error(LogMsgDeferFailed, "error", err)
		return false
	}
	return true
}

// deferEphemeral acknowledges an interaction with a deferred message only
// the invoking user can see.
func deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		slog.Error(LogMsgDeferFailed, "error", err)
		return false
	}
	return true
}

// getInteractionUser extracts the user from an interaction.
// Handles both guild (i.Member.User) and DM (i.User) contexts.
func getInteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// getMemberRoles returns the invoker's role IDs, empty outside a guild.
func getMemberRoles(i *discordgo.InteractionCreate) []string {
	if i.Member == nil {
		return nil
	}
	return i.Member.Roles
}

// getOptions extracts command options from an interaction.
func getOptions(i *discordgo.InteractionCreate) []*discordgo.ApplicationCommandInteractionDataOption {
	return i.ApplicationCommandData().Options
}

// respondError sends a generic error message after a deferral.
func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &message,
	}); err != nil {
		slog.Error(LogMsgEditFailed, "error", err)
	}
}

// respondFriendlyError formats the error message to be more user-friendly
// before responding. Use for business errors users can understand and act on.
func respondFriendlyError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	respondError(s, i, formatFriendlyError(message))
}

// formatFriendlyError maps domain error messages to friendly Discord copy.
// Containment checks because errors arrive wrapped with context.
func formatFriendlyError(msg string) string {
	switch {
	case strings.Contains(msg, domain.ErrMsgInsufficientFunds):
		return MsgInsufficientGlyphs
	case strings.Contains(msg, domain.ErrMsgEngineStopped):
		return MsgEngineStopped
	case strings.Contains(msg, domain.ErrMsgGrumbleAlreadyJoined):
		return MsgGrumbleAlreadyJoined
	case strings.Contains(msg, domain.ErrMsgGrumbleAlreadyActive):
		return MsgGrumbleAlreadyActive
	case strings.Contains(msg, domain.ErrMsgGrumbleNotActive):
		return MsgGrumbleNotActive
	case strings.Contains(msg, domain.ErrMsgNoPacks):
		return MsgNoPacks
	case strings.Contains(msg, domain.ErrMsgClaimBelowMinimum):
		return MsgClaimBelowMinimum
	case strings.Contains(msg, domain.ErrMsgClaimLimitReached):
		return MsgClaimLimitReached
	case strings.Contains(msg, domain.ErrMsgClaimDisabled):
		return MsgClaimDisabled
	case strings.Contains(msg, domain.ErrMsgAuctionNotFound):
		return MsgAuctionNotFound
	case strings.Contains(msg, domain.ErrMsgAuctionEnded):
		return MsgAuctionEnded
	case strings.Contains(msg, domain.ErrMsgAlreadyBid):
		return MsgAlreadyBid
	default:
		return "❌ " + msg
	}
}

// sendEmbed sends an embed message after a deferral with standardized error
// handling. Logs errors internally.
func sendEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	}); err != nil {
		slog.Error(LogMsgRespondFailed, "error", err)
	}
}

// Footer constants for standardized embed footers.
const (
	FooterGlyphBot      = "GlyphBot"
	FooterGlyphBotAdmin = "GlyphBot Admin"
)

// createEmbed creates a standard embed with optional footer customization.
func createEmbed(title, description string, color int, footerText string) *discordgo.MessageEmbed {
	if footerText == "" {
		footerText = FooterGlyphBot
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Footer: &discordgo.MessageEmbedFooter{
			Text: footerText,
		},
	}
}
