// Package bot serves the guild slash commands players use to link their
// Discord and Minecraft accounts.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"loginguard/internal/discord"
	"loginguard/internal/domain"
	"loginguard/internal/platform/metrics"
	id "loginguard/pkg/domain"
)

const errorReply = "An error occured, please try again"

// ReadyAPI is what the ready handler needs from the session.
type ReadyAPI interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	UpdateGameStatus(idle int, name string) error
}

// Responder answers interactions.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// Bot dispatches slash command interactions to its commands.
type Bot struct {
	commands []Command
	guildID  string
	version  string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Bot)

// WithGuildID scopes command registration to one guild. Empty registers
// global commands.
func WithGuildID(guildID string) Option {
	return func(b *Bot) {
		b.guildID = guildID
	}
}

// WithVersion sets the activity published on ready.
func WithVersion(version string) Option {
	return func(b *Bot) {
		b.version = version
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bot) {
		b.metrics = m
	}
}

// WithCommands replaces the default command set.
func WithCommands(commands ...Command) Option {
	return func(b *Bot) {
		b.commands = commands
	}
}

// New builds a bot serving ping, register and unregister against store.
func New(store PlayerStore, serverAddress string, opts ...Option) (*Bot, error) {
	if store == nil {
		return nil, errors.New("player store is required")
	}
	b := &Bot{
		commands: []Command{
			pingCommand{},
			registerCommand{store: store, newCode: newRegistrationCode, serverAddress: serverAddress},
			unregisterCommand{store: store},
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// ApplicationCommands describes the command set for registration.
func (b *Bot) ApplicationCommands() []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(b.commands))
	for _, c := range b.commands {
		out = append(out, &discordgo.ApplicationCommand{
			Name:        c.Name(),
			Description: c.Description(),
		})
	}
	return out
}

// Attach installs the ready and interaction handlers on session. ctx bounds
// every store call the handlers make.
func (b *Bot) Attach(ctx context.Context, session *discordgo.Session) {
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		if err := b.OnReady(ctx, s, r); err != nil {
			b.logger.Error("ready handler failed", "error", err)
		}
	})
	session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		b.OnInteraction(ctx, s, i)
	})
}

// OnReady overwrites the registered commands and publishes the version as activity.
func (b *Bot) OnReady(ctx context.Context, api ReadyAPI, r *discordgo.Ready) error {
	if r == nil || r.User == nil {
		return errors.New("ready event without user")
	}
	appID := r.User.ID
	if r.Application != nil && r.Application.ID != "" {
		appID = r.Application.ID
	}
	b.logger.Info("bot connected", "user", r.User.Username, "guild_id", b.guildID)

	registered, err := api.ApplicationCommandBulkOverwrite(appID, b.guildID, b.ApplicationCommands(), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	names := make([]string, 0, len(registered))
	for _, c := range registered {
		names = append(names, c.Name)
	}
	b.logger.Info("slash commands registered", "commands", names)

	if b.version != "" {
		if err := api.UpdateGameStatus(0, b.version); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
	}
	return nil
}

// OnInteraction runs the invoked command and responds with its embed. Unknown
// commands and non-command interactions are ignored.
func (b *Bot) OnInteraction(ctx context.Context, api Responder, i *discordgo.InteractionCreate) {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	invoker := invokerOf(i.Interaction)
	if invoker == "" {
		b.logger.Warn("interaction without user")
		return
	}

	msg, ok := b.Dispatch(ctx, i.ApplicationCommandData().Name, invoker)
	if !ok {
		return
	}

	err := api.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{discord.Embed(msg)},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		b.logger.Error("cannot respond to slash command", "error", err)
	}
}

// Dispatch runs the named command for invoker. A failing command yields the
// generic error reply; ok is false when no command has that name.
func (b *Bot) Dispatch(ctx context.Context, name string, invoker id.DiscordID) (domain.Message, bool) {
	for _, c := range b.commands {
		if c.Name() != name {
			continue
		}
		msg, err := c.Run(ctx, invoker)
		b.metrics.ObserveCommand(name, err == nil)
		if err != nil {
			b.logger.Error("command failed", "command", name, "discord_id", invoker.String(), "error", err)
			return domain.Message{Title: name, Body: errorReply, Tone: domain.ToneFailure}, true
		}
		b.logger.Info("command handled", "command", name, "discord_id", invoker.String())
		return msg, true
	}
	return domain.Message{}, false
}

func invokerOf(i *discordgo.Interaction) id.DiscordID {
	if i.Member != nil && i.Member.User != nil {
		return id.DiscordID(i.Member.User.ID)
	}
	if i.User != nil {
		return id.DiscordID(i.User.ID)
	}
	return ""
}
