// Package discord adapts a discordgo session to the approval workflow's
// messaging port.
package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"loginguard/internal/domain"
	id "loginguard/pkg/domain"
)

// Embed colours, matching Discord's named palette.
const (
	ColourRed       = 0xE74C3C
	ColourDarkGreen = 0x1F8B4C
)

// reactionPageSize is the maximum page Discord returns for reaction users.
const reactionPageSize = 100

// Session is the subset of *discordgo.Session the gateway calls.
type Session interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	MessageReactions(channelID, messageID, emojiID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.User, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// Gateway implements approval.MessagingGateway on top of Discord direct messages.
type Gateway struct {
	session Session
	limiter *rate.Limiter
}

type Option func(*Gateway)

// WithRateLimit throttles every REST call to rps with the given burst.
// Without it calls are not throttled beyond discordgo's own bucket handling.
func WithRateLimit(rps, burst int) Option {
	return func(g *Gateway) {
		if rps > 0 && burst > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

func NewGateway(session Session, opts ...Option) (*Gateway, error) {
	if session == nil {
		return nil, errors.New("discord session is required")
	}
	g := &Gateway{session: session, limiter: rate.NewLimiter(rate.Inf, 0)}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Gateway) wait(ctx context.Context) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("discord rate limit: %w", err)
	}
	return nil
}

func (g *Gateway) OpenDirectChannel(ctx context.Context, identity id.DiscordID) (domain.ChannelID, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	ch, err := g.session.UserChannelCreate(identity.String(), discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("open direct channel with %s: %w", identity, err)
	}
	return domain.ChannelID(ch.ID), nil
}

func (g *Gateway) SendMessage(ctx context.Context, channel domain.ChannelID, msg domain.Message) (domain.MessageRef, error) {
	if err := g.wait(ctx); err != nil {
		return domain.MessageRef{}, err
	}
	sent, err := g.session.ChannelMessageSendEmbed(string(channel), Embed(msg), discordgo.WithContext(ctx))
	if err != nil {
		return domain.MessageRef{}, fmt.Errorf("send message to %s: %w", channel, err)
	}
	return domain.MessageRef{ChannelID: channel, MessageID: sent.ID}, nil
}

func (g *Gateway) AddReaction(ctx context.Context, msg domain.MessageRef, marker string) error {
	if err := g.wait(ctx); err != nil {
		return err
	}
	if err := g.session.MessageReactionAdd(string(msg.ChannelID), msg.MessageID, marker, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("add reaction %s: %w", marker, err)
	}
	return nil
}

// ListReactors returns at most one page of reactors. Two distinct users are
// enough to decide, so paging further is never needed.
func (g *Gateway) ListReactors(ctx context.Context, msg domain.MessageRef, marker string) ([]string, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	users, err := g.session.MessageReactions(string(msg.ChannelID), msg.MessageID, marker, reactionPageSize, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list reactions %s: %w", marker, err)
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		if u != nil {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func (g *Gateway) DeleteMessage(ctx context.Context, msg domain.MessageRef) error {
	if err := g.wait(ctx); err != nil {
		return err
	}
	if err := g.session.ChannelMessageDelete(string(msg.ChannelID), msg.MessageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete message %s: %w", msg.MessageID, err)
	}
	return nil
}

// Embed renders msg as a Discord embed. Informational messages carry no colour.
func Embed(msg domain.Message) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Body,
	}
	switch msg.Tone {
	case domain.ToneSuccess:
		embed.Color = ColourDarkGreen
	case domain.ToneFailure:
		embed.Color = ColourRed
	}
	return embed
}
