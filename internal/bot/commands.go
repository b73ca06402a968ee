package bot

import (
	"context"
	"errors"
	"fmt"

	"loginguard/internal/domain"
	id "loginguard/pkg/domain"
	"loginguard/pkg/platform/sentinel"
)

// PlayerStore is the registration state the slash commands read and write.
type PlayerStore interface {
	AddPlayer(ctx context.Context, identity id.DiscordID, registrationCode string) error
	DeletePlayer(ctx context.Context, identity id.DiscordID) error
	IsRegistered(ctx context.Context, identity id.DiscordID) (bool, error)
	// GetMinecraftName returns sentinel.ErrNotFound until the in-game step is done.
	GetMinecraftName(ctx context.Context, identity id.DiscordID) (string, error)
	GetRegistrationCode(ctx context.Context, identity id.DiscordID) (string, error)
}

// Command is one guild slash command.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, invoker id.DiscordID) (domain.Message, error)
}

type pingCommand struct{}

func (pingCommand) Name() string        { return "ping" }
func (pingCommand) Description() string { return "A ping command" }

func (pingCommand) Run(context.Context, id.DiscordID) (domain.Message, error) {
	return domain.Message{Title: "Ping pong", Body: "Pong!", Tone: domain.ToneSuccess}, nil
}

const registrationTitle = "Minecraft registration"

type registerCommand struct {
	store         PlayerStore
	newCode       func() (string, error)
	serverAddress string
}

func (registerCommand) Name() string        { return "register" }
func (registerCommand) Description() string { return "Register yourself to the Minecraft server" }

func (c registerCommand) Run(ctx context.Context, invoker id.DiscordID) (domain.Message, error) {
	registered, err := c.store.IsRegistered(ctx, invoker)
	if err != nil {
		return domain.Message{}, err
	}

	if !registered {
		code, err := c.newCode()
		if err != nil {
			return domain.Message{}, fmt.Errorf("generate registration code: %w", err)
		}
		if err := c.store.AddPlayer(ctx, invoker, code); err != nil {
			return domain.Message{}, err
		}
		return domain.Message{
			Title: registrationTitle,
			Body:  "There we go! I have added a registration request for you! " + c.instructions(code),
			Tone:  domain.ToneSuccess,
		}, nil
	}

	_, err = c.store.GetMinecraftName(ctx, invoker)
	switch {
	case err == nil:
		return domain.Message{
			Title: registrationTitle,
			Body:  "You are already registered on the Minecraft server. Please unregister before trying to register again.",
			Tone:  domain.ToneFailure,
		}, nil
	case errors.Is(err, sentinel.ErrNotFound):
		code, err := c.store.GetRegistrationCode(ctx, invoker)
		if err != nil {
			return domain.Message{}, err
		}
		return domain.Message{
			Title: registrationTitle,
			Body:  "You have a pending registration status. " + c.instructions(code),
			Tone:  domain.ToneFailure,
		}, nil
	default:
		return domain.Message{}, err
	}
}

func (c registerCommand) instructions(code string) string {
	return fmt.Sprintf("To complete the registration process, please open Minecraft, click on Multiplayer and join the server\n\n"+
		"```\n%s\n```\n\n"+
		"Once joined, enter the following command in minecraft:\n\n"+
		"```\n/register %s\n```\n\n"+
		"to link your Minecraft account to your Discord account.", c.serverAddress, code)
}

const unregistrationTitle = "Minecraft unregistration"

type unregisterCommand struct {
	store PlayerStore
}

func (unregisterCommand) Name() string        { return "unregister" }
func (unregisterCommand) Description() string { return "Unregister yourself from the Minecraft server" }

func (c unregisterCommand) Run(ctx context.Context, invoker id.DiscordID) (domain.Message, error) {
	registered, err := c.store.IsRegistered(ctx, invoker)
	if err != nil {
		return domain.Message{}, err
	}
	if !registered {
		return domain.Message{
			Title: unregistrationTitle,
			Body:  "You are not registered on the Minecraft server.",
			Tone:  domain.ToneFailure,
		}, nil
	}
	if err := c.store.DeletePlayer(ctx, invoker); err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		Title: unregistrationTitle,
		Body:  "You have been successfully unregistered from the Minecraft server",
		Tone:  domain.ToneSuccess,
	}, nil
}
