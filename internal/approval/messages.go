package approval

import (
	"fmt"

	"loginguard/internal/domain"
)

const loginTitle = "Minecraft login"

func promptMessage(account string) domain.Message {
	return domain.Message{
		Title: loginTitle,
		Body:  fmt.Sprintf("The Minecraft user %s tried to login on the Minecraft server. Was it you?", account),
		Tone:  domain.ToneInfo,
	}
}

var (
	alreadyAuthenticatedMessage = domain.Message{
		Title: loginTitle,
		Body:  "You are already logged in on the Minecraft server.",
		Tone:  domain.ToneFailure,
	}
	internalErrorMessage = domain.Message{
		Title: loginTitle,
		Body:  "An internal error occured. Please try again or contact an administrator if this problem persists!",
		Tone:  domain.ToneFailure,
	}
	approvedMessage = domain.Message{
		Title: loginTitle,
		Body:  "The login request has been approved. You can now join the protected Minecraft servers for the next 30 minutes.",
		Tone:  domain.ToneSuccess,
	}
	deniedMessage = domain.Message{
		Title: loginTitle,
		Body:  "The login request has been denied. Contact the Discord moderators if you keep receiving login requests from me.",
		Tone:  domain.ToneFailure,
	}
)
