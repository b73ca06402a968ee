package approval

import (
	"context"
	"fmt"
	"time"

	"loginguard/internal/domain"
	"loginguard/pkg/platform/clock"
	"loginguard/pkg/platform/wait"
)

// Poller samples the reactions on a prompt until one marker crosses the
// threshold or the window closes.
type Poller struct {
	gateway   MessagingGateway
	clock     clock.Clock
	interval  time.Duration
	threshold int
}

// NewPoller builds a Poller. A marker wins once strictly more than threshold
// users reacted with it; threshold 1 discounts the bot's own reaction.
func NewPoller(gateway MessagingGateway, clk clock.Clock, interval time.Duration, threshold int) *Poller {
	if clk == nil {
		clk = clock.Real()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Poller{gateway: gateway, clock: clk, interval: interval, threshold: threshold}
}

// Poll returns DecisionApproved or DecisionDenied for the first marker to
// cross the threshold, checking approve before deny on every cycle, and
// DecisionTimedOut once window has elapsed. A failed fetch is returned as an
// error.
func (p *Poller) Poll(ctx context.Context, msg domain.MessageRef, approve, deny string, window time.Duration) (domain.Decision, error) {
	decision := domain.DecisionTimedOut
	deadline := p.clock.Now().Add(window)

	decided, err := wait.Until(ctx, p.clock, p.interval, deadline, func(ctx context.Context) (bool, error) {
		won, err := p.crossed(ctx, msg, approve)
		if err != nil || won {
			decision = domain.DecisionApproved
			return won, err
		}
		won, err = p.crossed(ctx, msg, deny)
		if err != nil || won {
			decision = domain.DecisionDenied
			return won, err
		}
		return false, nil
	})
	if err != nil {
		return domain.DecisionPending, err
	}
	if !decided {
		return domain.DecisionTimedOut, nil
	}
	return decision, nil
}

func (p *Poller) crossed(ctx context.Context, msg domain.MessageRef, marker string) (bool, error) {
	reactors, err := p.gateway.ListReactors(ctx, msg, marker)
	if err != nil {
		return false, fmt.Errorf("list %s reactors: %w", marker, err)
	}
	return len(reactors) > p.threshold, nil
}
