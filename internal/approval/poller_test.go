package approval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"loginguard/internal/approval/mocks"
	"loginguard/internal/domain"
	"loginguard/pkg/platform/clock"
)

// reactionScript returns reactor counts per marker for each cycle; the last
// entry repeats once the script runs out.
type reactionScript struct {
	approve []int
	deny    []int
}

func reactors(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "user"
	}
	return out
}

func at(counts []int, cycle int) int {
	if cycle < len(counts) {
		return counts[cycle]
	}
	return counts[len(counts)-1]
}

func TestPoller_Poll(t *testing.T) {
	msg := domain.MessageRef{ChannelID: "dm", MessageID: "prompt"}

	tests := []struct {
		name       string
		script     reactionScript
		want       domain.Decision
		wantSleeps int
		denyCalls  int
	}{
		{
			name:   "approve crosses on the first cycle",
			script: reactionScript{approve: []int{2}, deny: []int{1}},
			want:   domain.DecisionApproved,
		},
		{
			name:      "deny crosses on the first cycle",
			script:    reactionScript{approve: []int{1}, deny: []int{2}},
			want:      domain.DecisionDenied,
			denyCalls: 1,
		},
		{
			name:   "approve is checked before deny",
			script: reactionScript{approve: []int{2}, deny: []int{2}},
			want:   domain.DecisionApproved,
		},
		{
			name:       "approve crosses on the third cycle",
			script:     reactionScript{approve: []int{1, 1, 2}, deny: []int{1}},
			want:       domain.DecisionApproved,
			wantSleeps: 2,
			denyCalls:  2,
		},
		{
			name:       "bot reaction alone never wins",
			script:     reactionScript{approve: []int{1}, deny: []int{1}},
			want:       domain.DecisionTimedOut,
			wantSleeps: 30,
			denyCalls:  30,
		},
		{
			name:       "no reactions at all time out",
			script:     reactionScript{approve: []int{0}, deny: []int{0}},
			want:       domain.DecisionTimedOut,
			wantSleeps: 30,
			denyCalls:  30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			gateway := mocks.NewMockMessagingGateway(ctrl)
			clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

			approveCycle, denyCycle := 0, 0
			gateway.EXPECT().ListReactors(gomock.Any(), msg, "✅").
				DoAndReturn(func(context.Context, domain.MessageRef, string) ([]string, error) {
					n := at(tt.script.approve, approveCycle)
					approveCycle++
					return reactors(n), nil
				}).AnyTimes()
			gateway.EXPECT().ListReactors(gomock.Any(), msg, "❌").
				DoAndReturn(func(context.Context, domain.MessageRef, string) ([]string, error) {
					n := at(tt.script.deny, denyCycle)
					denyCycle++
					return reactors(n), nil
				}).AnyTimes()

			poller := NewPoller(gateway, clk, time.Second, 1)
			got, err := poller.Poll(context.Background(), msg, "✅", "❌", 30*time.Second)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, clk.Sleeps(), tt.wantSleeps)
			assert.Equal(t, tt.denyCalls, denyCycle)
		})
	}
}

func TestPoller_FetchErrorAborts(t *testing.T) {
	msg := domain.MessageRef{ChannelID: "dm", MessageID: "prompt"}
	boom := errors.New("discord: 503")

	t.Run("approve fetch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gateway := mocks.NewMockMessagingGateway(ctrl)
		gateway.EXPECT().ListReactors(gomock.Any(), msg, "✅").Return(nil, boom)

		poller := NewPoller(gateway, clock.NewFake(time.Now()), time.Second, 1)
		got, err := poller.Poll(context.Background(), msg, "✅", "❌", 30*time.Second)

		require.ErrorIs(t, err, boom)
		assert.Equal(t, domain.DecisionPending, got)
	})

	t.Run("deny fetch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gateway := mocks.NewMockMessagingGateway(ctrl)
		gateway.EXPECT().ListReactors(gomock.Any(), msg, "✅").Return([]string{"bot"}, nil)
		gateway.EXPECT().ListReactors(gomock.Any(), msg, "❌").Return(nil, boom)

		poller := NewPoller(gateway, clock.NewFake(time.Now()), time.Second, 1)
		_, err := poller.Poll(context.Background(), msg, "✅", "❌", 30*time.Second)

		require.ErrorIs(t, err, boom)
	})
}

func TestPoller_ContextCancelled(t *testing.T) {
	msg := domain.MessageRef{ChannelID: "dm", MessageID: "prompt"}
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockMessagingGateway(ctrl)
	gateway.EXPECT().ListReactors(gomock.Any(), msg, gomock.Any()).Return([]string{"bot"}, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	clk := clock.NewFake(time.Now())
	clk.OnSleep(func(time.Duration) { cancel() })

	_, err := NewPoller(gateway, clk, time.Second, 1).Poll(ctx, msg, "✅", "❌", 30*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
