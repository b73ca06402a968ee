package approval

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loginguard/internal/domain"
	"loginguard/internal/notify"
)

type recordingProcessor struct {
	mu        sync.Mutex
	processed []string
	done      chan struct{}
	want      int
}

func newRecordingProcessor(want int) *recordingProcessor {
	return &recordingProcessor{done: make(chan struct{}), want: want}
}

func (p *recordingProcessor) Process(_ context.Context, event domain.ChangeEvent) *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed = append(p.processed, event.Payload)
	if len(p.processed) == p.want {
		close(p.done)
	}
	return &Session{Event: event, Stage: StageCleaned}
}

func (p *recordingProcessor) payloads() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.processed...)
}

func runWorker(t *testing.T, w *Worker) (stop func() error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	return func() error {
		cancel()
		select {
		case err := <-errCh:
			return err
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not stop")
			return nil
		}
	}
}

func TestWorker_SingleWorkerKeepsQueueOrder(t *testing.T) {
	queue := notify.NewQueue(10)
	for i := 1; i <= 5; i++ {
		require.NoError(t, queue.TryEnqueue(domain.ChangeEvent{Topic: "bot_updates", Payload: fmt.Sprint(i)}))
	}
	processor := newRecordingProcessor(5)
	stop := runWorker(t, NewWorker(processor, queue, WithWorkerLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))))

	select {
	case <-processor.done:
	case <-time.After(2 * time.Second):
		t.Fatal("events were not processed")
	}

	assert.ErrorIs(t, stop(), context.Canceled)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, processor.payloads())
}

func TestWorker_ManyWorkersProcessEachEventOnce(t *testing.T) {
	queue := notify.NewQueue(100)
	for i := range 50 {
		require.NoError(t, queue.TryEnqueue(domain.ChangeEvent{Topic: "bot_updates", Payload: fmt.Sprint(i)}))
	}
	processor := newRecordingProcessor(50)
	stop := runWorker(t, NewWorker(processor, queue, WithWorkers(4)))

	select {
	case <-processor.done:
	case <-time.After(2 * time.Second):
		t.Fatal("events were not processed")
	}
	_ = stop()

	seen := make(map[string]int)
	for _, p := range processor.payloads() {
		seen[p]++
	}
	assert.Len(t, seen, 50)
	for payload, n := range seen {
		assert.Equal(t, 1, n, "payload %s processed more than once", payload)
	}
}
