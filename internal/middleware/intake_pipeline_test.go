package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"FraudGuard/internal/domain/models"
)

type fakeProc struct {
	calls int
	err   error
}

func (p *fakeProc) Process(ctx context.Context, tx *models.Transaction) error {
	p.calls++
	return p.err
}

type fakeMetrics struct{}

func (fakeMetrics) RecordEvaluation(string)       {}
func (fakeMetrics) RecordAlert(string)            {}
func (fakeMetrics) RecordError(string)            {}
func (fakeMetrics) RecordTrackedUsers(int)        {}
func (fakeMetrics) RecordLatency(string, float64) {}

func validTx() *models.Transaction {
	return &models.Transaction{UserID: 1, DeviceID: 2, TransactionAmount: 100}
}

func TestProcessRejectsInvalid(t *testing.T) {
	proc := &fakeProc{}
	p := NewIntakePipeline(proc, fakeMetrics{})

	if err := p.Process(context.Background(), nil); err == nil {
		t.Fatalf("nil transaction must be rejected")
	}
	if err := p.Process(context.Background(), &models.Transaction{UserID: 1}); err == nil {
		t.Fatalf("transaction without device must be rejected")
	}
	if proc.calls != 0 {
		t.Fatalf("invalid transactions must not reach downstream")
	}
}

func TestProcessThrottlesPerUser(t *testing.T) {
	proc := &fakeProc{}
	p := NewIntakePipeline(proc, fakeMetrics{}, WithMaxRPS(1))

	if err := p.Process(context.Background(), validTx()); err != nil {
		t.Fatalf("first transaction must pass: %v", err)
	}
	// Immediate second transaction for the same user is dropped silently.
	if err := p.Process(context.Background(), validTx()); err != nil {
		t.Fatalf("throttled transaction must not error: %v", err)
	}
	if proc.calls != 1 {
		t.Fatalf("expected 1 downstream call, got %d", proc.calls)
	}

	other := validTx()
	other.UserID = 2
	if err := p.Process(context.Background(), other); err != nil {
		t.Fatalf("other user must pass: %v", err)
	}
	if proc.calls != 2 {
		t.Fatalf("expected 2 downstream calls, got %d", proc.calls)
	}
}

func TestProcessBuffersOnDownstreamError(t *testing.T) {
	proc := &fakeProc{err: errors.New("sidecar down")}
	p := NewIntakePipeline(proc, fakeMetrics{}, WithBufferSize(4))

	if err := p.Process(context.Background(), validTx()); err == nil {
		t.Fatalf("downstream failure must be reported")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("failed transaction must be buffered, depth=%d", len(p.bufCh))
	}

	// Once the downstream recovers, the background flusher drains the buffer.
	proc.err = nil
	p.Start(context.Background())
	defer p.Stop()

	deadline := time.After(2 * time.Second)
	for len(p.bufCh) > 0 {
		select {
		case <-deadline:
			t.Fatalf("buffer not drained, depth=%d", len(p.bufCh))
		case <-time.After(10 * time.Millisecond):
		}
	}
}
