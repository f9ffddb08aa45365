package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FraudGuard/internal/domain/models"
	drepo "FraudGuard/internal/domain/repository"
)

// Proc is the downstream the pipeline feeds transactions into.
type Proc interface {
	Process(ctx context.Context, tx *models.Transaction) error
}

// IntakePipeline sits between the streaming intake and the detector.
// It sanity-checks transactions, throttles per user, and buffers when
// the downstream is temporarily failing (typically the scoring sidecar
// restarting) so stream traffic is not lost outright.
type IntakePipeline struct {
	proc    Proc
	metrics drepo.Metrics
	maxRPS  int
	bufSize int
	bufCh   chan *models.Transaction
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
	// per-user last accepted time for throttling
	lastSeen map[int64]time.Time
}

type PipelineOption func(*IntakePipeline)

// WithMaxRPS caps accepted transactions per second per user.
func WithMaxRPS(n int) PipelineOption {
	return func(p *IntakePipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the retry buffer capacity.
func WithBufferSize(n int) PipelineOption {
	return func(p *IntakePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewIntakePipeline creates a pipeline in front of proc.
func NewIntakePipeline(proc Proc, metrics drepo.Metrics, opts ...PipelineOption) *IntakePipeline {
	p := &IntakePipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   50,
		bufSize:  1000,
		stopCh:   make(chan struct{}),
		lastSeen: make(map[int64]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.Transaction, p.bufSize)
	return p
}

// Start launches background flushing of buffered transactions.
func (p *IntakePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case tx := <-p.bufCh:
				if tx == nil {
					continue
				}
				if err := p.proc.Process(ctx, tx); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					select {
					case p.bufCh <- tx:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *IntakePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards one transaction,
// buffering it for retry when the downstream fails.
func (p *IntakePipeline) Process(ctx context.Context, tx *models.Transaction) error {
	start := time.Now()
	if err := validateTransaction(tx); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(tx.UserID, start) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.proc.Process(ctx, tx); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- tx:
			p.metrics.RecordLatency("pipeline_buffer_depth", float64(len(p.bufCh)))
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateTransaction(tx *models.Transaction) error {
	if tx == nil {
		return fmt.Errorf("transaction nil")
	}
	if tx.UserID <= 0 {
		return fmt.Errorf("user id invalid")
	}
	if tx.DeviceID <= 0 {
		return fmt.Errorf("device id invalid")
	}
	if tx.TransactionAmount <= 0 {
		return fmt.Errorf("amount invalid")
	}
	return nil
}

func (p *IntakePipeline) allow(userID int64, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[userID]
	if last.IsZero() {
		p.lastSeen[userID] = now
		return true
	}
	if now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[userID] = now
	return true
}
