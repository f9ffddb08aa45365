package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"FraudGuard/internal/domain/models"
	"FraudGuard/internal/middleware"
	"FraudGuard/internal/services/features"
	"FraudGuard/pkg/logger"
)

// TransactionIntakeHandler consumes raw transactions from the intake
// topic and pushes them through the pipeline into the detector.
// Assessments produced here have no HTTP caller; alerts still reach the
// alert topic and live subscribers through the detector's delivery.
type TransactionIntakeHandler struct {
	topic    string
	pipe     *middleware.IntakePipeline
	logger   *logger.Logger
	validate *validator.Validate
}

// NewTransactionIntakeHandler creates a handler for the given topic.
func NewTransactionIntakeHandler(topic string, pipe *middleware.IntakePipeline, log *logger.Logger) *TransactionIntakeHandler {
	return &TransactionIntakeHandler{
		topic:    topic,
		pipe:     pipe,
		logger:   log,
		validate: validator.New(),
	}
}

// Topic returns the topic this handler subscribes to.
func (h *TransactionIntakeHandler) Topic() string {
	return h.topic
}

// Pipeline exposes the pipeline so the app can manage its lifecycle.
func (h *TransactionIntakeHandler) Pipeline() *middleware.IntakePipeline {
	return h.pipe
}

// Handle decodes and validates one message, then runs the evaluation.
// Decode and validation failures are returned so the consumer's retry
// and dead-letter handling applies.
func (h *TransactionIntakeHandler) Handle(ctx context.Context, data []byte) error {
	var tx models.Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		h.logger.Warn("intake decode", logger.Error(err))
		return fmt.Errorf("decode transaction: %w", err)
	}
	features.Enrich(&tx)
	if err := h.validate.StructCtx(ctx, &tx); err != nil {
		h.logger.Warn("intake validate",
			logger.Int64("user_id", tx.UserID), logger.Error(err))
		return fmt.Errorf("validate transaction: %w", err)
	}
	return h.pipe.Process(ctx, &tx)
}

// DetectorProc adapts the Detector to the pipeline's Proc interface,
// dropping the assessment the stream path has no caller for.
type DetectorProc struct {
	detector *Detector
}

// NewDetectorProc wraps d for pipeline use.
func NewDetectorProc(d *Detector) *DetectorProc {
	return &DetectorProc{detector: d}
}

func (p *DetectorProc) Process(ctx context.Context, tx *models.Transaction) error {
	_, err := p.detector.Detect(ctx, tx)
	return err
}
