package usecase

import (
	"context"
	"testing"

	"FraudGuard/internal/middleware"
)

func newIntakeHandler(t *testing.T, sc *stubScorer) (*TransactionIntakeHandler, *stubScorer) {
	t.Helper()
	d := NewDetector(detectorConfig(), sc, &stubRules{}, &stubProfiles{},
		nil, nil, nil, nopMetrics{}, testLogger(t))
	pipe := middleware.NewIntakePipeline(NewDetectorProc(d), nopMetrics{})
	return NewTransactionIntakeHandler("fraudguard.transactions", pipe, testLogger(t)), sc
}

func TestHandleRejectsMalformedJSON(t *testing.T) {
	h, sc := newIntakeHandler(t, &stubScorer{prob: 0.1})
	if err := h.Handle(context.Background(), []byte("{not json")); err == nil {
		t.Fatalf("malformed message must error")
	}
	if sc.calls != 0 {
		t.Fatalf("malformed message must not be scored")
	}
}

func TestHandleRejectsInvalidTransaction(t *testing.T) {
	h, sc := newIntakeHandler(t, &stubScorer{prob: 0.1})
	if err := h.Handle(context.Background(), []byte(`{"User_ID": 1}`)); err == nil {
		t.Fatalf("incomplete transaction must fail validation")
	}
	if sc.calls != 0 {
		t.Fatalf("invalid message must not be scored")
	}
}

func TestHandleEvaluatesValidMessage(t *testing.T) {
	h, sc := newIntakeHandler(t, &stubScorer{prob: 0.2})

	// Raw stream message without the derived model features; the intake
	// path computes them before validation.
	msg := []byte(`{
		"User_ID": 5, "Device_ID": 9, "Transaction_Amount": 1200.5,
		"Transaction_Location": "Vietnam", "Merchant_ID": 3,
		"Card_Type": "Visa", "Transaction_Currency": "VND",
		"Transaction_Status": "Completed", "Authentication_Method": "PIN",
		"Transaction_Category": "Groceries", "Transaction_Velocity": 2,
		"Transaction_Hour": 10, "Transaction_Day": 14,
		"Transaction_Month": 3, "Transaction_Weekday": 5
	}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("valid message failed: %v", err)
	}
	if sc.calls != 1 {
		t.Fatalf("expected 1 scoring call, got %d", sc.calls)
	}
	if h.Topic() != "fraudguard.transactions" {
		t.Fatalf("unexpected topic %s", h.Topic())
	}
}
