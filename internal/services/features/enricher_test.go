package features

import (
	"math"
	"testing"

	"FraudGuard/internal/domain/models"
)

func TestEnrichFillsDerivedFeatures(t *testing.T) {
	tx := &models.Transaction{
		TransactionAmount:   1000,
		TransactionHour:     6,
		TransactionWeekday:  3,
		TransactionVelocity: 4,
		DistanceKm:          2.5,
		TimeSinceLastTxMin:  12,
	}
	Enrich(tx)

	if got, want := tx.LogTransactionAmount, math.Log1p(1000); got != want {
		t.Fatalf("expected log amount %v, got %v", want, got)
	}
	if got, want := tx.HourSin, math.Sin(2*math.Pi*6/24); math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected hour sin %v, got %v", want, got)
	}
	if got, want := tx.WeekdayCos, math.Cos(2*math.Pi*3/7); math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected weekday cos %v, got %v", want, got)
	}
	if tx.VelocityDistanceInteract != 10 {
		t.Fatalf("expected velocity*distance 10, got %v", tx.VelocityDistanceInteract)
	}
	if tx.TimeDistanceInteract != 30 {
		t.Fatalf("expected time*distance 30, got %v", tx.TimeDistanceInteract)
	}
}

func TestEnrichKeepsProvidedValues(t *testing.T) {
	tx := &models.Transaction{
		TransactionAmount:    1000,
		LogTransactionAmount: 5.5,
		HourSin:              0.25,
		HourCos:              0.75,
	}
	Enrich(tx)

	if tx.LogTransactionAmount != 5.5 {
		t.Fatalf("provided log amount must survive, got %v", tx.LogTransactionAmount)
	}
	if tx.HourSin != 0.25 || tx.HourCos != 0.75 {
		t.Fatalf("provided cyclical encoding must survive, got %v/%v", tx.HourSin, tx.HourCos)
	}
}
