package features

import (
	"math"

	"FraudGuard/internal/domain/models"
)

// Enrich fills derived model features that stream producers often omit.
// HTTP callers send the full trained feature vector; intake messages
// frequently carry only the raw fields, so missing (zero) derived
// values are recomputed here from their sources. Already-populated
// values are left untouched.
func Enrich(tx *models.Transaction) {
	if tx == nil {
		return
	}

	if tx.LogTransactionAmount == 0 && tx.TransactionAmount > 0 {
		tx.LogTransactionAmount = math.Log1p(tx.TransactionAmount)
	}

	if tx.HourSin == 0 && tx.HourCos == 0 {
		tx.HourSin, tx.HourCos = cyclical(float64(tx.TransactionHour), 24)
	}
	if tx.WeekdaySin == 0 && tx.WeekdayCos == 0 {
		tx.WeekdaySin, tx.WeekdayCos = cyclical(float64(tx.TransactionWeekday), 7)
	}

	if tx.VelocityDistanceInteract == 0 {
		tx.VelocityDistanceInteract = float64(tx.TransactionVelocity) * tx.DistanceKm
	}
	if tx.AmountVelocityInteract == 0 {
		tx.AmountVelocityInteract = tx.TransactionAmount * float64(tx.TransactionVelocity)
	}
	if tx.TimeDistanceInteract == 0 {
		tx.TimeDistanceInteract = tx.TimeSinceLastTxMin * tx.DistanceKm
	}
}

// cyclical encodes a periodic value as a point on the unit circle so
// hour 23 sits next to hour 0 in feature space.
func cyclical(v, period float64) (sin, cos float64) {
	theta := 2 * math.Pi * v / period
	return math.Sin(theta), math.Cos(theta)
}
