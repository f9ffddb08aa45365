package signature

import (
	"FraudGuard/internal/domain/models"
	"FraudGuard/pkg/config"
)

// Rule is one deterministic signature check. Match must be a pure
// function of the transaction.
type Rule struct {
	Reason string
	Boost  float64
	Match  func(tx *models.Transaction) bool
}

// Evaluator runs a fixed, ordered set of signature rules against a
// transaction. Rule order is part of the contract: alert reasons come
// back in declaration order so downstream consumers see stable output.
type Evaluator struct {
	rules []Rule
}

// NewEvaluator builds the rule set from config thresholds.
func NewEvaluator(cfg *config.Config) *Evaluator {
	sig := cfg.Signatures

	foreign := make(map[string]struct{}, len(sig.ForeignLocations))
	for _, loc := range sig.ForeignLocations {
		foreign[loc] = struct{}{}
	}

	rules := []Rule{
		{
			Reason: "High Amount",
			Boost:  sig.HighAmountBoost,
			Match: func(tx *models.Transaction) bool {
				return tx.TransactionAmount > sig.HighAmount
			},
		},
		{
			Reason: "Night",
			Boost:  sig.NightBoost,
			Match: func(tx *models.Transaction) bool {
				return tx.TransactionHour >= sig.NightStartHour && tx.TransactionHour < sig.NightEndHour
			},
		},
		{
			Reason: "High Velocity",
			Boost:  sig.VelocityBoost,
			Match: func(tx *models.Transaction) bool {
				return tx.TransactionVelocity > sig.VelocityThreshold
			},
		},
		{
			Reason: "Foreign",
			Boost:  sig.ForeignBoost,
			Match: func(tx *models.Transaction) bool {
				_, ok := foreign[tx.TransactionLocation]
				return ok
			},
		},
	}

	return &Evaluator{rules: rules}
}

// Evaluate runs every rule and returns the matched reasons in rule
// order along with the sum of their boosts.
func (e *Evaluator) Evaluate(tx *models.Transaction) ([]string, float64) {
	var reasons []string
	var boost float64
	for _, r := range e.rules {
		if r.Match(tx) {
			reasons = append(reasons, r.Reason)
			boost += r.Boost
		}
	}
	return reasons, boost
}
