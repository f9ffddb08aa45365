package models

import "errors"

// Scoring failures fall into two classes with different operational
// meaning: the sidecar not being ready is a deployment condition the
// caller can retry against, a failed inference call is not.
var (
	// ErrScoringUnavailable means the scoring sidecar is unreachable or
	// reports that its model artifacts are not loaded.
	ErrScoringUnavailable = errors.New("scoring service unavailable")

	// ErrInference means the sidecar was reachable but the scoring call
	// itself failed (transport error, malformed reply, bad probability).
	ErrInference = errors.New("inference failure")
)
