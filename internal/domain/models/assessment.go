package models

import "time"

// RiskAssessment is the result of evaluating one transaction. It is
// returned to the caller, appended to the assessment history, published
// on the alert topic and fanned out to live subscribers.
type RiskAssessment struct {
	TransactionID    int64     `json:"Transaction_ID"`
	UserID           int64     `json:"User_ID"`
	FraudProbability float64   `json:"Fraud_Probability"`
	FinalRiskScore   float64   `json:"Final_Risk_Score"`
	ModelFlag        int       `json:"isFraud_pred"`
	AlertTriggered   bool      `json:"alert_triggered"`
	AlertReasons     []string  `json:"alert_reasons"`
	Timestamp        time.Time `json:"timestamp"`
}
