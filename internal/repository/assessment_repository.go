package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FraudGuard/internal/domain/models"
)

// reasonSeparator joins alert reasons into one column. None of the
// fixed reason strings contain it.
const reasonSeparator = ","

// ClickHouseAssessmentStore persists risk assessments to ClickHouse.
type ClickHouseAssessmentStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseAssessmentStore creates a store writing to table.
func NewClickHouseAssessmentStore(db *sql.DB, table string) *ClickHouseAssessmentStore {
	return &ClickHouseAssessmentStore{db: db, table: table}
}

// SchemaStatements returns idempotent DDL for the assessment table.
func SchemaStatements(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			assessed_at    DateTime,
			transaction_id Int64,
			user_id        Int64,
			probability    Float64,
			final_score    Float64,
			model_flag     UInt8,
			alert          UInt8,
			reasons        String
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(assessed_at)
		ORDER BY (user_id, assessed_at)`, table),
	}
}

func (s *ClickHouseAssessmentStore) Append(ctx context.Context, a *models.RiskAssessment) error {
	q := fmt.Sprintf("INSERT INTO %s (assessed_at, transaction_id, user_id, probability, final_score, model_flag, alert, reasons) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		a.Timestamp,
		a.TransactionID,
		a.UserID,
		a.FraudProbability,
		a.FinalRiskScore,
		uint8(a.ModelFlag),
		boolToUint8(a.AlertTriggered),
		strings.Join(a.AlertReasons, reasonSeparator),
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (s *ClickHouseAssessmentStore) Query(ctx context.Context, userID int64, from, to time.Time, limit int) ([]*models.RiskAssessment, error) {
	q := fmt.Sprintf("SELECT assessed_at, transaction_id, user_id, probability, final_score, model_flag, alert, reasons FROM %s WHERE user_id = ? AND assessed_at >= ? AND assessed_at <= ? ORDER BY assessed_at DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, userID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var out []*models.RiskAssessment
	for rows.Next() {
		var a models.RiskAssessment
		var modelFlag, alert uint8
		var reasons string
		if err := rows.Scan(&a.Timestamp, &a.TransactionID, &a.UserID,
			&a.FraudProbability, &a.FinalRiskScore, &modelFlag, &alert, &reasons); err != nil {
			return nil, err
		}
		a.ModelFlag = int(modelFlag)
		a.AlertTriggered = alert == 1
		if reasons != "" {
			a.AlertReasons = strings.Split(reasons, reasonSeparator)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *ClickHouseAssessmentStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the connection pool belongs to the client in pkg.
func (s *ClickHouseAssessmentStore) Close() error {
	return nil
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
