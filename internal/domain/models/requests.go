package models

// HistoryRequest selects a slice of the assessment history for one user.
type HistoryRequest struct {
	UserID int64  `query:"user_id" validate:"required,gt=0"`
	From   string `query:"from" validate:"omitempty"`
	To     string `query:"to" validate:"omitempty"`
	Limit  int    `query:"limit" default:"50" validate:"gte=1,lte=500"`
}
