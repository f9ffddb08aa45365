package models

// Transaction is the inbound payload evaluated by the detection engine.
// Field names mirror the feature vector the scoring model was trained on,
// so they survive the wire unchanged all the way to the sidecar.
type Transaction struct {
	UserID                   int64   `json:"User_ID" validate:"required,gt=0"`
	TransactionAmount        float64 `json:"Transaction_Amount" validate:"required,gt=0"`
	TransactionLocation      string  `json:"Transaction_Location" validate:"required"`
	MerchantID               int64   `json:"Merchant_ID" validate:"gte=0"`
	DeviceID                 int64   `json:"Device_ID" validate:"required,gt=0"`
	CardType                 string  `json:"Card_Type" validate:"required"`
	TransactionCurrency      string  `json:"Transaction_Currency" validate:"required"`
	TransactionStatus        string  `json:"Transaction_Status" validate:"required"`
	PreviousTransactionCount int     `json:"Previous_Transaction_Count" validate:"gte=0"`
	DistanceKm               float64 `json:"Distance_Between_Transactions_km" validate:"gte=0"`
	TimeSinceLastTxMin       float64 `json:"Time_Since_Last_Transaction_min" validate:"gte=0"`
	AuthenticationMethod     string  `json:"Authentication_Method" validate:"required"`
	TransactionVelocity      int     `json:"Transaction_Velocity" validate:"gte=0"`
	TransactionCategory      string  `json:"Transaction_Category" validate:"required"`
	TransactionHour          int     `json:"Transaction_Hour" validate:"gte=0,lte=23"`
	TransactionDay           int     `json:"Transaction_Day" validate:"gte=1,lte=31"`
	TransactionMonth         int     `json:"Transaction_Month" validate:"gte=1,lte=12"`
	TransactionWeekday       int     `json:"Transaction_Weekday" validate:"gte=0,lte=6"`
	LogTransactionAmount     float64 `json:"Log_Transaction_Amount"`
	VelocityDistanceInteract float64 `json:"Velocity_Distance_Interact"`
	AmountVelocityInteract   float64 `json:"Amount_Velocity_Interact"`
	TimeDistanceInteract     float64 `json:"Time_Distance_Interact"`
	HourSin                  float64 `json:"Hour_sin" validate:"gte=-1,lte=1"`
	HourCos                  float64 `json:"Hour_cos" validate:"gte=-1,lte=1"`
	WeekdaySin               float64 `json:"Weekday_sin" validate:"gte=-1,lte=1"`
	WeekdayCos               float64 `json:"Weekday_cos" validate:"gte=-1,lte=1"`
}
