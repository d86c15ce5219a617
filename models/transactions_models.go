package models

// TransactionRecord is one row of the transaction stream. Every field is
// nullable because upstream producers may omit any of them.
type TransactionRecord struct {
	TransactionID        *int64   `json:"transaction_id"`
	UserID               *int64   `json:"user_id"`
	Amount               *float64 `json:"amount"`
	TransactionType      *string  `json:"transaction_type"`
	Status               *string  `json:"status"`
	DeviceID             *string  `json:"device_id"`
	Location             *string  `json:"location"`
	IsForeignTransaction *bool    `json:"is_foreign_transaction"`
	NumChargebacks       *int64   `json:"num_chargebacks"`
}

// FeatureVector is the fixed order model input:
// user_id, amount, transaction_type_code, status_code, device_flag,
// foreign_location_flag, is_foreign_transaction, num_chargebacks.
type FeatureVector [8]float64

// ScoredTransaction is a TransactionRecord enriched for the sink. Field order
// matches the sink column order.
type ScoredTransaction struct {
	TransactionID        *int64   `json:"transaction_id" bson:"transaction_id"`
	UserID               *int64   `json:"user_id" bson:"user_id"`
	Amount               *float64 `json:"amount" bson:"amount"`
	TransactionType      *string  `json:"transaction_type" bson:"transaction_type"`
	Status               *string  `json:"status" bson:"status"`
	DeviceID             *string  `json:"device_id" bson:"device_id"`
	Location             *string  `json:"location" bson:"location"`
	IsForeignTransaction *bool    `json:"is_foreign_transaction" bson:"is_foreign_transaction"`
	NumChargebacks       *int64   `json:"num_chargebacks" bson:"num_chargebacks"`
	PotentialFraud       int      `json:"potential_fraud" bson:"potential_fraud"`
	PredictedFraud       int      `json:"predicted_fraud" bson:"predicted_fraud"`
}

// SinkColumns is the column order handed to the relational sink.
var SinkColumns = []string{
	"transaction_id", "user_id", "amount", "transaction_type",
	"status", "device_id", "location", "is_foreign_transaction",
	"num_chargebacks", "potential_fraud", "predicted_fraud",
}

func (t *TransactionRecord) Score(potentialFraud, predictedFraud int) ScoredTransaction {
	return ScoredTransaction{
		TransactionID:        t.TransactionID,
		UserID:               t.UserID,
		Amount:               t.Amount,
		TransactionType:      t.TransactionType,
		Status:               t.Status,
		DeviceID:             t.DeviceID,
		Location:             t.Location,
		IsForeignTransaction: t.IsForeignTransaction,
		NumChargebacks:       t.NumChargebacks,
		PotentialFraud:       potentialFraud,
		PredictedFraud:       predictedFraud,
	}
}

// Values returns the row in SinkColumns order.
func (s *ScoredTransaction) Values() []any {
	return []any{
		s.TransactionID, s.UserID, s.Amount, s.TransactionType,
		s.Status, s.DeviceID, s.Location, s.IsForeignTransaction,
		s.NumChargebacks, s.PotentialFraud, s.PredictedFraud,
	}
}
