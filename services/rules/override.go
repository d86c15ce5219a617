package rules

import (
	// Local Packages
	models "fraud-stream/models"
)

const (
	AmountThreshold     = 5000
	ChargebackThreshold = 2
)

// PotentialFraud flags large foreign transactions from users with repeated
// chargebacks. Null inputs never satisfy a condition.
func PotentialFraud(tx *models.TransactionRecord) int {
	if tx.Amount == nil || tx.IsForeignTransaction == nil || tx.NumChargebacks == nil {
		return 0
	}
	if *tx.Amount > AmountThreshold && *tx.IsForeignTransaction && *tx.NumChargebacks > ChargebackThreshold {
		return 1
	}
	return 0
}
