package features

import (
	// Go Internal Packages
	"strings"

	// Local Packages
	models "fraud-stream/models"
)

// UnknownCode is used for any categorical value outside the known set, null included.
const UnknownCode = 4

// missingText is how absent text fields are rendered before flag checks.
const missingText = "None"

var transactionTypeCodes = map[string]int{
	"withdrawal": 0,
	"transfer":   1,
	"payment":    2,
	"purchase":   3,
}

var statusCodes = map[string]int{
	"completed": 0,
	"pending":   1,
	"failed":    2,
	"success":   3,
}

// Encoder projects transaction records to model features. It holds no mutable
// state and is safe for concurrent use.
type Encoder struct {
	devicePrefix string
	homeRegion   string
}

// NewEncoder returns an encoder flagging devices starting with devicePrefix and
// locations not containing homeRegion. The location match is case sensitive.
func NewEncoder(devicePrefix, homeRegion string) *Encoder {
	return &Encoder{devicePrefix: devicePrefix, homeRegion: homeRegion}
}

// Encode returns one vector per record, in input order.
func (e *Encoder) Encode(txs []models.TransactionRecord) []models.FeatureVector {
	out := make([]models.FeatureVector, len(txs))
	for i := range txs {
		out[i] = e.EncodeRecord(&txs[i])
	}
	return out
}

func (e *Encoder) EncodeRecord(tx *models.TransactionRecord) models.FeatureVector {
	return models.FeatureVector{
		intValue(tx.UserID),
		floatValue(tx.Amount),
		float64(TransactionTypeCode(tx.TransactionType)),
		float64(StatusCode(tx.Status)),
		flag(strings.HasPrefix(text(tx.DeviceID), e.devicePrefix)),
		flag(!strings.Contains(text(tx.Location), e.homeRegion)),
		flag(tx.IsForeignTransaction != nil && *tx.IsForeignTransaction),
		intValue(tx.NumChargebacks),
	}
}

func TransactionTypeCode(v *string) int {
	return code(transactionTypeCodes, v)
}

func StatusCode(v *string) int {
	return code(statusCodes, v)
}

func code(table map[string]int, v *string) int {
	if v == nil {
		return UnknownCode
	}
	if c, ok := table[*v]; ok {
		return c
	}
	return UnknownCode
}

func text(v *string) string {
	if v == nil {
		return missingText
	}
	return *v
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Numeric nulls are encoded as 0 since the wire matrix cannot carry NaN.
func intValue(v *int64) float64 {
	if v == nil {
		return 0
	}
	return float64(*v)
}

func floatValue(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
