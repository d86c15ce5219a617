package rules

import (
	// Go Internal Packages
	"testing"

	// Local Packages
	models "fraud-stream/models"

	// External Packages
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestPotentialFraud(t *testing.T) {
	tests := []struct {
		name        string
		amount      *float64
		foreign     *bool
		chargebacks *int64
		want        int
	}{
		{"all conditions", ptr(5000.01), ptr(true), ptr(int64(3)), 1},
		{"amount at threshold", ptr(5000.0), ptr(true), ptr(int64(3)), 0},
		{"domestic", ptr(9000.0), ptr(false), ptr(int64(5)), 0},
		{"chargebacks at threshold", ptr(9000.0), ptr(true), ptr(int64(2)), 0},
		{"null amount", nil, ptr(true), ptr(int64(3)), 0},
		{"null foreign", ptr(9000.0), nil, ptr(int64(3)), 0},
		{"null chargebacks", ptr(9000.0), ptr(true), nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := models.TransactionRecord{
				Amount:               tt.amount,
				IsForeignTransaction: tt.foreign,
				NumChargebacks:       tt.chargebacks,
			}
			assert.Equal(t, tt.want, PotentialFraud(&tx))
		})
	}
}
