package features

import (
	// Go Internal Packages
	"testing"

	// Local Packages
	models "fraud-stream/models"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func record(id int64, txType string) models.TransactionRecord {
	return models.TransactionRecord{
		TransactionID:        ptr(id),
		UserID:               ptr(int64(100 + id)),
		Amount:               ptr(float64(id) * 10.5),
		TransactionType:      ptr(txType),
		Status:               ptr("completed"),
		DeviceID:             ptr("dev123"),
		Location:             ptr("Mumbai, India"),
		IsForeignTransaction: ptr(false),
		NumChargebacks:       ptr(int64(0)),
	}
}

func TestEncodeRecord(t *testing.T) {
	e := NewEncoder("devF", "India")
	tx := models.TransactionRecord{
		TransactionID:        ptr(int64(1)),
		UserID:               ptr(int64(42)),
		Amount:               ptr(6250.75),
		TransactionType:      ptr("payment"),
		Status:               ptr("pending"),
		DeviceID:             ptr("devF-998"),
		Location:             ptr("Berlin, Germany"),
		IsForeignTransaction: ptr(true),
		NumChargebacks:       ptr(int64(3)),
	}

	fv := e.EncodeRecord(&tx)

	assert.Equal(t, models.FeatureVector{42, 6250.75, 2, 1, 1, 1, 1, 3}, fv)
}

func TestUnknownCategoricals(t *testing.T) {
	assert.Equal(t, UnknownCode, TransactionTypeCode(ptr("unknown_value")))
	assert.Equal(t, 2, TransactionTypeCode(ptr("payment")))
	assert.Equal(t, UnknownCode, TransactionTypeCode(nil))
	assert.Equal(t, UnknownCode, StatusCode(ptr("COMPLETED")))
	assert.Equal(t, 3, StatusCode(ptr("success")))
	assert.Equal(t, UnknownCode, StatusCode(nil))
}

func TestNullFields(t *testing.T) {
	e := NewEncoder("devF", "India")

	fv := e.EncodeRecord(&models.TransactionRecord{})

	// null device is not flagged, null location is treated as foreign
	assert.Equal(t, models.FeatureVector{0, 0, UnknownCode, UnknownCode, 0, 1, 0, 0}, fv)
}

func TestLocationMatchIsCaseSensitive(t *testing.T) {
	e := NewEncoder("devF", "India")

	home := record(1, "payment")
	lower := record(2, "payment")
	lower.Location = ptr("delhi, india")

	assert.Equal(t, float64(0), e.EncodeRecord(&home)[5])
	assert.Equal(t, float64(1), e.EncodeRecord(&lower)[5])
}

func TestEncodePreservesOrder(t *testing.T) {
	e := NewEncoder("devF", "India")
	batch := []models.TransactionRecord{
		record(1, "withdrawal"), record(2, "transfer"), record(3, "purchase"),
	}
	reversed := []models.TransactionRecord{batch[2], batch[1], batch[0]}

	out := e.Encode(batch)
	outReversed := e.Encode(reversed)

	require.Len(t, out, 3)
	assert.Equal(t, []float64{0, 1, 3}, []float64{out[0][2], out[1][2], out[2][2]})
	for i := range out {
		assert.Equal(t, out[i], outReversed[len(out)-1-i])
	}
}

func TestEncodeEmpty(t *testing.T) {
	assert.Empty(t, NewEncoder("devF", "India").Encode(nil))
}
