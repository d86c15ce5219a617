package scoring

import (
	// Go Internal Packages
	"testing"

	// Local Packages
	errors "fraud-stream/errors"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		n       int
		want    []int
		wantErr string
	}{
		{name: "object", raw: `{"result": [1, 0]}`, n: 2, want: []int{1, 0}},
		{name: "string wrapped", raw: `"{\"result\": [0, 1]}"`, n: 2, want: []int{0, 1}},
		{name: "integral floats", raw: `{"result": [1.0, 0.0]}`, n: 2, want: []int{1, 0}},
		{name: "missing result", raw: `{"predictions": [1]}`, n: 1, wantErr: "no result field"},
		{name: "endpoint error", raw: `"{\"error\": \"bad input\"}"`, n: 1, wantErr: "endpoint error bad input"},
		{name: "length mismatch", raw: `{"result": [1]}`, n: 2, wantErr: "1 predictions for 2 records"},
		{name: "fractional", raw: `{"result": [0.7]}`, n: 1, wantErr: "not an integer"},
		{name: "negative label", raw: `{"result": [-1]}`, n: 1, wantErr: "not a 0/1 label"},
		{name: "label out of range", raw: `{"result": [0, 2]}`, n: 2, wantErr: "prediction 1 is not a 0/1 label"},
		{name: "array body", raw: `[1, 0]`, n: 2, wantErr: "malformed scoring response"},
		{name: "not json", raw: `<html>`, n: 1, wantErr: "malformed scoring response"},
		{name: "double wrapped", raw: `"\"{\\\"result\\\": [1]}\""`, n: 1, wantErr: "malformed scoring response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse([]byte(tt.raw), tt.n)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, errors.TransientScoring, errors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
