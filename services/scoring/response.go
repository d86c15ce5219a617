package scoring

import (
	// Go Internal Packages
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	// Local Packages
	errors "fraud-stream/errors"
)

type scoreResponse struct {
	Result *[]float64 `json:"result"`
	Error  string     `json:"error"`
}

// ParseResponse decodes {"result": [...]} from raw, unwrapping one level of
// JSON string encoding if the endpoint returned the object as a string. The
// result must hold n predictions, each the integer label 0 or 1.
func ParseResponse(raw []byte, n int) ([]int, error) {
	payload := bytes.TrimSpace(raw)

	if len(payload) > 0 && payload[0] == '"' {
		var inner string
		if err := json.Unmarshal(payload, &inner); err != nil {
			return nil, errors.E(errors.TransientScoring, "malformed string wrapped response", err)
		}
		payload = []byte(inner)
	}

	var resp scoreResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, errors.E(errors.TransientScoring, "malformed scoring response", err)
	}
	if resp.Result == nil {
		msg := "scoring response has no result field"
		if resp.Error != "" {
			msg += ": endpoint error " + resp.Error
		}
		return nil, errors.E(errors.TransientScoring, msg, nil)
	}

	values := *resp.Result
	if len(values) != n {
		return nil, errors.E(errors.TransientScoring,
			fmt.Sprintf("scoring response has %d predictions for %d records", len(values), n), nil)
	}

	predictions := make([]int, n)
	for i, v := range values {
		if v != math.Trunc(v) {
			return nil, errors.E(errors.TransientScoring, fmt.Sprintf("prediction %d is not an integer: %v", i, v), nil)
		}
		if v != 0 && v != 1 {
			return nil, errors.E(errors.TransientScoring, fmt.Sprintf("prediction %d is not a 0/1 label: %v", i, v), nil)
		}
		predictions[i] = int(v)
	}
	return predictions, nil
}
