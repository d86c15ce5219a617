package errors

import (
	// Go Internal Packages
	stderrors "errors"
	"fmt"
	"testing"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfWrapped(t *testing.T) {
	base := stderrors.New("connection refused")
	err := fmt.Errorf("attempt 2: %w", E(TransientScoring, "scoring request failed", base))

	assert.Equal(t, TransientScoring, KindOf(err))
	assert.True(t, Is(TransientScoring, err))
	assert.False(t, Is(SinkWrite, err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, Other, KindOf(base))
	assert.False(t, Is(Other, nil))
}

func TestValidationErrs(t *testing.T) {
	ve := ValidationErrs()
	require.NoError(t, ve.Err())

	ve.Add("sink.dsn", "cannot be empty")
	ve.Add("scoring.endpoint", "cannot be empty")
	ve.Add("scoring.endpoint", "must be http or https")

	err := ve.Err()
	require.Error(t, err)
	assert.Equal(t, Invalid, KindOf(err))
	assert.Equal(t,
		"validation failed: scoring.endpoint cannot be empty, must be http or https; sink.dsn cannot be empty",
		err.Error())
}

func TestSinkWriteErr(t *testing.T) {
	err := SinkWriteErr("b-1", stderrors.New("timeout"))
	assert.Equal(t, SinkWrite, KindOf(err))
	assert.Equal(t, "writing batch b-1 failed: timeout", err.Error())
}
