package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldingJSON_ExpiryOnlyForOptions(t *testing.T) {
	share, err := json.Marshal(Holding{Row: 2, Type: HoldingIBITShare, Quantity: 600})
	require.NoError(t, err)
	assert.NotContains(t, string(share), "expiry")

	opt, err := json.Marshal(Holding{
		Row: 3, Type: HoldingCallOption, Quantity: 1, Strike: 60,
		Expiry: time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC), Delta: 0.8,
	})
	require.NoError(t, err)
	assert.Contains(t, string(opt), `"expiry":"2026-01-16T00:00:00Z"`)
}

func TestInvalidHoldingError(t *testing.T) {
	err := &InvalidHoldingError{Row: 4, Field: "Delta", Value: "3", Reason: "must be between 0 and 1"}
	assert.Equal(t, `row 4: invalid Delta "3": must be between 0 and 1`, err.Error())

	err = &InvalidHoldingError{Field: "Type", Reason: "no header row"}
	assert.Equal(t, `invalid Type "": no header row`, err.Error())
}
