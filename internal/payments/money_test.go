package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		major string
		minor int64
	}{
		{"2.00", 200},
		{"2", 200},
		{"0.29", 29},
		{"0.01", 1},
		{"19.99", 1999},
		{"1234567.89", 123456789},
		{"0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.major, func(t *testing.T) {
			got, err := ToMinorUnits(decimal.RequireFromString(tt.major))
			require.NoError(t, err)
			assert.Equal(t, tt.minor, got)
		})
	}
}

func TestToMinorUnits_FromFloat(t *testing.T) {
	// 0.29*100 is 28.999999999999996 in float64
	got, err := ToMinorUnits(decimal.NewFromFloat(0.29))
	require.NoError(t, err)
	assert.Equal(t, int64(29), got)
}

func TestToMinorUnits_Rejects(t *testing.T) {
	for _, s := range []string{"1.005", "-1", "-0.01"} {
		_, err := ToMinorUnits(decimal.RequireFromString(s))
		assert.ErrorIs(t, err, ErrInvalidAmount, s)
	}
}

func TestFromMinorUnits(t *testing.T) {
	assert.Equal(t, "2.00", FromMinorUnits(200).StringFixed(2))
	assert.True(t, decimal.RequireFromString("0.29").Equal(FromMinorUnits(29)))
	assert.True(t, decimal.RequireFromString("50").Equal(FromMinorUnits(5000)))
}
