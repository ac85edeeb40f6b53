package currency_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fynance/internal/currency"
)

func TestFormatIDR(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "Rp 0"},
		{500, "Rp 500"},
		{50_490, "Rp 50.490"},
		{1_250_000, "Rp 1.250.000"},
		{-100_500, "-Rp 100.500"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, currency.FormatIDR(tt.amount))
		})
	}
}

func TestParseIDR(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "Plain", input: "50000", want: 50000},
		{name: "Grouped", input: "1.250.000", want: 1250000},
		{name: "WithSymbol", input: "Rp 3.450.000", want: 3450000},
		{name: "DecimalRoundsUp", input: "12.500,5", want: 12501},
		{name: "DecimalRoundsDown", input: "12.500,25", want: 12500},
		{name: "Empty", input: "", wantErr: true},
		{name: "Letters", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := currency.ParseIDR(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, currency.ErrInvalidAmount)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	got, err := currency.ParseIDR(currency.FormatIDR(98_765_432))
	require.NoError(t, err)
	assert.Equal(t, int64(98_765_432), got)
}
