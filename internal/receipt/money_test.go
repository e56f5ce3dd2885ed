package receipt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Money
		wantErr bool
	}{
		{name: "plain", input: "42.50", want: 4250},
		{name: "zero", input: "0.00", want: 0},
		{name: "single cent", input: "0.01", want: 1},
		{name: "dollar symbol", input: "$12.34", want: 1234},
		{name: "euro symbol", input: "€7.99", want: 799},
		{name: "pound symbol", input: "£3.00", want: 300},
		{name: "thousands separator", input: "1,234.56", want: 123456},
		{name: "negative", input: "-5.25", want: -525},
		{name: "surrounding space", input: "  9.99  ", want: 999},
		{name: "missing cents", input: "42", wantErr: true},
		{name: "one fractional digit", input: "42.5", wantErr: true},
		{name: "three fractional digits", input: "42.505", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		value Money
		want  string
	}{
		{4250, "42.50"},
		{0, "0.00"},
		{1, "0.01"},
		{99, "0.99"},
		{100, "1.00"},
		{-525, "-5.25"},
		{123456, "1234.56"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.value.String())
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	// Serialization must be the exact decimal string, not a float.
	data, err := json.Marshal(Money(4250))
	require.NoError(t, err)
	assert.Equal(t, `"42.50"`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, Money(4250), m)

	assert.Error(t, json.Unmarshal([]byte(`42.50`), &m), "unquoted numbers are rejected")
	assert.Error(t, json.Unmarshal([]byte(`"42.5"`), &m))
}

func TestMoneyHelpers(t *testing.T) {
	assert.Equal(t, Money(-750), NewMoney(-7, 50))
	assert.Equal(t, Money(750), NewMoney(7, 50))
	assert.Equal(t, Money(525), Money(-525).Abs())
	assert.Equal(t, Money(525), Money(525).Abs())
	assert.InDelta(t, 5.25, Money(525).Float64(), 1e-9)
	assert.Equal(t, int64(525), Money(525).Cents())
}
