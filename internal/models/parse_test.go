package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	cases := map[string]string{
		"10000":     "10000",
		" 12.5 ":    "12.5",
		"12,5":      "12.5",
		"1,234.56":  "1234.56",
		"1 234,5":   "1234.5",
		"$50":       "50",
		"10_000":    "10000",
		"-3":        "-3",
		"0.0001":    "0.0001",
		"1 000": "1000",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			v, err := ParseDecimal(in)
			require.NoError(t, err)
			assert.Equal(t, want, v.String())
		})
	}
}

func TestParseDecimal_Rejects(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "1,2,3", "1.2.3", "12a"} {
		_, err := ParseDecimal(in)
		assert.Error(t, err, in)
	}
}

func TestParseShareCount(t *testing.T) {
	n, err := ParseShareCount("45")
	require.NoError(t, err)
	assert.Equal(t, int64(45), n)

	n, err = ParseShareCount("45.0")
	require.NoError(t, err)
	assert.Equal(t, int64(45), n)

	_, err = ParseShareCount("45.5")
	assert.Error(t, err)
	_, err = ParseShareCount("1e30")
	assert.Error(t, err)

	for _, raw := range []string{"-9223372036854775809", "-18446744073709551617", "-1e30", "-1", "1e-20000000", "1e20000000"} {
		n, err := ParseShareCount(raw)
		assert.Error(t, err, raw)
		assert.Zero(t, n, raw)
	}
}
