package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"trade_risk/internal/riskcalc"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPositionTable(t *testing.T) {
	out, err := run(t, "position", "--account", "10000", "--risk", "1", "--entry", "50", "--stop", "48", "--target", "56")
	require.NoError(t, err)
	assert.Contains(t, out, "50 shares")
	assert.Contains(t, out, "Total Potential Profit")
	assert.Contains(t, out, "(USD)")
}

func TestPositionJSON_LotAndCurrency(t *testing.T) {
	out, err := run(t, "position", "--account", "10000", "--risk", "1", "--entry", "50", "--stop", "48", "--target", "56",
		"--lot", "3", "--currency", "eur", "-f", "json")
	require.NoError(t, err)

	var res struct {
		PositionSize int64 `json:"position_size"`
		ExitPlan     struct {
			TotalQuantity int64 `json:"total_quantity"`
		} `json:"exit_plan"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, int64(48), res.PositionSize)
	assert.Equal(t, int64(48), res.ExitPlan.TotalQuantity)
}

func TestStandardXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	out, err := run(t, "standard", "--account", "5000", "--risk", "1", "--shares", "45",
		"--entry", "10", "--target", "12.50", "--stop", "9", "-f", "xlsx", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "saved "+path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Exit Plan")
}

func TestInvalidInput(t *testing.T) {
	_, err := run(t, "position", "--account", "abc", "--risk", "1", "--entry", "50", "--stop", "50", "--target", "56")
	require.ErrorIs(t, err, riskcalc.ErrInvalidInput)
	probs := riskcalc.Problems(err)
	require.Len(t, probs, 1)
	assert.Equal(t, "account_size", probs[0].Field)

	_, err = run(t, "position", "--account", "10000", "--risk", "1", "--entry", "50", "--stop", "50", "--target", "56")
	require.ErrorIs(t, err, riskcalc.ErrInvalidInput)
	assert.Equal(t, "technical_stop", riskcalc.Problems(err)[0].Field)

	_, err = run(t, "position", "--account", "10000", "--risk", "1")
	require.Error(t, err)
}

func TestFlagsErrors(t *testing.T) {
	_, err := run(t, "matrix", "--entry", "10", "--target", "12.5", "--stop", "9", "-f", "xlsx")
	assert.Error(t, err)

	_, err = run(t, "matrix", "--entry", "10", "--target", "12.5", "--stop", "9", "-f", "csv")
	assert.Error(t, err)

	_, err = run(t, "position", "--account", "10000", "--risk", "1", "--entry", "50", "--stop", "48", "--target", "56", "--currency", "JPY")
	assert.Equal(t, "currency", riskcalc.Problems(err)[0].Field)

	_, err = run(t, "position", "--account", "10000", "--risk", "1", "--entry", "50", "--stop", "48", "--target", "56", "--preset", "nope")
	assert.Equal(t, "exit_preset", riskcalc.Problems(err)[0].Field)
}

func TestMatrix(t *testing.T) {
	out, err := run(t, "matrix", "--entry", "10", "--target", "12.5", "--stop", "9", "-f", "json")
	require.NoError(t, err)

	var res matrixOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "long", string(res.Direction))
	assert.Len(t, res.Rows, 5)

	out, err = run(t, "matrix", "--entry", "10", "--target", "9.5", "--stop", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to show")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calculator:\n  default_currency: SEK\n  lot_size: 10\n"), 0o600))

	out, err := run(t, "position", "--account", "10000", "--risk", "1", "--entry", "50", "--stop", "48", "--target", "56", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "50 shares")
	assert.Contains(t, out, "(SEK)")
}

func TestPresets(t *testing.T) {
	out, err := run(t, "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "thirds *")
	assert.Contains(t, out, "runner")
}
