package models

import "github.com/shopspring/decimal"

// ExitPreset: именованная схема частичных выходов.
// Weights: доли количества (целые части, 1:1:1 => по трети),
// Multiples: уровни в долях дистанции до цели (1 => сама цель).
type ExitPreset struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Weights     []int64           `json:"weights" yaml:"weights"`
	Multiples   []decimal.Decimal `json:"multiples" yaml:"-"`
}

const DefaultExitPreset = "thirds"

func mustMultiples(vals ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(vals))
	for _, v := range vals {
		out = append(out, decimal.RequireFromString(v))
	}
	return out
}

// BuiltinExitPresets используются, если файл пресетов не задан.
var BuiltinExitPresets = map[string]ExitPreset{
	"thirds": {
		Name:        "thirds",
		Description: "Sell 1/3 at 1x, 2x and 3x the target distance",
		Weights:     []int64{1, 1, 1},
		Multiples:   mustMultiples("1", "2", "3"),
	},
	"front": {
		Name:        "front",
		Description: "Take half early: 50/30/20 at 1x, 2x and 3x",
		Weights:     []int64{5, 3, 2},
		Multiples:   mustMultiples("1", "2", "3"),
	},
	"runner": {
		Name:        "runner",
		Description: "Keep a runner: 25/25/50 at 1x, 2x and 3x",
		Weights:     []int64{1, 1, 2},
		Multiples:   mustMultiples("1", "2", "3"),
	},
	"inside": {
		Name:        "inside",
		Description: "All exits inside the target: 1/3 at 0.5x, 0.75x and 1x",
		Weights:     []int64{1, 1, 1},
		Multiples:   mustMultiples("0.5", "0.75", "1"),
	},
}
