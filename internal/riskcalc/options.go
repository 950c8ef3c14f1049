package riskcalc

import (
	"fmt"

	"github.com/shopspring/decimal"

	"trade_risk/internal/models"
)

// ExitPolicy: как делить позицию на частичные выходы.
type ExitPolicy struct {
	Name      string
	Weights   []int64
	Multiples []decimal.Decimal
}

// PolicyFromPreset converts a named preset into a policy.
func PolicyFromPreset(p models.ExitPreset) ExitPolicy {
	return ExitPolicy{Name: p.Name, Weights: p.Weights, Multiples: p.Multiples}
}

// DefaultExitPolicy: три равные части на 1x/2x/3x дистанции до цели.
func DefaultExitPolicy() ExitPolicy {
	return PolicyFromPreset(models.BuiltinExitPresets[models.DefaultExitPreset])
}

func (p ExitPolicy) Validate() error {
	if len(p.Weights) == 0 {
		return fmt.Errorf("exit policy %q: no tiers", p.Name)
	}
	if len(p.Weights) != len(p.Multiples) {
		return fmt.Errorf("exit policy %q: %d weights vs %d multiples", p.Name, len(p.Weights), len(p.Multiples))
	}
	var sum int64
	for i, w := range p.Weights {
		if w < 0 {
			return fmt.Errorf("exit policy %q: weight #%d is negative", p.Name, i+1)
		}
		sum += w
	}
	if sum <= 0 {
		return fmt.Errorf("exit policy %q: weights sum to zero", p.Name)
	}
	for i, m := range p.Multiples {
		if !m.IsPositive() {
			return fmt.Errorf("exit policy %q: multiple #%d must be > 0", p.Name, i+1)
		}
	}
	return nil
}

// MatrixOptions: параметры таблицы risk/reward вокруг цели.
type MatrixOptions struct {
	Steps int
	Low   decimal.Decimal
	High  decimal.Decimal
}

func DefaultMatrixOptions() MatrixOptions {
	return MatrixOptions{
		Steps: 5,
		Low:   decimal.RequireFromString("0.8"),
		High:  decimal.RequireFromString("1.2"),
	}
}

// Options configures a Calculator. Zero values fall back to defaults.
type Options struct {
	ExitPolicy ExitPolicy
	// LotSize: шаг размера позиции в режиме Position-Size (1 => поштучно).
	LotSize int64
	// RiskWarnPercent: выше этого риска на сделку выдаём предупреждение. 0 => выключено.
	RiskWarnPercent decimal.Decimal
	Matrix          MatrixOptions
}

func DefaultOptions() Options {
	return Options{
		ExitPolicy:      DefaultExitPolicy(),
		LotSize:         1,
		RiskWarnPercent: decimal.NewFromInt(2),
		Matrix:          DefaultMatrixOptions(),
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if len(o.ExitPolicy.Weights) == 0 {
		o.ExitPolicy = def.ExitPolicy
	}
	if o.LotSize == 0 {
		o.LotSize = def.LotSize
	}
	if o.Matrix.Steps == 0 {
		o.Matrix = def.Matrix
	}
	return o
}

func (o Options) validate() error {
	if err := o.ExitPolicy.Validate(); err != nil {
		return err
	}
	if o.LotSize < 1 {
		return fmt.Errorf("lot size must be >= 1, got %d", o.LotSize)
	}
	if o.RiskWarnPercent.IsNegative() {
		return fmt.Errorf("risk warn percent must be >= 0")
	}
	if o.Matrix.Steps < 2 {
		return fmt.Errorf("matrix steps must be >= 2, got %d", o.Matrix.Steps)
	}
	if !o.Matrix.Low.IsPositive() || o.Matrix.High.LessThan(o.Matrix.Low) {
		return fmt.Errorf("matrix range [%s, %s] is invalid", o.Matrix.Low, o.Matrix.High)
	}
	return nil
}
