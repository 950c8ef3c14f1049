package riskcalc

import (
	"github.com/shopspring/decimal"

	"trade_risk/internal/models"
)

// RiskRewardMatrix строит таблицу альтернативных целей вокруг target:
// opts.Steps равномерных множителей от Low до High дистанции до цели.
// Пусто, если цель не даёт прибыли в направлении сделки.
func RiskRewardMatrix(
	entry decimal.Decimal,
	target decimal.Decimal,
	perShareRisk decimal.Decimal,
	dir models.Direction,
	opts MatrixOptions,
) []models.RiskRewardRow {
	base := target.Sub(entry)
	if !base.Mul(dir.Sign()).IsPositive() || !perShareRisk.IsPositive() {
		return nil
	}
	if opts.Steps < 2 {
		opts = DefaultMatrixOptions()
	}

	span := opts.High.Sub(opts.Low)
	den := decimal.NewFromInt(int64(opts.Steps - 1))
	rows := make([]models.RiskRewardRow, 0, opts.Steps)
	for i := 0; i < opts.Steps; i++ {
		m := opts.Low.Add(span.Mul(decimal.NewFromInt(int64(i))).Div(den))
		tp := entry.Add(base.Mul(m))
		if !tp.IsPositive() {
			continue
		}
		reward := tp.Sub(entry).Abs()
		rows = append(rows, models.RiskRewardRow{
			TargetPrice:    tp,
			RewardPerShare: reward,
			RiskToReward:   perShareRisk.Div(reward),
			RewardToRisk:   reward.Div(perShareRisk),
		})
	}
	return rows
}

// Matrix validates prices and builds the risk/reward table on its own,
// without sizing a position.
func (c *Calculator) Matrix(entry, target, stop decimal.Decimal) ([]models.RiskRewardRow, models.Direction, error) {
	ve := &ValidationError{}
	validatePrice(ve, "entry_price", entry)
	validatePrice(ve, "target_price", target)
	validateStop(ve, "stop_price", entry, stop)
	if err := ve.orNil(); err != nil {
		return nil, "", err
	}

	dir := DirectionOf(entry, stop)
	return RiskRewardMatrix(entry, target, entry.Sub(stop).Abs(), dir, c.opts.Matrix), dir, nil
}
