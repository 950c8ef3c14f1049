package riskcalc

import (
	"fmt"

	"github.com/shopspring/decimal"

	"trade_risk/internal/models"
)

// BuildExitPlan делит size на тиры по весам политики.
// Все тиры, кроме последнего, получают floor(size*w/Σw), последний: остаток,
// так что сумма количеств всегда ровно size.
func BuildExitPlan(
	policy ExitPolicy,
	size int64,
	entry decimal.Decimal,
	target decimal.Decimal,
	dir models.Direction,
) (models.ExitPlan, []models.Warning, error) {
	if err := policy.Validate(); err != nil {
		return models.ExitPlan{}, nil, err
	}
	if size < 1 {
		return models.ExitPlan{}, nil, invalid("quantity", "must be at least 1")
	}

	var sumW int64
	for _, w := range policy.Weights {
		sumW += w
	}
	total := decimal.NewFromInt(size)
	sum := decimal.NewFromInt(sumW)
	distance := target.Sub(entry)
	sign := dir.Sign()
	n := len(policy.Weights)

	plan := models.ExitPlan{
		Policy:        policy.Name,
		Tiers:         make([]models.ExitTier, 0, n),
		TotalQuantity: size,
		TotalProfit:   decimal.Zero,
	}
	var warns []models.Warning

	var allocated int64
	for i, w := range policy.Weights {
		var qty int64
		if i == n-1 {
			qty = size - allocated
		} else {
			q, _ := total.Mul(decimal.NewFromInt(w)).QuoRem(sum, 0)
			qty = q.IntPart()
		}
		allocated += qty

		price := entry.Add(policy.Multiples[i].Mul(distance))
		if !price.IsPositive() {
			warns = append(warns, models.Warning{
				Code:    models.WarnExitLevelClamped,
				Message: fmt.Sprintf("target %d level %s is not a valid price, clamped to zero", i+1, price.String()),
			})
			price = decimal.Zero
		}
		reward := price.Sub(entry).Mul(sign)
		profit := reward.Mul(decimal.NewFromInt(qty))

		plan.Tiers = append(plan.Tiers, models.ExitTier{
			Index:          i + 1,
			Price:          price,
			Quantity:       qty,
			Weight:         decimal.NewFromInt(w).Div(sum),
			RewardPerShare: reward,
			Profit:         profit,
			Action:         tierAction(i, n, qty),
		})
		plan.TotalProfit = plan.TotalProfit.Add(profit)
	}

	return plan, warns, nil
}

func tierAction(i, n int, qty int64) string {
	switch {
	case n == 1:
		return "Sell entire position"
	case qty == 0:
		// позиция слишком мала, чтобы на этот уровень что-то досталось
		return "Nothing to sell at this level"
	case i == n-1:
		return "Sell remaining position"
	case i == 0:
		return fmt.Sprintf("Sell %d, move stop to entry", qty)
	default:
		return fmt.Sprintf("Sell %d, move stop to Target %d", qty, i)
	}
}
