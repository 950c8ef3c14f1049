// Package riskcalc implements position sizing and risk/reward arithmetic.
//
// Все функции чистые: вход -> результат, без состояния между вызовами,
// поэтому Calculator безопасно использовать из нескольких горутин.
package riskcalc

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"trade_risk/internal/models"
)

var (
	hundred  = decimal.NewFromInt(100)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// Calculator applies a fixed Options set to every computation.
type Calculator struct {
	opts Options
}

func New(opts Options) (*Calculator, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("riskcalc options: %w", err)
	}
	return &Calculator{opts: opts}, nil
}

var defaultCalculator = &Calculator{opts: DefaultOptions()}

// ComputeStandardRisk evaluates a user-chosen share count with DefaultOptions.
func ComputeStandardRisk(in models.StandardInput) (*models.StandardResult, error) {
	return defaultCalculator.Standard(in)
}

// ComputePositionSize derives the share count from the risk budget with DefaultOptions.
func ComputePositionSize(in models.PositionSizeInput) (*models.PositionSizeResult, error) {
	return defaultCalculator.PositionSize(in)
}

func (c *Calculator) Options() Options { return c.opts }

// RiskAmount = accountSize × riskPercent / 100, без округления.
func RiskAmount(accountSize, riskPercent decimal.Decimal) decimal.Decimal {
	return accountSize.Mul(riskPercent).Shift(-2)
}

// DirectionOf: стоп ниже входа: лонг, выше: шорт.
func DirectionOf(entry, stop decimal.Decimal) models.Direction {
	if stop.LessThan(entry) {
		return models.Long
	}
	return models.Short
}

// Пределы входа. Проверяются до любой арифметики: экспонента decimal
// не ограничена, и "1e20000000" иначе разворачивается в огромный big.Int.
const maxExponent = 30

var (
	maxAccountSize = decimal.New(1, 15)
	maxPrice       = decimal.New(1, 12)
)

// bounded reports whether v fits the limits, adding a problem if it does not.
func bounded(ve *ValidationError, field string, v, max decimal.Decimal) bool {
	if e := v.Exponent(); e > maxExponent || e < -maxExponent {
		ve.add(field, "is out of range")
		return false
	}
	if v.Abs().GreaterThan(max) {
		ve.add(field, "must be at most "+max.String())
		return false
	}
	return true
}

func validatePrice(ve *ValidationError, field string, v decimal.Decimal) bool {
	if !bounded(ve, field, v, maxPrice) {
		return false
	}
	if !v.IsPositive() {
		ve.add(field, "must be greater than zero")
		return false
	}
	return true
}

func validateCommon(ve *ValidationError, account, riskPct, entry, target decimal.Decimal) {
	if bounded(ve, "account_size", account, maxAccountSize) && !account.IsPositive() {
		ve.add("account_size", "must be greater than zero")
	}
	if e := riskPct.Exponent(); e > maxExponent || e < -maxExponent {
		ve.add("risk_percent", "is out of range")
	} else if !riskPct.IsPositive() || riskPct.GreaterThan(hundred) {
		ve.add("risk_percent", "must be greater than 0 and at most 100")
	}
	validatePrice(ve, "entry_price", entry)
	validatePrice(ve, "target_price", target)
}

// validateStop сравнивает стоп со входом, только если оба в пределах.
func validateStop(ve *ValidationError, field string, entry, stop decimal.Decimal) {
	if !validatePrice(ve, field, stop) {
		return
	}
	if e := entry.Exponent(); e > maxExponent || e < -maxExponent {
		return
	}
	if stop.Equal(entry) {
		ve.add(field, "must differ from the entry price")
	}
}

// Standard: режим, где количество акций задаёт пользователь.
// Превышение бюджета риска: предупреждение, а не ошибка.
func (c *Calculator) Standard(in models.StandardInput) (*models.StandardResult, error) {
	ve := &ValidationError{}
	validateCommon(ve, in.AccountSize, in.RiskPercent, in.EntryPrice, in.TargetPrice)
	if in.ShareCount <= 0 {
		ve.add("share_count", "must be a positive whole number")
	}
	validateStop(ve, "stop_price", in.EntryPrice, in.StopPrice)
	if err := ve.orNil(); err != nil {
		return nil, err
	}

	dir := DirectionOf(in.EntryPrice, in.StopPrice)
	riskAmount := RiskAmount(in.AccountSize, in.RiskPercent)
	perShare := in.EntryPrice.Sub(in.StopPrice).Abs()
	shares := decimal.NewFromInt(in.ShareCount)
	actualRisk := shares.Mul(perShare)
	reward := in.TargetPrice.Sub(in.EntryPrice).Abs()

	res := &models.StandardResult{
		Mode:              models.ModeStandard,
		Direction:         dir,
		RiskAmount:        riskAmount,
		PerShareRisk:      perShare,
		ShareCount:        in.ShareCount,
		ActualRisk:        actualRisk,
		ActualRiskPercent: actualRisk.Mul(hundred).Div(in.AccountSize),
		RewardPerShare:    reward,
		RiskRewardRatio:   reward.Div(perShare),
		CapitalRequired:   shares.Mul(in.EntryPrice),
	}

	budgetStop := in.EntryPrice.Sub(dir.Sign().Mul(riskAmount.Div(shares)))
	if budgetStop.IsPositive() {
		res.BudgetStop = budgetStop
	}

	if actualRisk.GreaterThan(riskAmount) {
		res.OverBudget = true
		res.Warnings = append(res.Warnings, models.Warning{
			Code: models.WarnOverBudget,
			Message: fmt.Sprintf("risk of %s (%s%% of account) exceeds the %s budget",
				actualRisk.StringFixed(2), res.ActualRiskPercent.StringFixed(2), riskAmount.StringFixed(2)),
		})
	}
	res.Warnings = append(res.Warnings, c.tradeWarnings(in.RiskPercent, dir, in.EntryPrice, in.TargetPrice)...)

	plan, warns, err := BuildExitPlan(c.opts.ExitPolicy, in.ShareCount, in.EntryPrice, in.TargetPrice, dir)
	if err != nil {
		return nil, err
	}
	res.ExitPlan = plan
	res.Warnings = append(res.Warnings, warns...)
	res.RiskReward = RiskRewardMatrix(in.EntryPrice, in.TargetPrice, perShare, dir, c.opts.Matrix)

	return res, nil
}

// PositionSize: сколько акций можно взять, чтобы срабатывание стопа
// стоило не больше RiskAmount: floor(risk / |entry - stop|), с учётом шага лота.
func (c *Calculator) PositionSize(in models.PositionSizeInput) (*models.PositionSizeResult, error) {
	ve := &ValidationError{}
	validateCommon(ve, in.AccountSize, in.RiskPercent, in.EntryPrice, in.TargetPrice)
	validateStop(ve, "technical_stop", in.EntryPrice, in.TechnicalStop)
	if err := ve.orNil(); err != nil {
		return nil, err
	}

	dir := DirectionOf(in.EntryPrice, in.TechnicalStop)
	riskAmount := RiskAmount(in.AccountSize, in.RiskPercent)
	perShare := in.EntryPrice.Sub(in.TechnicalStop).Abs()

	// QuoRem с точностью 0 даёт точный целый floor для положительных чисел.
	q, _ := riskAmount.QuoRem(perShare, 0)
	if q.GreaterThan(maxInt64) {
		return nil, invalid("account_size", "resulting position size is out of range")
	}
	size := q.IntPart()
	if lot := c.opts.LotSize; lot > 1 {
		size = size / lot * lot
	}
	if size <= 0 {
		unit := "share"
		if c.opts.LotSize > 1 {
			unit = fmt.Sprintf("lot of %d", c.opts.LotSize)
		}
		return nil, invalid("risk_percent", fmt.Sprintf(
			"risk budget %s is too small for one %s at %s risk per share",
			riskAmount.StringFixed(2), unit, perShare.String()))
	}

	sz := decimal.NewFromInt(size)
	reward := in.TargetPrice.Sub(in.EntryPrice).Abs()

	res := &models.PositionSizeResult{
		Mode:            models.ModePositionSize,
		Direction:       dir,
		RiskAmount:      riskAmount,
		PerShareRisk:    perShare,
		RawPositionSize: riskAmount.Div(perShare),
		PositionSize:    size,
		ActualRisk:      sz.Mul(perShare),
		CapitalRequired: sz.Mul(in.EntryPrice),
		RewardPerShare:  reward,
		RiskRewardRatio: reward.Div(perShare),
	}

	if res.CapitalRequired.GreaterThan(in.AccountSize) {
		res.Leveraged = true
		res.Warnings = append(res.Warnings, models.Warning{
			Code: models.WarnLeverage,
			Message: fmt.Sprintf("capital required %s exceeds account size %s, the trade needs margin",
				res.CapitalRequired.StringFixed(2), in.AccountSize.StringFixed(2)),
		})
	}
	res.Warnings = append(res.Warnings, c.tradeWarnings(in.RiskPercent, dir, in.EntryPrice, in.TargetPrice)...)

	plan, warns, err := BuildExitPlan(c.opts.ExitPolicy, size, in.EntryPrice, in.TargetPrice, dir)
	if err != nil {
		return nil, err
	}
	res.ExitPlan = plan
	res.Warnings = append(res.Warnings, warns...)
	res.RiskReward = RiskRewardMatrix(in.EntryPrice, in.TargetPrice, perShare, dir, c.opts.Matrix)

	return res, nil
}

func (c *Calculator) tradeWarnings(riskPct decimal.Decimal, dir models.Direction, entry, target decimal.Decimal) []models.Warning {
	var out []models.Warning
	if c.opts.RiskWarnPercent.IsPositive() && riskPct.GreaterThan(c.opts.RiskWarnPercent) {
		out = append(out, models.Warning{
			Code: models.WarnHighRiskPercent,
			Message: fmt.Sprintf("risking %s%% per trade is above the %s%% guideline",
				riskPct.String(), c.opts.RiskWarnPercent.String()),
		})
	}
	if !target.Sub(entry).Mul(dir.Sign()).IsPositive() {
		out = append(out, models.Warning{
			Code:    models.WarnTargetAgainstTrade,
			Message: fmt.Sprintf("target %s gives no reward for a %s trade from %s", target.String(), dir, entry.String()),
		})
	}
	return out
}
