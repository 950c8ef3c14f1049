package models

import "github.com/shopspring/decimal"

type WarningCode string

const (
	WarnOverBudget         WarningCode = "over_budget"
	WarnLeverage           WarningCode = "leverage"
	WarnHighRiskPercent    WarningCode = "high_risk_percent"
	WarnTargetAgainstTrade WarningCode = "target_against_trade"
	WarnExitLevelClamped   WarningCode = "exit_level_clamped"
)

// Warning is informational, the result is still valid.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

type ExitTier struct {
	Index          int             `json:"index"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int64           `json:"quantity"`
	Weight         decimal.Decimal `json:"weight"`
	RewardPerShare decimal.Decimal `json:"reward_per_share"`
	Profit         decimal.Decimal `json:"profit"`
	Action         string          `json:"action"`
}

// ExitPlan: разбивка позиции на частичные выходы.
// Сумма Quantity по тирам всегда равна TotalQuantity.
type ExitPlan struct {
	Policy        string          `json:"policy"`
	Tiers         []ExitTier      `json:"tiers"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
}

type RiskRewardRow struct {
	TargetPrice    decimal.Decimal `json:"target_price"`
	RewardPerShare decimal.Decimal `json:"reward_per_share"`
	RiskToReward   decimal.Decimal `json:"risk_to_reward"`
	RewardToRisk   decimal.Decimal `json:"reward_to_risk"`
}

type StandardResult struct {
	Mode              Mode            `json:"mode"`
	Direction         Direction       `json:"direction"`
	RiskAmount        decimal.Decimal `json:"risk_amount"`
	PerShareRisk      decimal.Decimal `json:"per_share_risk"`
	ShareCount        int64           `json:"share_count"`
	ActualRisk        decimal.Decimal `json:"actual_risk"`
	ActualRiskPercent decimal.Decimal `json:"actual_risk_percent"`
	RewardPerShare    decimal.Decimal `json:"reward_per_share"`
	RiskRewardRatio   decimal.Decimal `json:"risk_reward_ratio"`
	CapitalRequired   decimal.Decimal `json:"capital_required"`
	OverBudget        bool            `json:"over_budget"`
	// BudgetStop: стоп, при котором ShareCount акций тратят ровно RiskAmount.
	// Нулевой, если такой стоп оказался бы <= 0.
	BudgetStop decimal.Decimal `json:"budget_stop"`
	ExitPlan   ExitPlan        `json:"exit_plan"`
	RiskReward []RiskRewardRow `json:"risk_reward"`
	Warnings   []Warning       `json:"warnings,omitempty"`
}

type PositionSizeResult struct {
	Mode            Mode            `json:"mode"`
	Direction       Direction       `json:"direction"`
	RiskAmount      decimal.Decimal `json:"risk_amount"`
	PerShareRisk    decimal.Decimal `json:"per_share_risk"`
	RawPositionSize decimal.Decimal `json:"raw_position_size"`
	PositionSize    int64           `json:"position_size"`
	ActualRisk      decimal.Decimal `json:"actual_risk"`
	CapitalRequired decimal.Decimal `json:"capital_required"`
	Leveraged       bool            `json:"leveraged"`
	RewardPerShare  decimal.Decimal `json:"reward_per_share"`
	RiskRewardRatio decimal.Decimal `json:"risk_reward_ratio"`
	ExitPlan        ExitPlan        `json:"exit_plan"`
	RiskReward      []RiskRewardRow `json:"risk_reward"`
	Warnings        []Warning       `json:"warnings,omitempty"`
}

// HasWarning reports whether a warning with the given code was raised.
func HasWarning(ws []Warning, code WarningCode) bool {
	for _, w := range ws {
		if w.Code == code {
			return true
		}
	}
	return false
}
