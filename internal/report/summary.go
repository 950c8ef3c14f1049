package report

import (
	"fmt"
	"strings"

	"trade_risk/internal/models"
)

// Line: одна строка сводки "название: значение".
type Line struct {
	Label string
	Value string
}

type Section struct {
	Title string
	Lines []Line
}

// Tips: памятка по риск-менеджменту, показывается рядом с формой.
var Tips = []string{
	"Never risk more than 2% of your account on a single trade",
	"Use stop-loss orders to protect your capital",
	"Consider scaling out of positions to lock in profits",
	"Regularly review and adjust your risk parameters",
}

func StandardSummary(res *models.StandardResult, cur models.Currency) []Section {
	capital := Section{Title: "Capital Requirements", Lines: []Line{
		{"Direction", strings.ToUpper(string(res.Direction))},
		{"Shares", Shares(res.ShareCount)},
		{"Total Capital", Money(res.CapitalRequired, cur)},
		{"Risk Budget", Money(res.RiskAmount, cur)},
		{"Risk per Trade", fmt.Sprintf("%s, %s of account", Money(res.ActualRisk, cur), Percent(res.ActualRiskPercent))},
		{"Risk per Share", Money(res.PerShareRisk, cur)},
	}}

	metrics := Section{Title: "Risk Metrics"}
	if !res.BudgetStop.IsZero() {
		metrics.Lines = append(metrics.Lines, Line{"Budget Stop", Money(res.BudgetStop, cur)})
	}
	metrics.Lines = append(metrics.Lines,
		Line{"Reward per Share", Money(res.RewardPerShare, cur)},
		Line{"Reward to Risk", Ratio(res.RiskRewardRatio)},
	)
	return []Section{capital, metrics}
}

func PositionSummary(res *models.PositionSizeResult, cur models.Currency) []Section {
	position := Section{Title: "Position Details", Lines: []Line{
		{"Direction", strings.ToUpper(string(res.Direction))},
		{"Exact Position Size", Number(res.RawPositionSize, 2) + " shares"},
		{"Position Size", Shares(res.PositionSize) + " shares"},
		{"Total Capital Required", Money(res.CapitalRequired, cur)},
		{"Technical Risk per Share", Money(res.PerShareRisk, cur)},
	}}

	metrics := Section{Title: "Risk Metrics", Lines: []Line{
		{"Risk Budget", Money(res.RiskAmount, cur)},
		{"Actual Risk", Money(res.ActualRisk, cur)},
		{"Reward per Share", Money(res.RewardPerShare, cur)},
		{"Reward to Risk", Ratio(res.RiskRewardRatio)},
	}}
	return []Section{position, metrics}
}

// TierLabel: "Target 2".
func TierLabel(t models.ExitTier) string {
	return fmt.Sprintf("Target %d", t.Index)
}
