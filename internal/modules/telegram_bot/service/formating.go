package service

import (
	"errors"
	"fmt"
	"strings"

	"trade_risk/internal/models"
	"trade_risk/internal/report"
	"trade_risk/internal/riskcalc"
)

const helpText = "*Trade Risk Calculator*\n\n" +
	"/position - size a position from your risk budget\n" +
	"/standard - check the risk of a share count you picked\n" +
	"/currency - choose the display currency\n" +
	"/cancel - stop the current form\n\n" +
	"One-shot usage:\n" +
	"`/position 10000 1 50 48 56`\n" +
	"  account, risk %, entry, stop, target\n" +
	"`/standard 10000 2 100 20 24 19`\n" +
	"  account, risk %, shares, entry, target, stop\n" +
	"Add a preset name at the end to change the exit split, e.g. `front`."

func formatSections(b *strings.Builder, title string, sections []report.Section) {
	fmt.Fprintf(b, "*%s*\n", escapeMarkdown(title))
	for _, s := range sections {
		fmt.Fprintf(b, "\n_%s_\n", escapeMarkdown(s.Title))
		for _, l := range s.Lines {
			fmt.Fprintf(b, "%s: `%s`\n", escapeMarkdown(l.Label), l.Value)
		}
	}
}

func formatExitPlan(b *strings.Builder, plan models.ExitPlan, cur models.Currency) {
	fmt.Fprintf(b, "\n_Exit Strategy (%s)_\n", escapeMarkdown(plan.Policy))
	for _, t := range plan.Tiers {
		fmt.Fprintf(b, "*%s*: %s shares @ `%s`, profit `%s`\n  %s\n",
			report.TierLabel(t),
			report.Shares(t.Quantity),
			report.Money(t.Price, cur),
			report.Money(t.Profit, cur),
			escapeMarkdown(t.Action),
		)
	}
	fmt.Fprintf(b, "Total Potential Profit: `%s`\n", report.Money(plan.TotalProfit, cur))
}

func formatMatrix(b *strings.Builder, rows []models.RiskRewardRow, cur models.Currency) {
	if len(rows) == 0 {
		return
	}
	b.WriteString("\n_Risk-to-Reward Matrix_\n")
	for _, r := range rows {
		fmt.Fprintf(b, "`%s` → %s\n", report.Money(r.TargetPrice, cur), report.Ratio(r.RewardToRisk))
	}
}

func formatWarnings(b *strings.Builder, ws []models.Warning) {
	if len(ws) == 0 {
		return
	}
	b.WriteString("\n")
	for _, w := range ws {
		fmt.Fprintf(b, "⚠️ %s\n", escapeMarkdown(w.Message))
	}
}

func formatPositionSize(res *models.PositionSizeResult, cur models.Currency) string {
	var b strings.Builder
	formatSections(&b, "Position Size", report.PositionSummary(res, cur))
	formatMatrix(&b, res.RiskReward, cur)
	formatExitPlan(&b, res.ExitPlan, cur)
	formatWarnings(&b, res.Warnings)
	return b.String()
}

func formatStandard(res *models.StandardResult, cur models.Currency) string {
	var b strings.Builder
	formatSections(&b, "Standard Risk", report.StandardSummary(res, cur))
	formatMatrix(&b, res.RiskReward, cur)
	formatExitPlan(&b, res.ExitPlan, cur)
	formatWarnings(&b, res.Warnings)
	return b.String()
}

// formatError: ответ пользователю; ValidationError раскладываем по полям.
func formatError(err error) string {
	if !errors.Is(err, riskcalc.ErrInvalidInput) {
		return "❌ " + escapeMarkdown(err.Error())
	}
	var b strings.Builder
	b.WriteString("❌ Please check your numbers:\n")
	for _, p := range riskcalc.Problems(err) {
		fmt.Fprintf(&b, "• %s: %s\n", escapeMarkdown(p.Field), escapeMarkdown(p.Reason))
	}
	return b.String()
}
