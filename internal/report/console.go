package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"trade_risk/internal/models"
)

func RenderStandard(w io.Writer, res *models.StandardResult, cur models.Currency) {
	renderSections(w, "STANDARD RISK", StandardSummary(res, cur))
	RenderMatrix(w, res.RiskReward, cur)
	renderExitPlan(w, res.ExitPlan, cur)
	renderWarnings(w, res.Warnings)
}

func RenderPositionSize(w io.Writer, res *models.PositionSizeResult, cur models.Currency) {
	renderSections(w, "POSITION SIZE", PositionSummary(res, cur))
	RenderMatrix(w, res.RiskReward, cur)
	renderExitPlan(w, res.ExitPlan, cur)
	renderWarnings(w, res.Warnings)
}

func renderSections(w io.Writer, title string, sections []Section) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)

	for i, s := range sections {
		if i > 0 {
			t.AppendSeparator()
		}
		for _, l := range s.Lines {
			t.AppendRow(table.Row{l.Label, l.Value})
		}
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 24, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, Align: text.AlignRight},
	})
	t.Render()
	fmt.Fprintln(w)
}

// RenderMatrix prints the risk/reward table; nothing for an empty matrix.
func RenderMatrix(w io.Writer, rows []models.RiskRewardRow, cur models.Currency) {
	if len(rows) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("RISK-TO-REWARD MATRIX")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Target Price", "Reward per Share", "Risk-to-Reward", "Reward-to-Risk"})

	for _, r := range rows {
		t.AppendRow(table.Row{
			Money(r.TargetPrice, cur),
			Money(r.RewardPerShare, cur),
			Number(r.RiskToReward, 2),
			Ratio(r.RewardToRisk),
		})
	}
	t.Render()
	fmt.Fprintln(w)
}

func renderExitPlan(w io.Writer, plan models.ExitPlan, cur models.Currency) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("EXIT STRATEGY (" + plan.Policy + ")")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Price", "Shares", "Profit", "Action"})

	for _, tier := range plan.Tiers {
		t.AppendRow(table.Row{
			TierLabel(tier),
			Money(tier.Price, cur),
			Shares(tier.Quantity),
			Money(tier.Profit, cur),
			tier.Action,
		})
	}
	t.AppendFooter(table.Row{"Total", "", Shares(plan.TotalQuantity), Money(plan.TotalProfit, cur), ""})
	t.Render()
	fmt.Fprintln(w)
}

func renderWarnings(w io.Writer, ws []models.Warning) {
	for _, wr := range ws {
		fmt.Fprintf(w, "⚠️  %s\n", wr.Message)
	}
}
