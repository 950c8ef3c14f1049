package report

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"trade_risk/internal/models"
)

const (
	summarySheet = "Summary"
	exitSheet    = "Exit Plan"
	matrixSheet  = "Risk Reward"

	// встроенный формат "#,##0.00"
	numFmtMoney = 4
)

type workbook struct {
	f     *excelize.File
	head  int
	money int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return nil, err
	}
	for _, name := range []string{exitSheet, matrixSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	head, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtMoney})
	if err != nil {
		return nil, err
	}
	return &workbook{f: f, head: head, money: money}, nil
}

func (wb *workbook) header(sheet string, cols ...string) error {
	for i, h := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := wb.f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := wb.f.SetCellStyle(sheet, cell, cell, wb.head); err != nil {
			return err
		}
	}
	return nil
}

// row пишет значения начиная с колонки A; индексы из moneyCols получают денежный формат.
func (wb *workbook) row(sheet string, n int, values []interface{}, moneyCols ...int) error {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, n)
		if err := wb.f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	for _, c := range moneyCols {
		cell, _ := excelize.CoordinatesToCellName(c+1, n)
		if err := wb.f.SetCellStyle(sheet, cell, cell, wb.money); err != nil {
			return err
		}
	}
	return nil
}

func (wb *workbook) summary(sections []Section, warnings []models.Warning, cur models.Currency) error {
	if err := wb.header(summarySheet, "Item", "Value"); err != nil {
		return err
	}
	n := 2
	if err := wb.row(summarySheet, n, []interface{}{"Currency", cur.Code + " " + cur.Symbol}); err != nil {
		return err
	}
	n++
	for _, s := range sections {
		for _, l := range s.Lines {
			if err := wb.row(summarySheet, n, []interface{}{l.Label, l.Value}); err != nil {
				return err
			}
			n++
		}
	}
	for _, w := range warnings {
		if err := wb.row(summarySheet, n, []interface{}{"Warning", w.Message}); err != nil {
			return err
		}
		n++
	}
	return wb.f.SetColWidth(summarySheet, "A", "B", 32)
}

func (wb *workbook) exitPlan(plan models.ExitPlan) error {
	if err := wb.header(exitSheet, "Target", "Price", "Shares", "Reward per Share", "Profit", "Action"); err != nil {
		return err
	}
	n := 2
	for _, t := range plan.Tiers {
		err := wb.row(exitSheet, n, []interface{}{
			TierLabel(t),
			t.Price.InexactFloat64(),
			t.Quantity,
			t.RewardPerShare.InexactFloat64(),
			t.Profit.InexactFloat64(),
			t.Action,
		}, 1, 3, 4)
		if err != nil {
			return err
		}
		n++
	}
	if err := wb.row(exitSheet, n, []interface{}{"Total", "", plan.TotalQuantity, "", plan.TotalProfit.InexactFloat64()}, 4); err != nil {
		return err
	}
	return wb.f.SetColWidth(exitSheet, "F", "F", 36)
}

func (wb *workbook) matrix(rows []models.RiskRewardRow) error {
	if err := wb.header(matrixSheet, "Target Price", "Reward per Share", "Risk-to-Reward", "Reward-to-Risk"); err != nil {
		return err
	}
	for i, r := range rows {
		err := wb.row(matrixSheet, i+2, []interface{}{
			r.TargetPrice.InexactFloat64(),
			r.RewardPerShare.InexactFloat64(),
			r.RiskToReward.Round(4).InexactFloat64(),
			r.RewardToRisk.Round(4).InexactFloat64(),
		}, 0, 1)
		if err != nil {
			return err
		}
	}
	return nil
}

func StandardWorkbook(res *models.StandardResult, cur models.Currency) (*excelize.File, error) {
	wb, err := newWorkbook()
	if err != nil {
		return nil, errors.Wrap(err, "new workbook")
	}
	if err := fill(wb, StandardSummary(res, cur), res.Warnings, res.ExitPlan, res.RiskReward, cur); err != nil {
		_ = wb.f.Close()
		return nil, err
	}
	return wb.f, nil
}

func PositionSizeWorkbook(res *models.PositionSizeResult, cur models.Currency) (*excelize.File, error) {
	wb, err := newWorkbook()
	if err != nil {
		return nil, errors.Wrap(err, "new workbook")
	}
	if err := fill(wb, PositionSummary(res, cur), res.Warnings, res.ExitPlan, res.RiskReward, cur); err != nil {
		_ = wb.f.Close()
		return nil, err
	}
	return wb.f, nil
}

func fill(wb *workbook, sections []Section, warnings []models.Warning, plan models.ExitPlan, rows []models.RiskRewardRow, cur models.Currency) error {
	if err := wb.summary(sections, warnings, cur); err != nil {
		return errors.Wrap(err, "summary sheet")
	}
	if err := wb.exitPlan(plan); err != nil {
		return errors.Wrap(err, "exit plan sheet")
	}
	if err := wb.matrix(rows); err != nil {
		return errors.Wrap(err, "matrix sheet")
	}
	return nil
}

// WriteXLSX streams the workbook and closes it.
func WriteXLSX(w io.Writer, f *excelize.File) error {
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "write xlsx")
	}
	return nil
}
