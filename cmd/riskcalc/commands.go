package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"trade_risk/internal/models"
	"trade_risk/internal/report"
)

func bindFields(cmd *cobra.Command, defs [][3]string) fields {
	f := make(fields, len(defs))
	for _, s := range defs {
		field, flag, usage := s[0], s[1], s[2]
		v := new(string)
		cmd.Flags().StringVar(v, flag, "", usage)
		_ = cmd.MarkFlagRequired(flag)
		f[field] = v
	}
	return f
}

func standardCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standard",
		Short: "Check the risk of a share count you picked",
		Example: `  riskcalc standard --account 10000 --risk 2 --shares 100 --entry 20 --target 24 --stop 19
  riskcalc standard --account 5000 --risk 1 --shares 45 --entry 10 --target 12.50 --stop 9 -f xlsx`,
		Args: cobra.NoArgs,
	}
	f := bindFields(cmd, [][3]string{
		{"account_size", "account", "Account size"},
		{"risk_percent", "risk", "Risk per trade, percent of the account"},
		{"share_count", "shares", "Number of shares"},
		{"entry_price", "entry", "Entry price per share"},
		{"target_price", "target", "Target price per share"},
		{"stop_price", "stop", "Stop loss price"},
	})

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := opts.checkFormat(true); err != nil {
			return err
		}
		p := f.parser()
		in := models.StandardInput{
			AccountSize: p.num("account_size"),
			RiskPercent: p.num("risk_percent"),
			ShareCount:  p.shares("share_count"),
			EntryPrice:  p.num("entry_price"),
			TargetPrice: p.num("target_price"),
			StopPrice:   p.num("stop_price"),
		}
		if err := p.err(); err != nil {
			return err
		}

		svc, cur, err := opts.service()
		if err != nil {
			return err
		}
		res, err := svc.Standard(cmd.Context(), in, opts.preset)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch strings.ToLower(opts.format) {
		case formatJSON:
			return writeJSON(out, res)
		case formatXLSX:
			wb, err := report.StandardWorkbook(res, cur)
			if err != nil {
				return err
			}
			return saveWorkbook(out, wb, opts.output, "standard-risk.xlsx")
		default:
			report.RenderStandard(out, res, cur)
			return nil
		}
	}
	return cmd
}

func positionCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "position",
		Aliases: []string{"size"},
		Short:   "Size a position from the risk budget and a technical stop",
		Example: `  riskcalc position --account 10000 --risk 1 --entry 50 --stop 48 --target 56
  riskcalc position --account 10000 --risk 1 --entry 50 --stop 48 --target 56 --preset front -f json`,
		Args: cobra.NoArgs,
	}
	f := bindFields(cmd, [][3]string{
		{"account_size", "account", "Account size"},
		{"risk_percent", "risk", "Risk per trade, percent of the account"},
		{"entry_price", "entry", "Entry price per share"},
		{"technical_stop", "stop", "Technical stop loss price"},
		{"target_price", "target", "Target price per share"},
	})

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := opts.checkFormat(true); err != nil {
			return err
		}
		p := f.parser()
		in := models.PositionSizeInput{
			AccountSize:   p.num("account_size"),
			RiskPercent:   p.num("risk_percent"),
			EntryPrice:    p.num("entry_price"),
			TechnicalStop: p.num("technical_stop"),
			TargetPrice:   p.num("target_price"),
		}
		if err := p.err(); err != nil {
			return err
		}

		svc, cur, err := opts.service()
		if err != nil {
			return err
		}
		res, err := svc.PositionSize(cmd.Context(), in, opts.preset)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch strings.ToLower(opts.format) {
		case formatJSON:
			return writeJSON(out, res)
		case formatXLSX:
			wb, err := report.PositionSizeWorkbook(res, cur)
			if err != nil {
				return err
			}
			return saveWorkbook(out, wb, opts.output, "position-size.xlsx")
		default:
			report.RenderPositionSize(out, res, cur)
			return nil
		}
	}
	return cmd
}

type matrixOutput struct {
	Direction models.Direction       `json:"direction"`
	Rows      []models.RiskRewardRow `json:"rows"`
}

func matrixCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "matrix",
		Short:   "Reward-to-risk ratios for targets around the base target",
		Example: `  riskcalc matrix --entry 10 --target 12.50 --stop 8.89`,
		Args:    cobra.NoArgs,
	}
	f := bindFields(cmd, [][3]string{
		{"entry_price", "entry", "Entry price per share"},
		{"target_price", "target", "Base target price"},
		{"stop_price", "stop", "Stop loss price"},
	})

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := opts.checkFormat(false); err != nil {
			return err
		}
		p := f.parser()
		entry, target, stop := p.num("entry_price"), p.num("target_price"), p.num("stop_price")
		if err := p.err(); err != nil {
			return err
		}

		svc, cur, err := opts.service()
		if err != nil {
			return err
		}
		rows, dir, err := svc.Matrix(cmd.Context(), entry, target, stop)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if strings.ToLower(opts.format) == formatJSON {
			return writeJSON(out, matrixOutput{Direction: dir, Rows: rows})
		}
		if len(rows) == 0 {
			fmt.Fprintln(out, "Target is not beyond the entry in the trade direction, nothing to show.")
			return nil
		}
		report.RenderMatrix(out, rows, cur)
		return nil
	}
	return cmd
}

func presetsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List exit presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := opts.service()
			if err != nil {
				return err
			}
			if strings.ToLower(opts.format) == formatJSON {
				return writeJSON(cmd.OutOrStdout(), svc.Presets())
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"Preset", "Weights", "Multiples", "Description"})
			for _, p := range svc.Presets() {
				name := p.Name
				if name == svc.DefaultPreset() {
					name += " *"
				}
				t.AppendRow(table.Row{name, fmt.Sprint(p.Weights), fmt.Sprint(p.Multiples), p.Description})
			}
			t.Render()
			return nil
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	b, err := report.PrettyJSON(v, false)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func saveWorkbook(out io.Writer, wb *excelize.File, path, fallback string) error {
	if path == "" {
		path = fallback
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteXLSX(f, wb); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "saved %s\n", path)
	return nil
}
