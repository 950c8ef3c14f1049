package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"trade_risk/internal/models"
	"trade_risk/internal/riskcalc"
)

const (
	positionArgs = 5
	standardArgs = 6
)

// withPreset отделяет необязательное имя пресета в конце.
func withPreset(args []string, n int) ([]string, string, error) {
	switch len(args) {
	case n:
		return args, "", nil
	case n + 1:
		return args[:n], args[n], nil
	default:
		return nil, "", fmt.Errorf("expected %d numbers, got %d", n, len(args))
	}
}

type argParser struct {
	problems []riskcalc.FieldProblem
}

func (p *argParser) num(field, raw string) decimal.Decimal {
	v, err := models.ParseDecimal(raw)
	if err != nil {
		p.problems = append(p.problems, riskcalc.FieldProblem{Field: field, Reason: err.Error()})
	}
	return v
}

func (p *argParser) shares(field, raw string) int64 {
	n, err := models.ParseShareCount(raw)
	if err != nil {
		p.problems = append(p.problems, riskcalc.FieldProblem{Field: field, Reason: err.Error()})
	}
	return n
}

func (p *argParser) err() error {
	if len(p.problems) == 0 {
		return nil
	}
	return &riskcalc.ValidationError{Problems: p.problems}
}

// parsePositionArgs: account risk% entry stop target [preset]
func parsePositionArgs(args []string) (models.PositionSizeInput, string, error) {
	a, preset, err := withPreset(args, positionArgs)
	if err != nil {
		return models.PositionSizeInput{}, "", err
	}
	p := &argParser{}
	in := models.PositionSizeInput{
		AccountSize:   p.num("account_size", a[0]),
		RiskPercent:   p.num("risk_percent", a[1]),
		EntryPrice:    p.num("entry_price", a[2]),
		TechnicalStop: p.num("technical_stop", a[3]),
		TargetPrice:   p.num("target_price", a[4]),
	}
	return in, preset, p.err()
}

// parseStandardArgs: account risk% shares entry target stop [preset]
func parseStandardArgs(args []string) (models.StandardInput, string, error) {
	a, preset, err := withPreset(args, standardArgs)
	if err != nil {
		return models.StandardInput{}, "", err
	}
	p := &argParser{}
	in := models.StandardInput{
		AccountSize: p.num("account_size", a[0]),
		RiskPercent: p.num("risk_percent", a[1]),
		ShareCount:  p.shares("share_count", a[2]),
		EntryPrice:  p.num("entry_price", a[3]),
		TargetPrice: p.num("target_price", a[4]),
		StopPrice:   p.num("stop_price", a[5]),
	}
	return in, preset, p.err()
}

// escapeMarkdown экранирует спецсимволы legacy Markdown.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)
