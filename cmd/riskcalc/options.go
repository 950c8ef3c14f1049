package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trade_risk/internal/models"
	calculator "trade_risk/internal/modules/calculator/service"
	"trade_risk/internal/modules/config"
	"trade_risk/internal/riskcalc"
	"trade_risk/pkg/logger"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatXLSX  = "xlsx"
)

type options struct {
	configPath string
	currency   string
	preset     string
	lot        int64
	format     string
	output     string
	verbose    bool
}

func (o *options) checkFormat(xlsxAllowed bool) error {
	switch strings.ToLower(o.format) {
	case formatTable, formatJSON:
		return nil
	case formatXLSX:
		if xlsxAllowed {
			return nil
		}
		return fmt.Errorf("xlsx output is not available for this command")
	default:
		return fmt.Errorf("unknown format %q, want table, json or xlsx", o.format)
	}
}

func (o *options) logger() (*zap.Logger, error) {
	if !o.verbose {
		return zap.NewNop(), nil
	}
	return logger.New(logger.Config{Level: "debug", Encoding: "console"})
}

// service собирает калькулятор так же, как сервер, но без метрик и трейсинга.
func (o *options) service() (*calculator.Service, models.Currency, error) {
	settings := calculator.DefaultSettings()
	if o.configPath != "" {
		cfg, err := config.Load(o.configPath)
		if err != nil {
			return nil, models.Currency{}, err
		}
		if settings, err = calculator.SettingsFromConfig(cfg); err != nil {
			return nil, models.Currency{}, err
		}
	}
	if o.lot != 0 {
		if o.lot < 0 {
			return nil, models.Currency{}, riskcalc.InvalidField("lot", "must be a positive whole number")
		}
		settings.LotSize = o.lot
	}

	log, err := o.logger()
	if err != nil {
		return nil, models.Currency{}, err
	}
	svc, err := calculator.NewService(settings, log, nil, nil, nil)
	if err != nil {
		return nil, models.Currency{}, err
	}

	cur := svc.DefaultCurrency()
	if o.currency != "" {
		c, ok := models.LookupCurrency(o.currency)
		if !ok {
			return nil, models.Currency{}, riskcalc.InvalidField("currency", "unknown currency "+o.currency)
		}
		cur = c
	}
	return svc, cur, nil
}

// fields: сырые значения флагов по именам полей ввода.
type fields map[string]*string

func (f fields) parser() *fieldParser { return &fieldParser{raw: f} }

type fieldParser struct {
	raw      fields
	problems []riskcalc.FieldProblem
}

func (p *fieldParser) num(field string) decimal.Decimal {
	v, err := models.ParseDecimal(*p.raw[field])
	if err != nil {
		p.problems = append(p.problems, riskcalc.FieldProblem{Field: field, Reason: err.Error()})
	}
	return v
}

func (p *fieldParser) shares(field string) int64 {
	n, err := models.ParseShareCount(*p.raw[field])
	if err != nil {
		p.problems = append(p.problems, riskcalc.FieldProblem{Field: field, Reason: err.Error()})
	}
	return n
}

func (p *fieldParser) err() error {
	if len(p.problems) == 0 {
		return nil
	}
	return &riskcalc.ValidationError{Problems: p.problems}
}
