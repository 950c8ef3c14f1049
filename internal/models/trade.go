package models

import "github.com/shopspring/decimal"

// Mode: режим калькулятора.
type Mode string

const (
	ModeStandard     Mode = "standard"
	ModePositionSize Mode = "position_size"
)

// Direction is derived from where the stop sits relative to the entry.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Sign returns +1 for long and -1 for short.
func (d Direction) Sign() decimal.Decimal {
	if d == Short {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// StandardInput: пользователь сам задаёт количество акций.
type StandardInput struct {
	AccountSize decimal.Decimal `json:"account_size"`
	RiskPercent decimal.Decimal `json:"risk_percent"`
	ShareCount  int64           `json:"share_count"`
	EntryPrice  decimal.Decimal `json:"entry_price"`
	TargetPrice decimal.Decimal `json:"target_price"`
	StopPrice   decimal.Decimal `json:"stop_price"`
}

// PositionSizeInput: размер позиции считается из риска и технического стопа.
type PositionSizeInput struct {
	AccountSize   decimal.Decimal `json:"account_size"`
	RiskPercent   decimal.Decimal `json:"risk_percent"`
	EntryPrice    decimal.Decimal `json:"entry_price"`
	TechnicalStop decimal.Decimal `json:"technical_stop"`
	TargetPrice   decimal.Decimal `json:"target_price"`
}
