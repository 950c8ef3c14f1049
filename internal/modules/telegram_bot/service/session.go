package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"trade_risk/internal/models"
)

type step struct {
	field  string
	prompt string
	shares bool
}

var standardSteps = []step{
	{field: "account_size", prompt: "Account size?"},
	{field: "risk_percent", prompt: "Risk percentage per trade (e.g. 1)?"},
	{field: "share_count", prompt: "Number of shares?", shares: true},
	{field: "entry_price", prompt: "Entry price per share?"},
	{field: "target_price", prompt: "Target price per share?"},
	{field: "stop_price", prompt: "Stop loss price?"},
}

var positionSteps = []step{
	{field: "account_size", prompt: "Account size?"},
	{field: "risk_percent", prompt: "Risk percentage per trade (e.g. 1)?"},
	{field: "entry_price", prompt: "Entry price per share?"},
	{field: "technical_stop", prompt: "Technical stop loss price?"},
	{field: "target_price", prompt: "Target price per share?"},
}

// Session: пошаговый ввод формы в чате. Хранит только уже принятые поля.
type Session struct {
	Mode   models.Mode
	steps  []step
	pos    int
	nums   map[string]decimal.Decimal
	shares int64
}

func NewSession(mode models.Mode) *Session {
	steps := positionSteps
	if mode == models.ModeStandard {
		steps = standardSteps
	}
	return &Session{
		Mode:  mode,
		steps: steps,
		nums:  make(map[string]decimal.Decimal, len(steps)),
	}
}

func (s *Session) Done() bool { return s.pos >= len(s.steps) }

// Prompt: вопрос для текущего шага с номером "(2/5)".
func (s *Session) Prompt() string {
	if s.Done() {
		return ""
	}
	return fmt.Sprintf("(%d/%d) %s", s.pos+1, len(s.steps), s.steps[s.pos].prompt)
}

// Accept parses the answer for the current step. On error the step is kept.
// Only number syntax is checked here, ranges are left to the calculator.
func (s *Session) Accept(text string) error {
	if s.Done() {
		return fmt.Errorf("nothing to fill in")
	}
	st := s.steps[s.pos]
	if st.shares {
		n, err := models.ParseShareCount(text)
		if err != nil {
			return err
		}
		s.shares = n
	} else {
		v, err := models.ParseDecimal(text)
		if err != nil {
			return err
		}
		s.nums[st.field] = v
	}
	s.pos++
	return nil
}

func (s *Session) StandardInput() models.StandardInput {
	return models.StandardInput{
		AccountSize: s.nums["account_size"],
		RiskPercent: s.nums["risk_percent"],
		ShareCount:  s.shares,
		EntryPrice:  s.nums["entry_price"],
		TargetPrice: s.nums["target_price"],
		StopPrice:   s.nums["stop_price"],
	}
}

func (s *Session) PositionSizeInput() models.PositionSizeInput {
	return models.PositionSizeInput{
		AccountSize:   s.nums["account_size"],
		RiskPercent:   s.nums["risk_percent"],
		EntryPrice:    s.nums["entry_price"],
		TechnicalStop: s.nums["technical_stop"],
		TargetPrice:   s.nums["target_price"],
	}
}
