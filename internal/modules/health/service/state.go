package service

import (
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	telegramConnected atomic.Bool
	calculations      atomic.Int64
	lastCalcUnix      atomic.Int64 // unix seconds
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetTelegramConnected(v bool) { s.telegramConnected.Store(v) }
func (s *State) TelegramConnected() bool     { return s.telegramConnected.Load() }

// TouchCalculation учитывает успешный расчёт.
func (s *State) TouchCalculation(t time.Time) {
	s.calculations.Add(1)
	s.lastCalcUnix.Store(t.Unix())
}

func (s *State) Calculations() int64 { return s.calculations.Load() }

func (s *State) LastCalculation() time.Time {
	u := s.lastCalcUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
