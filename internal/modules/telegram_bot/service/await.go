package service

import (
	"sync"

	"trade_risk/internal/models"
)

// chatState: всё, что бот помнит о чате, пока идёт разговор.
type chatState struct {
	session  *Session
	currency string
}

type awaitStore struct {
	mu sync.Mutex
	m  map[int64]*chatState // chatID -> state
}

func newAwaitStore() *awaitStore {
	return &awaitStore{m: make(map[int64]*chatState)}
}

func (a *awaitStore) get(chatID int64) *chatState {
	st, ok := a.m[chatID]
	if !ok {
		st = &chatState{}
		a.m[chatID] = st
	}
	return st
}

func (t *Telegram) setAwait(chatID int64, s *Session) {
	t.await.mu.Lock()
	defer t.await.mu.Unlock()
	t.await.get(chatID).session = s
}

func (t *Telegram) peekAwait(chatID int64) (*Session, bool) {
	t.await.mu.Lock()
	defer t.await.mu.Unlock()
	st, ok := t.await.m[chatID]
	if !ok || st.session == nil {
		return nil, false
	}
	return st.session, true
}

func (t *Telegram) clearAwait(chatID int64) bool {
	t.await.mu.Lock()
	defer t.await.mu.Unlock()
	st, ok := t.await.m[chatID]
	if !ok || st.session == nil {
		return false
	}
	st.session = nil
	if st.currency == "" {
		delete(t.await.m, chatID)
	}
	return true
}

func (t *Telegram) setCurrency(chatID int64, code string) {
	t.await.mu.Lock()
	defer t.await.mu.Unlock()
	t.await.get(chatID).currency = code
}

func (t *Telegram) currency(chatID int64) models.Currency {
	t.await.mu.Lock()
	code := ""
	if st, ok := t.await.m[chatID]; ok {
		code = st.currency
	}
	t.await.mu.Unlock()

	if c, ok := models.LookupCurrency(code); ok {
		return c
	}
	return t.calc.DefaultCurrency()
}
