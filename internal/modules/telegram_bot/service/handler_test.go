package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calculator "trade_risk/internal/modules/calculator/service"
	health "trade_risk/internal/modules/health/service"
)

type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbot.MessageConfig
	requests []tgbot.Chattable
	updates  chan tgbot.Update
	stopped  bool
}

func newFakeBot() *fakeBot {
	return &fakeBot{updates: make(chan tgbot.Update, 10)}
}

func (f *fakeBot) Send(c tgbot.Chattable) (tgbot.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbot.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbot.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeBot) Request(c tgbot.Chattable) (*tgbot.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbot.APIResponse{Ok: true}, nil
}

func (f *fakeBot) GetUpdatesChan(tgbot.UpdateConfig) tgbot.UpdatesChannel { return f.updates }

func (f *fakeBot) StopReceivingUpdates() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeBot) last() tgbot.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return tgbot.MessageConfig{}
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeBot) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestTelegram(t *testing.T) (*Telegram, *fakeBot) {
	t.Helper()
	calc, err := calculator.NewService(calculator.DefaultSettings(), nil, nil, nil, nil)
	require.NoError(t, err)

	bot := newFakeBot()
	tg := newTelegram("token", 1, calc, nil, nil, nil, func(string) (botAPI, error) { return bot, nil })
	tg.bot = bot
	return tg, bot
}

const chat = int64(42)

func command(text string) tgbot.Update {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	return tgbot.Update{Message: &tgbot.Message{
		Text:     text,
		Chat:     &tgbot.Chat{ID: chat},
		Entities: []tgbot.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}}
}

func text(s string) tgbot.Update {
	return tgbot.Update{Message: &tgbot.Message{Text: s, Chat: &tgbot.Chat{ID: chat}}}
}

func callback(data string) tgbot.Update {
	return tgbot.Update{CallbackQuery: &tgbot.CallbackQuery{
		ID:      "cb1",
		Data:    data,
		Message: &tgbot.Message{MessageID: 7, Chat: &tgbot.Chat{ID: chat}},
	}}
}

func TestOneShotPosition(t *testing.T) {
	tg, bot := newTestTelegram(t)
	tg.handleUpdate(context.Background(), command("/position 10000 1 50 48 56"))

	out := bot.last()
	assert.Equal(t, chat, out.ChatID)
	assert.Equal(t, tgbot.ModeMarkdown, out.ParseMode)
	assert.Contains(t, out.Text, "50 shares")
	assert.Contains(t, out.Text, "Total Potential Profit")
	assert.Contains(t, out.Text, "(USD)")
}

func TestOneShotStandard_WithPreset(t *testing.T) {
	tg, bot := newTestTelegram(t)
	tg.handleUpdate(context.Background(), command("/standard 10000 2 100 20 24 19 front"))

	out := bot.last().Text
	assert.Contains(t, out, "Standard Risk")
	assert.Contains(t, out, "Exit Strategy (front)")
	assert.Contains(t, out, "4.00:1")
}

func TestOneShot_Errors(t *testing.T) {
	tg, bot := newTestTelegram(t)

	tg.handleUpdate(context.Background(), command("/position 10000 1 50"))
	assert.Contains(t, bot.last().Text, "expected 5 numbers")

	tg.handleUpdate(context.Background(), command("/position 10000 1 50 50 56"))
	assert.Contains(t, bot.last().Text, `technical\_stop`)

	tg.handleUpdate(context.Background(), command("/position 10000 1 50 48 56 nope"))
	assert.Contains(t, bot.last().Text, `exit\_preset`)
}

func TestGuidedPosition(t *testing.T) {
	tg, bot := newTestTelegram(t)
	ctx := context.Background()

	tg.handleUpdate(ctx, command("/position"))
	assert.Contains(t, bot.last().Text, "(1/5) Account size?")

	tg.handleUpdate(ctx, text("10 000"))
	tg.handleUpdate(ctx, text("1"))
	tg.handleUpdate(ctx, text("fifty"))
	assert.Contains(t, bot.last().Text, "(3/5)")
	assert.Contains(t, bot.last().Text, "not a number")

	tg.handleUpdate(ctx, text("50"))
	tg.handleUpdate(ctx, text("48"))
	tg.handleUpdate(ctx, text("56"))
	assert.Contains(t, bot.last().Text, "50 shares")

	_, active := tg.peekAwait(chat)
	assert.False(t, active)

	tg.handleUpdate(ctx, text("hello"))
	assert.Contains(t, bot.last().Text, "/position or /standard")
}

func TestCancel(t *testing.T) {
	tg, bot := newTestTelegram(t)
	ctx := context.Background()

	tg.handleUpdate(ctx, command("/cancel"))
	assert.Equal(t, "Nothing to cancel.", bot.last().Text)

	tg.handleUpdate(ctx, command("/standard"))
	tg.handleUpdate(ctx, command("/cancel"))
	assert.Equal(t, "Form cancelled.", bot.last().Text)
}

func TestCurrencySelection(t *testing.T) {
	tg, bot := newTestTelegram(t)
	ctx := context.Background()

	tg.handleUpdate(ctx, command("/currency"))
	kb, ok := bot.last().ReplyMarkup.(tgbot.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard[0], 4)
	assert.Equal(t, "cur:EUR", *kb.InlineKeyboard[0][1].CallbackData)

	tg.handleUpdate(ctx, callback("cur:EUR"))
	assert.Equal(t, "EUR", tg.currency(chat).Code)

	tg.handleUpdate(ctx, command("/position 10000 1 50 48 56"))
	assert.Contains(t, bot.last().Text, "(EUR)")

	// callback answered and message edited
	bot.mu.Lock()
	assert.Len(t, bot.requests, 2)
	bot.mu.Unlock()
}

func TestModeButtonStartsSession(t *testing.T) {
	tg, bot := newTestTelegram(t)
	ctx := context.Background()

	tg.handleUpdate(ctx, command("/start"))
	_, ok := bot.last().ReplyMarkup.(tgbot.InlineKeyboardMarkup)
	assert.True(t, ok)

	tg.handleUpdate(ctx, callback("mode:standard"))
	assert.Contains(t, bot.last().Text, "(1/6) Account size?")
}

func TestStartStop(t *testing.T) {
	calc, err := calculator.NewService(calculator.DefaultSettings(), nil, nil, nil, nil)
	require.NoError(t, err)
	state := health.NewState()
	bot := newFakeBot()
	tg := newTelegram("token", 1, calc, nil, state, nil, func(string) (botAPI, error) { return bot, nil })

	tg.Start(context.Background())
	assert.Eventually(t, state.TelegramConnected, time.Second, 10*time.Millisecond)

	bot.updates <- command("/help")
	assert.Eventually(t, func() bool { return bot.count() == 1 }, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, tg.Stop(ctx))
	assert.False(t, state.TelegramConnected())
	bot.mu.Lock()
	assert.True(t, bot.stopped)
	bot.mu.Unlock()
}

func TestConnect_UnauthorizedIsPermanent(t *testing.T) {
	calls := 0
	tg := newTelegram("bad", 1, nil, nil, nil, nil, func(string) (botAPI, error) {
		calls++
		return nil, &tgbot.Error{Code: 401, Message: "Unauthorized"}
	})

	_, err := tg.connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestConnect_RetriesTransient(t *testing.T) {
	calls := 0
	bot := newFakeBot()
	tg := newTelegram("ok", 1, nil, nil, nil, nil, func(string) (botAPI, error) {
		calls++
		if calls < 2 {
			return nil, errors.New("connection reset")
		}
		return bot, nil
	})

	got, err := tg.connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bot, got)
	assert.Equal(t, 2, calls)
}
