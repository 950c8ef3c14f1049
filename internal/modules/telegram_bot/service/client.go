package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"trade_risk/internal/models"
	"trade_risk/internal/modules/config"
	health "trade_risk/internal/modules/health/service"
	metrics "trade_risk/internal/modules/metrics/service"
)

// botAPI: часть tgbot.BotAPI, которой пользуется сервис.
type botAPI interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
	Request(c tgbot.Chattable) (*tgbot.APIResponse, error)
	GetUpdatesChan(config tgbot.UpdateConfig) tgbot.UpdatesChannel
	StopReceivingUpdates()
}

// Calculator: то, что боту нужно от сервиса расчётов.
type Calculator interface {
	Standard(ctx context.Context, in models.StandardInput, preset string) (*models.StandardResult, error)
	PositionSize(ctx context.Context, in models.PositionSizeInput, preset string) (*models.PositionSizeResult, error)
	Currencies() []models.Currency
	DefaultCurrency() models.Currency
}

// Telegram
type Telegram struct {
	token       string
	pollTimeout int
	maxWait     time.Duration
	dial        func(token string) (botAPI, error)

	mu  sync.Mutex
	bot botAPI

	calc    Calculator
	log     *zap.Logger
	state   *health.State
	metrics *metrics.Metrics
	await   *awaitStore

	cancel context.CancelFunc
	done   chan struct{}
}

func dialBot(token string) (botAPI, error) {
	return tgbot.NewBotAPI(token)
}

// NewTelegram возвращает nil, если токен не задан: бот необязателен.
func NewTelegram(
	cfg *config.Config,
	calc Calculator,
	log *zap.Logger,
	state *health.State,
	m *metrics.Metrics,
) *Telegram {
	if cfg.Telegram.Token == "" {
		log.Info("telegram token is empty, bot disabled")
		return nil
	}
	return newTelegram(cfg.Telegram.Token, cfg.Telegram.PollTimeout, calc, log, state, m, dialBot)
}

func newTelegram(
	token string,
	pollTimeout int,
	calc Calculator,
	log *zap.Logger,
	state *health.State,
	m *metrics.Metrics,
	dial func(string) (botAPI, error),
) *Telegram {
	if log == nil {
		log = zap.NewNop()
	}
	if state == nil {
		state = health.NewState()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Telegram{
		token:       token,
		pollTimeout: pollTimeout,
		maxWait:     2 * time.Minute,
		dial:        dial,
		calc:        calc,
		log:         log.Named("telegram"),
		state:       state,
		metrics:     m,
		await:       newAwaitStore(),
	}
}

// connect: NewBotAPI с экспоненциальным backoff; 401 не ретраим.
func (t *Telegram) connect(ctx context.Context) (botAPI, error) {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = t.maxWait

	var bot botAPI
	op := func() error {
		var err error
		bot, err = t.dial(t.token)
		if err == nil {
			return nil
		}
		var apiErr *tgbot.Error
		if errors.As(err, &apiErr) && apiErr.Code == 401 {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		t.log.Warn("telegram connect failed, retrying", zap.Error(err), zap.Duration("wait", wait))
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}
	return bot, nil
}

// Start подключается в фоне, чтобы не держать старт приложения.
func (t *Telegram) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)

		bot, err := t.connect(runCtx)
		if err != nil {
			if runCtx.Err() == nil {
				t.log.Error("telegram bot is not available", zap.Error(err))
			}
			return
		}
		t.mu.Lock()
		t.bot = bot
		t.mu.Unlock()
		t.state.SetTelegramConnected(true)
		defer t.state.SetTelegramConnected(false)
		t.log.Info("telegram bot connected")

		u := tgbot.NewUpdate(0)
		u.Timeout = t.pollTimeout
		updates := bot.GetUpdatesChan(u)
		for {
			select {
			case <-runCtx.Done():
				bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				t.handleUpdate(runCtx, update)
			}
		}
	}()
}

func (t *Telegram) Stop(ctx context.Context) error {
	if t.cancel == nil {
		return nil
	}
	t.cancel()
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Telegram) client() botAPI {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bot
}

func (t *Telegram) Send(ctx context.Context, chatID int64, msg string) (tgbot.Message, error) {
	m := tgbot.NewMessage(chatID, msg)
	m.ParseMode = tgbot.ModeMarkdown
	return t.SendMessage(ctx, m)
}

func (t *Telegram) SendMessage(_ context.Context, message tgbot.MessageConfig) (tgbot.Message, error) {
	bot := t.client()
	if bot == nil {
		return tgbot.Message{}, errors.New("telegram bot is not connected")
	}
	sent, err := bot.Send(message)
	if err != nil {
		t.log.Warn("telegram send failed", zap.Int64("chat_id", message.ChatID), zap.Error(err))
	}
	return sent, err
}

func (t *Telegram) editText(chatID int64, msgID int, text string) error {
	bot := t.client()
	if bot == nil {
		return errors.New("telegram bot is not connected")
	}
	edit := tgbot.NewEditMessageText(chatID, msgID, text)
	_, err := bot.Request(edit)
	return err
}
