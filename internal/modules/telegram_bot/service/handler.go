package service

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"trade_risk/internal/models"
)

const (
	cbCurrency = "cur:"
	cbMode     = "mode:"
)

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	// 1) Обычные сообщения
	if msg := update.Message; msg != nil {
		chatID := msg.Chat.ID

		if msg.IsCommand() {
			t.metrics.TelegramUpdate("command")
			t.handleCommand(ctx, chatID, msg.Command(), msg.CommandArguments())
			return
		}

		t.metrics.TelegramUpdate("text")
		t.handleTextMessage(ctx, chatID, strings.TrimSpace(msg.Text))
		return
	}

	// 2) Inline-кнопки (CallbackQuery)
	if cb := update.CallbackQuery; cb != nil {
		// у callback всегда свой message
		if cb.Message == nil || cb.Message.Chat == nil {
			return
		}
		t.metrics.TelegramUpdate("callback")
		t.handleCallback(ctx, cb.Message.Chat.ID, cb)
		return
	}

	// 3) Остальное (inline mode и т.п.) игнорируем
}

func (t *Telegram) handleCommand(ctx context.Context, chatID int64, cmd, args string) {
	switch cmd {
	case "start":
		t.handleStart(ctx, chatID)
	case "help":
		_, _ = t.Send(ctx, chatID, helpText)
	case "position":
		t.handleCalcCommand(ctx, chatID, models.ModePositionSize, strings.Fields(args))
	case "standard":
		t.handleCalcCommand(ctx, chatID, models.ModeStandard, strings.Fields(args))
	case "currency":
		t.handleCurrencyMenu(ctx, chatID)
	case "cancel":
		if t.clearAwait(chatID) {
			_, _ = t.Send(ctx, chatID, "Form cancelled.")
			return
		}
		_, _ = t.Send(ctx, chatID, "Nothing to cancel.")
	default:
		_, _ = t.Send(ctx, chatID, "Unknown command, see /help")
	}
}

func (t *Telegram) handleStart(ctx context.Context, chatID int64) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📏 Position Size", cbMode+string(models.ModePositionSize)),
			tgbotapi.NewInlineKeyboardButtonData("🧮 Standard Risk", cbMode+string(models.ModeStandard)),
		),
	)
	msg := tgbotapi.NewMessage(chatID, helpText)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = kb
	_, _ = t.SendMessage(ctx, msg)
}

// handleCalcCommand: без аргументов: пошаговая форма, с аргументами: сразу расчёт.
func (t *Telegram) handleCalcCommand(ctx context.Context, chatID int64, mode models.Mode, args []string) {
	if len(args) == 0 {
		t.startSession(ctx, chatID, mode)
		return
	}

	switch mode {
	case models.ModeStandard:
		in, preset, err := parseStandardArgs(args)
		if err != nil {
			_, _ = t.Send(ctx, chatID, formatError(err)+"\nUsage: `/standard 10000 2 100 20 24 19`")
			return
		}
		t.replyStandard(ctx, chatID, in, preset)
	default:
		in, preset, err := parsePositionArgs(args)
		if err != nil {
			_, _ = t.Send(ctx, chatID, formatError(err)+"\nUsage: `/position 10000 1 50 48 56`")
			return
		}
		t.replyPositionSize(ctx, chatID, in, preset)
	}
}

func (t *Telegram) startSession(ctx context.Context, chatID int64, mode models.Mode) {
	s := NewSession(mode)
	t.setAwait(chatID, s)
	cur := t.currency(chatID)
	_, _ = t.Send(ctx, chatID, "Amounts in "+cur.Code+", /cancel to stop.\n"+s.Prompt())
}

func (t *Telegram) handleTextMessage(ctx context.Context, chatID int64, text string) {
	s, ok := t.peekAwait(chatID)
	if !ok {
		_, _ = t.Send(ctx, chatID, "Send /position or /standard to start, /help for examples.")
		return
	}

	if err := s.Accept(text); err != nil {
		_, _ = t.Send(ctx, chatID, "❌ "+escapeMarkdown(err.Error())+"\n"+s.Prompt())
		return
	}
	if !s.Done() {
		_, _ = t.Send(ctx, chatID, s.Prompt())
		return
	}

	t.clearAwait(chatID)
	switch s.Mode {
	case models.ModeStandard:
		t.replyStandard(ctx, chatID, s.StandardInput(), "")
	default:
		t.replyPositionSize(ctx, chatID, s.PositionSizeInput(), "")
	}
}

func (t *Telegram) replyPositionSize(ctx context.Context, chatID int64, in models.PositionSizeInput, preset string) {
	res, err := t.calc.PositionSize(ctx, in, preset)
	if err != nil {
		_, _ = t.Send(ctx, chatID, formatError(err))
		return
	}
	_, _ = t.Send(ctx, chatID, formatPositionSize(res, t.currency(chatID)))
}

func (t *Telegram) replyStandard(ctx context.Context, chatID int64, in models.StandardInput, preset string) {
	res, err := t.calc.Standard(ctx, in, preset)
	if err != nil {
		_, _ = t.Send(ctx, chatID, formatError(err))
		return
	}
	_, _ = t.Send(ctx, chatID, formatStandard(res, t.currency(chatID)))
}

func (t *Telegram) handleCurrencyMenu(ctx context.Context, chatID int64) {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(t.calc.Currencies()))
	for _, c := range t.calc.Currencies() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(c.Icon+" "+c.Code, cbCurrency+c.Code))
	}
	msg := tgbotapi.NewMessage(chatID, "Select currency (now "+t.currency(chatID).Code+"):")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	_, _ = t.SendMessage(ctx, msg)
}

func (t *Telegram) handleCallback(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery) {
	// отвечаем ТГ, чтобы убрать "часики" на кнопке
	if bot := t.client(); bot != nil {
		_, _ = bot.Request(tgbotapi.NewCallback(cb.ID, ""))
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbCurrency):
		code := strings.TrimPrefix(data, cbCurrency)
		c, ok := models.LookupCurrency(code)
		if !ok {
			t.log.Warn("unknown currency in callback", zap.String("data", data))
			return
		}
		t.setCurrency(chatID, c.Code)
		_ = t.editText(chatID, cb.Message.MessageID, "Currency set to "+c.Icon+" "+c.Code+" ("+c.Name+")")

	case strings.HasPrefix(data, cbMode):
		switch models.Mode(strings.TrimPrefix(data, cbMode)) {
		case models.ModeStandard:
			t.startSession(ctx, chatID, models.ModeStandard)
		case models.ModePositionSize:
			t.startSession(ctx, chatID, models.ModePositionSize)
		}
	}
}
