package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trade_risk/internal/models"
	"trade_risk/internal/riskcalc"
)

const wsWriteWait = 10 * time.Second

type wsRequest struct {
	Mode   models.Mode     `json:"mode"`
	Preset string          `json:"preset,omitempty"`
	Input  json.RawMessage `json:"input"`
}

type wsReply struct {
	Mode   models.Mode             `json:"mode,omitempty"`
	Result interface{}             `json:"result,omitempty"`
	Error  string                  `json:"error,omitempty"`
	Fields []riskcalc.FieldProblem `json:"fields,omitempty"`
}

// ws: живой пересчёт: каждое сообщение получает ровно один ответ.
func (h *Handler) ws(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам ответил клиенту
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.WSOpened()
	defer h.metrics.WSClosed()

	log := h.log.With(zap.String("request_id", RequestID(r.Context())))
	conn.SetReadLimit(maxBodyBytes)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(h.wsIdle))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("ws closed", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		reply := h.handleWS(r, data)
		body, err := sonic.Marshal(reply)
		if err != nil {
			log.Error("ws marshal", zap.Error(err))
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
			log.Info("ws write", zap.Error(err))
			return
		}
	}
}

func (h *Handler) handleWS(r *http.Request, data []byte) wsReply {
	var req wsRequest
	if err := sonic.Unmarshal(data, &req); err != nil {
		return wsReply{Error: "malformed JSON: " + err.Error()}
	}

	var (
		result interface{}
		err    error
	)
	switch req.Mode {
	case models.ModeStandard:
		var in models.StandardInput
		if err = sonic.Unmarshal(req.Input, &in); err != nil {
			return wsReply{Mode: req.Mode, Error: "malformed input: " + err.Error()}
		}
		result, err = h.calc.Standard(r.Context(), in, req.Preset)
	case models.ModePositionSize:
		var in models.PositionSizeInput
		if err = sonic.Unmarshal(req.Input, &in); err != nil {
			return wsReply{Mode: req.Mode, Error: "malformed input: " + err.Error()}
		}
		result, err = h.calc.PositionSize(r.Context(), in, req.Preset)
	default:
		return wsReply{Error: "unknown mode " + string(req.Mode)}
	}

	if err != nil {
		if errors.Is(err, riskcalc.ErrInvalidInput) {
			return wsReply{Mode: req.Mode, Error: err.Error(), Fields: riskcalc.Problems(err)}
		}
		return wsReply{Mode: req.Mode, Error: "internal error"}
	}
	return wsReply{Mode: req.Mode, Result: result}
}
