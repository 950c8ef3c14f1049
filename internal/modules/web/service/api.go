package service

import (
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"trade_risk/internal/models"
	"trade_risk/internal/report"
	"trade_risk/internal/riskcalc"
)

const (
	maxBodyBytes = 64 << 10
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type standardRequest struct {
	models.StandardInput
	Preset   string `json:"preset,omitempty"`
	Currency string `json:"currency,omitempty"`
}

type positionSizeRequest struct {
	models.PositionSizeInput
	Preset   string `json:"preset,omitempty"`
	Currency string `json:"currency,omitempty"`
}

type errorBody struct {
	Error  string                  `json:"error"`
	Fields []riskcalc.FieldProblem `json:"fields,omitempty"`
}

type presetView struct {
	models.ExitPreset
	Default bool `json:"default"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func decodeBody(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return err
	}
	if len(body) > maxBodyBytes {
		return errors.New("request body too large")
	}
	if len(body) == 0 {
		return errors.New("empty request body")
	}
	return sonic.Unmarshal(body, dst)
}

// writeCalcError: InvalidInput -> 422 с полями, остальное -> 500.
func (h *Handler) writeCalcError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, riskcalc.ErrInvalidInput) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error(), Fields: riskcalc.Problems(err)})
		return
	}
	h.log.Error("calculation failed", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}

func (h *Handler) apiStandard(w http.ResponseWriter, r *http.Request) {
	var req standardRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed JSON: " + err.Error()})
		return
	}
	res, err := h.calc.Standard(r.Context(), req.StandardInput, req.Preset)
	if err != nil {
		h.writeCalcError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) apiPositionSize(w http.ResponseWriter, r *http.Request) {
	var req positionSizeRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed JSON: " + err.Error()})
		return
	}
	res, err := h.calc.PositionSize(r.Context(), req.PositionSizeInput, req.Preset)
	if err != nil {
		h.writeCalcError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) apiCurrencies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default":    h.calc.DefaultCurrency().Code,
		"currencies": h.calc.Currencies(),
	})
}

func (h *Handler) apiPresets(w http.ResponseWriter, _ *http.Request) {
	presets := h.calc.Presets()
	out := make([]presetView, 0, len(presets))
	for _, p := range presets {
		out = append(out, presetView{ExitPreset: p, Default: p.Name == h.calc.DefaultPreset()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) xlsxStandard(w http.ResponseWriter, r *http.Request) {
	var req standardRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed JSON: " + err.Error()})
		return
	}
	res, err := h.calc.Standard(r.Context(), req.StandardInput, req.Preset)
	if err != nil {
		h.writeCalcError(w, r, err)
		return
	}
	f, err := report.StandardWorkbook(res, h.currency(req.Currency))
	if err != nil {
		h.writeCalcError(w, r, err)
		return
	}
	h.streamXLSX(w, r, "standard-risk.xlsx", func(wr io.Writer) error { return report.WriteXLSX(wr, f) })
}

func (h *Handler) xlsxPositionSize(w http.ResponseWriter, r *http.Request) {
	var req positionSizeRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed JSON: " + err.Error()})
		return
	}
	res, err := h.calc.PositionSize(r.Context(), req.PositionSizeInput, req.Preset)
	if err != nil {
		h.writeCalcError(w, r, err)
		return
	}
	f, err := report.PositionSizeWorkbook(res, h.currency(req.Currency))
	if err != nil {
		h.writeCalcError(w, r, err)
		return
	}
	h.streamXLSX(w, r, "position-size.xlsx", func(wr io.Writer) error { return report.WriteXLSX(wr, f) })
}

func (h *Handler) streamXLSX(w http.ResponseWriter, r *http.Request, name string, write func(io.Writer) error) {
	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := write(w); err != nil {
		// заголовки уже ушли, остаётся только лог
		h.log.Error("xlsx stream failed", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
	}
}
