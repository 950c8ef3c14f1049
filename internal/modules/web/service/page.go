package service

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trade_risk/internal/models"
	"trade_risk/internal/report"
	"trade_risk/internal/riskcalc"
)

//go:embed templates/index.html
var templatesFS embed.FS

func parsePage() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/index.html")
}

type tierView struct {
	Label  string
	Price  string
	Shares string
	Profit string
	Action string
}

type matrixView struct {
	Target   string
	Reward   string
	RiskToRw string
	RwToRisk string
}

type resultView struct {
	Title       string
	Sections    []report.Section
	Policy      string
	Tiers       []tierView
	TotalShares string
	TotalProfit string
	Matrix      []matrixView
	Warnings    []models.Warning
}

type pageData struct {
	Currencies []models.Currency
	Currency   models.Currency
	Presets    []models.ExitPreset
	Preset     string
	Mode       models.Mode
	Form       map[string]string
	Result     *resultView
	Error      string
	Problems   []riskcalc.FieldProblem
	Tips       []string
}

// значения формы по умолчанию
var defaultForm = map[string]string{
	"account_size":   "5000",
	"risk_percent":   "1",
	"share_count":    "45",
	"entry_price":    "10",
	"target_price":   "12.50",
	"stop_price":     "9",
	"technical_stop": "8.89",
}

func (h *Handler) newPage(r *http.Request) pageData {
	form := make(map[string]string, len(defaultForm))
	for k, v := range defaultForm {
		form[k] = v
	}
	cur := h.currency(r.FormValue("currency"))
	preset := r.FormValue("preset")
	if preset == "" {
		preset = h.calc.DefaultPreset()
	}
	mode := models.Mode(r.FormValue("mode"))
	if mode != models.ModeStandard {
		mode = models.ModePositionSize
	}
	return pageData{
		Currencies: h.calc.Currencies(),
		Currency:   cur,
		Presets:    h.calc.Presets(),
		Preset:     preset,
		Mode:       mode,
		Form:       form,
		Tips:       report.Tips,
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		h.log.Error("render page", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.newPage(r))
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	data := h.newPage(r)
	for k := range data.Form {
		if v, ok := r.PostForm[k]; ok && len(v) > 0 {
			data.Form[k] = v[0]
		}
	}

	var err error
	switch data.Mode {
	case models.ModeStandard:
		var in models.StandardInput
		if in, err = parseStandardForm(data.Form); err == nil {
			var res *models.StandardResult
			if res, err = h.calc.Standard(r.Context(), in, data.Preset); err == nil {
				data.Result = standardView(res, data.Currency)
			}
		}
	default:
		var in models.PositionSizeInput
		if in, err = parsePositionForm(data.Form); err == nil {
			var res *models.PositionSizeResult
			if res, err = h.calc.PositionSize(r.Context(), in, data.Preset); err == nil {
				data.Result = positionView(res, data.Currency)
			}
		}
	}

	switch {
	case err == nil:
		h.render(w, r, http.StatusOK, data)
	case errors.Is(err, riskcalc.ErrInvalidInput):
		data.Error = "Please check the highlighted fields."
		data.Problems = riskcalc.Problems(err)
		h.render(w, r, http.StatusUnprocessableEntity, data)
	default:
		h.log.Error("calculate", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
		data.Error = "Something went wrong, try again."
		h.render(w, r, http.StatusInternalServerError, data)
	}
}

type formParser struct {
	form     map[string]string
	problems []riskcalc.FieldProblem
}

func (p *formParser) num(field string) decimal.Decimal {
	v, err := models.ParseDecimal(p.form[field])
	if err != nil {
		p.problems = append(p.problems, riskcalc.FieldProblem{Field: field, Reason: err.Error()})
	}
	return v
}

func (p *formParser) shares(field string) int64 {
	n, err := models.ParseShareCount(p.form[field])
	if err != nil {
		p.problems = append(p.problems, riskcalc.FieldProblem{Field: field, Reason: err.Error()})
	}
	return n
}

func (p *formParser) err() error {
	if len(p.problems) == 0 {
		return nil
	}
	return &riskcalc.ValidationError{Problems: p.problems}
}

func parseStandardForm(form map[string]string) (models.StandardInput, error) {
	p := &formParser{form: form}
	in := models.StandardInput{
		AccountSize: p.num("account_size"),
		RiskPercent: p.num("risk_percent"),
		ShareCount:  p.shares("share_count"),
		EntryPrice:  p.num("entry_price"),
		TargetPrice: p.num("target_price"),
		StopPrice:   p.num("stop_price"),
	}
	return in, p.err()
}

func parsePositionForm(form map[string]string) (models.PositionSizeInput, error) {
	p := &formParser{form: form}
	in := models.PositionSizeInput{
		AccountSize:   p.num("account_size"),
		RiskPercent:   p.num("risk_percent"),
		EntryPrice:    p.num("entry_price"),
		TechnicalStop: p.num("technical_stop"),
		TargetPrice:   p.num("target_price"),
	}
	return in, p.err()
}

func planView(v *resultView, plan models.ExitPlan, cur models.Currency) {
	v.Policy = plan.Policy
	for _, t := range plan.Tiers {
		v.Tiers = append(v.Tiers, tierView{
			Label:  report.TierLabel(t),
			Price:  report.Money(t.Price, cur),
			Shares: report.Shares(t.Quantity),
			Profit: report.Money(t.Profit, cur),
			Action: t.Action,
		})
	}
	v.TotalShares = report.Shares(plan.TotalQuantity)
	v.TotalProfit = report.Money(plan.TotalProfit, cur)
}

func matrixViews(rows []models.RiskRewardRow, cur models.Currency) []matrixView {
	out := make([]matrixView, 0, len(rows))
	for _, r := range rows {
		out = append(out, matrixView{
			Target:   report.Money(r.TargetPrice, cur),
			Reward:   report.Money(r.RewardPerShare, cur),
			RiskToRw: report.Number(r.RiskToReward, 2),
			RwToRisk: report.Ratio(r.RewardToRisk),
		})
	}
	return out
}

func standardView(res *models.StandardResult, cur models.Currency) *resultView {
	v := &resultView{
		Title:    "Standard Risk",
		Sections: report.StandardSummary(res, cur),
		Matrix:   matrixViews(res.RiskReward, cur),
		Warnings: res.Warnings,
	}
	planView(v, res.ExitPlan, cur)
	return v
}

func positionView(res *models.PositionSizeResult, cur models.Currency) *resultView {
	v := &resultView{
		Title:    "Position Size",
		Sections: report.PositionSummary(res, cur),
		Matrix:   matrixViews(res.RiskReward, cur),
		Warnings: res.Warnings,
	}
	planView(v, res.ExitPlan, cur)
	return v
}
