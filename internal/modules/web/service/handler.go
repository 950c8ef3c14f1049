package service

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trade_risk/internal/models"
	metrics "trade_risk/internal/modules/metrics/service"
)

// Calculator: то, что веб-слою нужно от сервиса расчётов.
type Calculator interface {
	Standard(ctx context.Context, in models.StandardInput, preset string) (*models.StandardResult, error)
	PositionSize(ctx context.Context, in models.PositionSizeInput, preset string) (*models.PositionSizeResult, error)
	Presets() []models.ExitPreset
	Currencies() []models.Currency
	DefaultCurrency() models.Currency
	DefaultPreset() string
}

type Options struct {
	RateRPS   float64
	RateBurst int
	// WSIdle: сколько держим молчащий websocket.
	WSIdle time.Duration
}

type Handler struct {
	calc     Calculator
	log      *zap.Logger
	metrics  *metrics.Metrics
	page     *template.Template
	limiter  *ipLimiter
	upgrader websocket.Upgrader
	wsIdle   time.Duration
}

func NewHandler(calc Calculator, log *zap.Logger, m *metrics.Metrics, opts Options) (*Handler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	page, err := parsePage()
	if err != nil {
		return nil, err
	}
	if opts.WSIdle <= 0 {
		opts.WSIdle = 5 * time.Minute
	}
	return &Handler{
		calc:    calc,
		log:     log.Named("web"),
		metrics: m,
		page:    page,
		limiter: newIPLimiter(opts.RateRPS, opts.RateBurst),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		wsIdle: opts.WSIdle,
	}, nil
}

// Routes собирает mux и оборачивает его middleware.
// Порядок важен: request id снаружи, чтобы access log видел r.Pattern.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("POST /calculate", h.calculate)

	mux.HandleFunc("POST /api/v1/standard", h.apiStandard)
	mux.HandleFunc("POST /api/v1/position-size", h.apiPositionSize)
	mux.HandleFunc("POST /api/v1/standard/xlsx", h.xlsxStandard)
	mux.HandleFunc("POST /api/v1/position-size/xlsx", h.xlsxPositionSize)
	mux.HandleFunc("GET /api/v1/currencies", h.apiCurrencies)
	mux.HandleFunc("GET /api/v1/presets", h.apiPresets)

	mux.HandleFunc("GET /ws", h.ws)

	return h.withRequestID(h.withAccessLog(h.withRateLimit(mux)))
}

func (h *Handler) currency(code string) models.Currency {
	if c, ok := models.LookupCurrency(code); ok {
		return c
	}
	return h.calc.DefaultCurrency()
}
