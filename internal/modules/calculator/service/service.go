package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"trade_risk/internal/models"
	"trade_risk/internal/modules/config"
	health "trade_risk/internal/modules/health/service"
	metrics "trade_risk/internal/modules/metrics/service"
	"trade_risk/internal/riskcalc"
	"trade_risk/pkg/tracing"
)

// Settings: параметры калькулятора, общие для всех фронтов.
type Settings struct {
	DefaultCurrency string
	ExitPreset      string
	PresetsFile     string
	LotSize         int64
	RiskWarnPercent decimal.Decimal
	Matrix          riskcalc.MatrixOptions
}

func DefaultSettings() Settings {
	def := riskcalc.DefaultOptions()
	return Settings{
		DefaultCurrency: models.DefaultCurrency,
		ExitPreset:      models.DefaultExitPreset,
		LotSize:         def.LotSize,
		RiskWarnPercent: def.RiskWarnPercent,
		Matrix:          def.Matrix,
	}
}

// SettingsFromConfig переводит строковые десятичные поля конфига в decimal.
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	c := cfg.Calculator
	s := Settings{
		DefaultCurrency: c.DefaultCurrency,
		ExitPreset:      c.ExitPreset,
		PresetsFile:     c.PresetsFile,
		LotSize:         c.LotSize,
		Matrix:          riskcalc.MatrixOptions{Steps: c.MatrixSteps},
	}
	var err error
	if s.RiskWarnPercent, err = decimal.NewFromString(c.RiskWarnPct); err != nil {
		return s, fmt.Errorf("calculator.risk_warn_pct: %w", err)
	}
	if s.Matrix.Low, err = decimal.NewFromString(c.MatrixLow); err != nil {
		return s, fmt.Errorf("calculator.matrix_low: %w", err)
	}
	if s.Matrix.High, err = decimal.NewFromString(c.MatrixHigh); err != nil {
		return s, fmt.Errorf("calculator.matrix_high: %w", err)
	}
	return s, nil
}

// Service оборачивает riskcalc: выбор пресета, логи, метрики, трейсы.
// Кроме счётчиков состояния между запросами нет.
type Service struct {
	log      *zap.Logger
	tracer   opentracing.Tracer
	metrics  *metrics.Metrics
	state    *health.State
	settings Settings
	catalog  *Catalog
	currency models.Currency
	calcs    map[string]*riskcalc.Calculator
}

// NewService: metrics, state и tracer могут быть nil (CLI).
func NewService(
	s Settings,
	log *zap.Logger,
	tracer opentracing.Tracer,
	m *metrics.Metrics,
	state *health.State,
) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	currency, ok := models.LookupCurrency(s.DefaultCurrency)
	if !ok {
		return nil, fmt.Errorf("unknown currency %q", s.DefaultCurrency)
	}

	catalog, err := LoadCatalog(s.PresetsFile)
	if err != nil {
		return nil, err
	}
	if _, ok := catalog.Get(s.ExitPreset); !ok {
		return nil, fmt.Errorf("default exit preset %q is not defined", s.ExitPreset)
	}

	calcs := make(map[string]*riskcalc.Calculator, len(catalog.order))
	for _, p := range catalog.List() {
		calc, err := riskcalc.New(riskcalc.Options{
			ExitPolicy:      riskcalc.PolicyFromPreset(p),
			LotSize:         s.LotSize,
			RiskWarnPercent: s.RiskWarnPercent,
			Matrix:          s.Matrix,
		})
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		calcs[p.Name] = calc
	}

	return &Service{
		log:      log.Named("calculator"),
		tracer:   tracer,
		metrics:  m,
		state:    state,
		settings: s,
		catalog:  catalog,
		currency: currency,
		calcs:    calcs,
	}, nil
}

type Params struct {
	fx.In

	Config  *config.Config
	Log     *zap.Logger
	Tracer  opentracing.Tracer
	Metrics *metrics.Metrics
	State   *health.State
}

// New: fx-провайдер.
func New(p Params) (*Service, error) {
	s, err := SettingsFromConfig(p.Config)
	if err != nil {
		return nil, err
	}
	svc, err := NewService(s, p.Log, p.Tracer, p.Metrics, p.State)
	if err != nil {
		return nil, err
	}
	svc.log.Info("calculator ready",
		zap.String("preset", s.ExitPreset),
		zap.Int64("lot_size", s.LotSize),
		zap.Int("presets", len(svc.calcs)),
	)
	return svc, nil
}

func (s *Service) Settings() Settings { return s.settings }

func (s *Service) DefaultPreset() string { return s.settings.ExitPreset }

func (s *Service) DefaultCurrency() models.Currency { return s.currency }

func (s *Service) Currencies() []models.Currency { return models.Currencies }

func (s *Service) Presets() []models.ExitPreset { return s.catalog.List() }

// Policy resolves a preset name, "" meaning the configured default.
func (s *Service) Policy(name string) (riskcalc.ExitPolicy, error) {
	calc, _, err := s.calculator(name)
	if err != nil {
		return riskcalc.ExitPolicy{}, err
	}
	return calc.Options().ExitPolicy, nil
}

func (s *Service) calculator(name string) (*riskcalc.Calculator, string, error) {
	if name == "" {
		name = s.settings.ExitPreset
	}
	p, ok := s.catalog.Get(name)
	if !ok {
		return nil, name, riskcalc.InvalidField("exit_preset", fmt.Sprintf("unknown preset %q", name))
	}
	return s.calcs[p.Name], p.Name, nil
}

func (s *Service) Standard(ctx context.Context, in models.StandardInput, preset string) (*models.StandardResult, error) {
	span, ctx := tracing.StartSpan(ctx, s.tracer, "calculator.standard")
	defer span.Finish()
	start := time.Now()

	calc, name, err := s.calculator(preset)
	var res *models.StandardResult
	if err == nil {
		res, err = calc.Standard(in)
	}

	var warns []models.Warning
	if res != nil {
		warns = res.Warnings
	}
	s.observe(ctx, span, models.ModeStandard, name, start, warns, err)
	return res, err
}

func (s *Service) PositionSize(ctx context.Context, in models.PositionSizeInput, preset string) (*models.PositionSizeResult, error) {
	span, ctx := tracing.StartSpan(ctx, s.tracer, "calculator.position_size")
	defer span.Finish()
	start := time.Now()

	calc, name, err := s.calculator(preset)
	var res *models.PositionSizeResult
	if err == nil {
		res, err = calc.PositionSize(in)
	}

	var warns []models.Warning
	if res != nil {
		warns = res.Warnings
		span.SetTag("position_size", res.PositionSize)
	}
	s.observe(ctx, span, models.ModePositionSize, name, start, warns, err)
	return res, err
}

// Matrix: только таблица risk/reward, без расчёта размера.
func (s *Service) Matrix(ctx context.Context, entry, target, stop decimal.Decimal) ([]models.RiskRewardRow, models.Direction, error) {
	span, _ := tracing.StartSpan(ctx, s.tracer, "calculator.matrix")
	defer span.Finish()

	calc, _, err := s.calculator("")
	if err != nil {
		return nil, "", err
	}
	return calc.Matrix(entry, target, stop)
}

func (s *Service) observe(
	ctx context.Context,
	span opentracing.Span,
	mode models.Mode,
	preset string,
	start time.Time,
	warns []models.Warning,
	err error,
) {
	took := time.Since(start)
	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(err, riskcalc.ErrInvalidInput):
		outcome = metrics.OutcomeInvalid
	case err != nil:
		outcome = metrics.OutcomeError
	}

	span.SetTag("mode", string(mode))
	span.SetTag("preset", preset)
	span.SetTag("outcome", outcome)
	if outcome == metrics.OutcomeError {
		ext.Error.Set(span, true)
	}

	if s.metrics != nil {
		s.metrics.ObserveCalculation(mode, outcome, took, warns)
	}
	if s.state != nil && err == nil {
		s.state.TouchCalculation(time.Now())
	}

	fields := []zap.Field{
		zap.String("mode", string(mode)),
		zap.String("preset", preset),
		zap.String("outcome", outcome),
		zap.Duration("took", took),
		zap.Int("warnings", len(warns)),
	}
	if id := tracing.TraceID(ctx); id != "" {
		fields = append(fields, zap.String("trace_id", id))
	}

	switch outcome {
	case metrics.OutcomeOK:
		s.log.Debug("calculation done", fields...)
	case metrics.OutcomeInvalid:
		s.log.Info("calculation rejected", append(fields, zap.Error(err))...)
	default:
		s.log.Error("calculation failed", append(fields, zap.Error(err))...)
	}
}
