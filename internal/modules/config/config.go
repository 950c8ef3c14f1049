package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"trade_risk/internal/models"
	"trade_risk/pkg/logger"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDir         = "configs"
	defaultConfigFile = "values_local.yaml"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	envPrefix         = "RISKCALC"
)

// Config ...
type Config struct {
	Service struct {
		Name              string        `mapstructure:"name"`
		Host              string        `mapstructure:"host"`
		PublicPort        int           `mapstructure:"public_port"`
		AdminPort         int           `mapstructure:"admin_port"`
		ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	} `mapstructure:"service"`

	Log logger.Config `mapstructure:"log"`

	Telegram struct {
		Token string `mapstructure:"token"`
		// long-poll таймаут getUpdates, секунды
		PollTimeout int `mapstructure:"poll_timeout"`
	} `mapstructure:"telegram"`

	Tracing struct {
		Enabled bool   `mapstructure:"enabled"`
		Host    string `mapstructure:"host"`
		Port    int    `mapstructure:"port"`
	} `mapstructure:"tracing"`

	// Дефолты калькулятора. Десятичные значения храним строками,
	// чтобы не терять точность при разборе YAML.
	Calculator struct {
		DefaultCurrency string `mapstructure:"default_currency"`
		ExitPreset      string `mapstructure:"exit_preset"`
		PresetsFile     string `mapstructure:"presets_file"`
		LotSize         int64  `mapstructure:"lot_size"`
		RiskWarnPct     string `mapstructure:"risk_warn_pct"`
		MatrixSteps     int    `mapstructure:"matrix_steps"`
		MatrixLow       string `mapstructure:"matrix_low"`
		MatrixHigh      string `mapstructure:"matrix_high"`
	} `mapstructure:"calculator"`

	RateLimit struct {
		RPS   float64 `mapstructure:"rps"`
		Burst int     `mapstructure:"burst"`
	} `mapstructure:"rate_limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "trade-risk")
	v.SetDefault("service.host", "")
	v.SetDefault("service.public_port", 8080)
	v.SetDefault("service.admin_port", 8081)
	v.SetDefault("service.read_header_timeout", "5s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.encoding", "json")

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.poll_timeout", 30)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.host", "localhost")
	v.SetDefault("tracing.port", 6831)

	v.SetDefault("calculator.default_currency", models.DefaultCurrency)
	v.SetDefault("calculator.exit_preset", models.DefaultExitPreset)
	v.SetDefault("calculator.presets_file", "")
	v.SetDefault("calculator.lot_size", 1)
	v.SetDefault("calculator.risk_warn_pct", "2")
	v.SetDefault("calculator.matrix_steps", 5)
	v.SetDefault("calculator.matrix_low", "0.8")
	v.SetDefault("calculator.matrix_high", "1.2")

	v.SetDefault("rate_limit.rps", 10)
	v.SetDefault("rate_limit.burst", 20)
}

// NewConfig: fx-провайдер: файл берём из configs/$CONFIG_FILE.
func NewConfig() (*Config, error) {
	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = defaultConfigFile
	}
	return Load(filepath.Join(configDir, configFileName))
}

// Load читает конфиг: дефолты < файл < переменные окружения RISKCALC_*.
// Отсутствующий файл не ошибка: работаем на дефолтах.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if token := os.Getenv(tokenTelegramENV); token != "" {
		cfg.Telegram.Token = token
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Service.PublicPort <= 0 || c.Service.AdminPort <= 0 {
		return errors.New("service ports must be positive")
	}
	if c.Service.PublicPort == c.Service.AdminPort {
		return errors.Errorf("public and admin ports clash: %d", c.Service.PublicPort)
	}
	if _, ok := models.LookupCurrency(c.Calculator.DefaultCurrency); !ok {
		return errors.Errorf("unknown default currency %q", c.Calculator.DefaultCurrency)
	}
	if c.Calculator.LotSize < 1 {
		return errors.Errorf("calculator.lot_size must be >= 1, got %d", c.Calculator.LotSize)
	}
	if c.Calculator.MatrixSteps < 2 {
		return errors.Errorf("calculator.matrix_steps must be >= 2, got %d", c.Calculator.MatrixSteps)
	}
	for key, raw := range map[string]string{
		"calculator.risk_warn_pct": c.Calculator.RiskWarnPct,
		"calculator.matrix_low":    c.Calculator.MatrixLow,
		"calculator.matrix_high":   c.Calculator.MatrixHigh,
	} {
		if _, err := decimal.NewFromString(raw); err != nil {
			return errors.Wrapf(err, "%s", key)
		}
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate_limit values must be >= 0")
	}
	return nil
}

// PublicAddr / AdminAddr: адреса для net.Listen.
func (c *Config) PublicAddr() string { return addr(c.Service.Host, c.Service.PublicPort) }
func (c *Config) AdminAddr() string  { return addr(c.Service.Host, c.Service.AdminPort) }

func addr(host string, port int) string {
	return host + ":" + strconv.Itoa(port)
}
