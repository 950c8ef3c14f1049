package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Service.PublicPort)
	assert.Equal(t, 8081, cfg.Service.AdminPort)
	assert.Equal(t, 5*time.Second, cfg.Service.ReadHeaderTimeout)
	assert.Equal(t, "USD", cfg.Calculator.DefaultCurrency)
	assert.Equal(t, "thirds", cfg.Calculator.ExitPreset)
	assert.Equal(t, int64(1), cfg.Calculator.LotSize)
	assert.Equal(t, "2", cfg.Calculator.RiskWarnPct)
	assert.Equal(t, 5, cfg.Calculator.MatrixSteps)
	assert.Equal(t, ":8080", cfg.PublicAddr())
	assert.Equal(t, ":8081", cfg.AdminAddr())
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
service:
  host: 127.0.0.1
  public_port: 9000
calculator:
  default_currency: sek
  lot_size: 3
  matrix_low: 0.5
telegram:
  token: from-file
`)
	t.Setenv("RISKCALC_SERVICE_ADMIN_PORT", "9100")
	t.Setenv("RISKCALC_CALCULATOR_EXIT_PRESET", "front")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.PublicAddr())
	assert.Equal(t, 9100, cfg.Service.AdminPort)
	assert.Equal(t, "sek", cfg.Calculator.DefaultCurrency)
	assert.Equal(t, int64(3), cfg.Calculator.LotSize)
	assert.Equal(t, "0.5", cfg.Calculator.MatrixLow)
	assert.Equal(t, "front", cfg.Calculator.ExitPreset)
	assert.Equal(t, "from-file", cfg.Telegram.Token)
}

func TestLoad_TelegramTokenEnvWins(t *testing.T) {
	path := writeFile(t, "telegram:\n  token: from-file\n")
	t.Setenv(tokenTelegramENV, "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"currency":    "calculator:\n  default_currency: XYZ\n",
		"lot":         "calculator:\n  lot_size: 0\n",
		"steps":       "calculator:\n  matrix_steps: 1\n",
		"decimal":     "calculator:\n  risk_warn_pct: abc\n",
		"ports clash": "service:\n  public_port: 8081\n",
		"rate":        "rate_limit:\n  rps: -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_BrokenYAML(t *testing.T) {
	_, err := Load(writeFile(t, "service: [\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
