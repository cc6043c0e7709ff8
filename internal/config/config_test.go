package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DISH_CONFIG", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8000", cfg.Addr)
	require.Equal(t, []int{2023, 2024, 2025}, cfg.HistoryYears)
	require.Equal(t, "epoch", cfg.HistoryMode)
	require.Zero(t, cfg.HistoryTTL)
	require.Equal(t, 300, cfg.SalesMin)
	require.Equal(t, 900, cfg.SalesMax)
	require.Equal(t, []string{"http://localhost:1337"}, cfg.CORSOrigins)
	require.Equal(t, 30*time.Second, cfg.StreamEvery)
	require.Equal(t, int64(10<<20), cfg.UploadMaxBytes)
	require.Equal(t, time.Hour, cfg.JWTTTL)
	require.False(t, cfg.AuthEnabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DISH_CONFIG", "")
	t.Setenv("HISTORY_YEARS", "2020, 2021,2022")
	t.Setenv("HISTORY_MODE", "per_request")
	t.Setenv("HISTORY_EPOCH_TTL", "24h")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("HISTORY_SEED", "99")
	t.Setenv("JWT_TTL", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, []int{2020, 2021, 2022}, cfg.HistoryYears)
	require.Equal(t, "per_request", cfg.HistoryMode)
	require.Equal(t, 24*time.Hour, cfg.HistoryTTL)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	require.Equal(t, uint64(99), cfg.HistorySeed)
	require.Equal(t, 15*time.Minute, cfg.JWTTTL)
	require.True(t, cfg.AuthEnabled())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dish.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_addr: ":9090"
history_years: [2019, 2020]
sales_min: 10
sales_max: 20
storage_dsn: history.db
forecast_target_year: 2030
`), 0o600))
	t.Setenv("DISH_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, []int{2019, 2020}, cfg.HistoryYears)
	require.Equal(t, 10, cfg.SalesMin)
	require.Equal(t, 20, cfg.SalesMax)
	require.Equal(t, "history.db", cfg.StorageDSN)
	require.Equal(t, 2030, cfg.TargetYear)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing file": {"DISH_CONFIG": filepath.Join(t.TempDir(), "nope.yaml")},
		"bad ttl":      {"DISH_CONFIG": "", "HISTORY_EPOCH_TTL": "soon"},
		"bad mode":     {"DISH_CONFIG": "", "HISTORY_MODE": "daily"},
		"bad years":    {"DISH_CONFIG": "", "HISTORY_YEARS": "2023,next"},
		"bad range":    {"DISH_CONFIG": "", "SALES_MIN": "900", "SALES_MAX": "300"},
		"zero stream":  {"DISH_CONFIG": "", "STREAM_INTERVAL": "0s"},
		"dup years":    {"DISH_CONFIG": "", "HISTORY_YEARS": "2024,2024"},
		"bad jwt ttl":  {"DISH_CONFIG": "", "JWT_TTL": "forever"},
		"zero jwt ttl": {"DISH_CONFIG": "", "JWT_TTL": "0s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
