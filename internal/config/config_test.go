package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	assert.Error(t, err, "missing .env is reported")
	require.NotNil(t, cfg)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 10*time.Second, cfg.Printer.NetworkTimeout)
	assert.Equal(t, 30*time.Second, cfg.Printer.AttemptTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Printer.SettleDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.Printer.CopyDelay)
	assert.Equal(t, 3, cfg.Printer.FeedLines)
	assert.Equal(t, "lp", cfg.Printer.SpoolerCommand)
	assert.Equal(t, 58, cfg.Receipt.Width)
	assert.Equal(t, "₹", cfg.Receipt.Currency)
	assert.Equal(t, 2.5, cfg.Receipt.CGSTRate)
	assert.Equal(t, []string{"Thank you! Visit again"}, cfg.Receipt.Footer)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Environment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PRINTER_ATTEMPT_TIMEOUT", "5s")
	t.Setenv("RECEIPT_FOOTER", "Thanks | Come again")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("BUSINESS_NAME", "Spice Route")

	cfg, _ := Load()

	assert.Equal(t, 5*time.Second, cfg.Printer.AttemptTimeout)
	assert.Equal(t, []string{"Thanks", "Come again"}, cfg.Receipt.Footer)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "Spice Route", cfg.Business.Name)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", User: "u", Password: "p", Name: "n", Port: "5432", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", c.DSN())
}
