package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Terminal  TerminalConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Printer   PrinterConfig
	Receipt   ReceiptConfig
	Business  BusinessConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

// DatabaseConfig selects the store for printer settings. The default is a
// local SQLite file; "postgres" uses the connection fields below.
type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

// TerminalConfig holds the bcrypt hash of the code POS terminals pair with.
type TerminalConfig struct {
	PairingCodeHash string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// PrinterConfig tunes the transports. Type, USBPath and Address describe a
// printer that is registered on first start when the registry is empty.
type PrinterConfig struct {
	Type             string
	USBPath          string
	Address          string
	NetworkTimeout   time.Duration
	AttemptTimeout   time.Duration
	SettleDelay      time.Duration
	LoadTimeout      time.Duration
	CopyDelay        time.Duration
	FeedLines        int
	AutoCut          bool
	SpoolerCommand   string
	DiscoveryTimeout time.Duration
	AnnounceMDNS     bool
}

type ReceiptConfig struct {
	Width    int
	Currency string
	CGSTRate float64
	SGSTRate float64
	Footer   []string
}

type BusinessConfig struct {
	Name      string
	Address   string
	Phone     string
	GSTNumber string
}

// Load reads .env and the environment. A missing .env file is not fatal; the
// error is returned alongside a usable config so the caller can log it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	readErr := v.ReadInConfig()

	// Set defaults
	v.SetDefault("APP_NAME", "receipt-print-api")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "./data/printers.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "receipts")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	v.SetDefault("JWT_EXPIRY_HOURS", 720)
	v.SetDefault("TERMINAL_PAIRING_CODE_HASH", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_REQUESTS", 60)
	v.SetDefault("RATE_LIMIT_DURATION", 60)
	v.SetDefault("PRINTER_TYPE", "none")
	v.SetDefault("PRINTER_USB_PATH", "")
	v.SetDefault("PRINTER_ADDRESS", "")
	v.SetDefault("PRINTER_NETWORK_TIMEOUT", "10s")
	v.SetDefault("PRINTER_ATTEMPT_TIMEOUT", "30s")
	v.SetDefault("PRINTER_SETTLE_DELAY", "1500ms")
	v.SetDefault("PRINTER_LOAD_TIMEOUT", "10s")
	v.SetDefault("PRINTER_COPY_DELAY", "500ms")
	v.SetDefault("PRINTER_FEED_LINES", 3)
	v.SetDefault("PRINTER_AUTO_CUT", true)
	v.SetDefault("PRINTER_SPOOLER_COMMAND", "lp")
	v.SetDefault("PRINTER_DISCOVERY_TIMEOUT", "3s")
	v.SetDefault("PRINTER_ANNOUNCE_MDNS", false)
	v.SetDefault("RECEIPT_WIDTH", 58)
	v.SetDefault("RECEIPT_CURRENCY", "₹")
	v.SetDefault("RECEIPT_CGST_RATE", 2.5)
	v.SetDefault("RECEIPT_SGST_RATE", 2.5)
	v.SetDefault("RECEIPT_FOOTER", "Thank you! Visit again")
	v.SetDefault("BUSINESS_NAME", "Restaurant")
	v.SetDefault("BUSINESS_ADDRESS", "")
	v.SetDefault("BUSINESS_PHONE", "")
	v.SetDefault("BUSINESS_GST_NUMBER", "")

	cfg := &Config{
		App: AppConfig{
			Name:  v.GetString("APP_NAME"),
			Env:   v.GetString("APP_ENV"),
			Port:  v.GetString("APP_PORT"),
			Debug: v.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Path:     v.GetString("DB_PATH"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
			Timezone: v.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(v.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		Terminal: TerminalConfig{
			PairingCodeHash: v.GetString("TERMINAL_PAIRING_CODE_HASH"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(v.GetString("CORS_ALLOWED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: v.GetInt("RATE_LIMIT_DURATION"),
		},
		Printer: PrinterConfig{
			Type:             strings.ToLower(v.GetString("PRINTER_TYPE")),
			USBPath:          v.GetString("PRINTER_USB_PATH"),
			Address:          v.GetString("PRINTER_ADDRESS"),
			NetworkTimeout:   v.GetDuration("PRINTER_NETWORK_TIMEOUT"),
			AttemptTimeout:   v.GetDuration("PRINTER_ATTEMPT_TIMEOUT"),
			SettleDelay:      v.GetDuration("PRINTER_SETTLE_DELAY"),
			LoadTimeout:      v.GetDuration("PRINTER_LOAD_TIMEOUT"),
			CopyDelay:        v.GetDuration("PRINTER_COPY_DELAY"),
			FeedLines:        v.GetInt("PRINTER_FEED_LINES"),
			AutoCut:          v.GetBool("PRINTER_AUTO_CUT"),
			SpoolerCommand:   v.GetString("PRINTER_SPOOLER_COMMAND"),
			DiscoveryTimeout: v.GetDuration("PRINTER_DISCOVERY_TIMEOUT"),
			AnnounceMDNS:     v.GetBool("PRINTER_ANNOUNCE_MDNS"),
		},
		Receipt: ReceiptConfig{
			Width:    v.GetInt("RECEIPT_WIDTH"),
			Currency: v.GetString("RECEIPT_CURRENCY"),
			CGSTRate: v.GetFloat64("RECEIPT_CGST_RATE"),
			SGSTRate: v.GetFloat64("RECEIPT_SGST_RATE"),
			Footer:   splitLines(v.GetString("RECEIPT_FOOTER")),
		},
		Business: BusinessConfig{
			Name:      v.GetString("BUSINESS_NAME"),
			Address:   v.GetString("BUSINESS_ADDRESS"),
			Phone:     v.GetString("BUSINESS_PHONE"),
			GSTNumber: v.GetString("BUSINESS_GST_NUMBER"),
		},
	}
	return cfg, readErr
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitLines splits a footer on "|" so several lines fit in one variable.
func splitLines(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "|") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
