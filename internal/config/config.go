package config

import (
	"errors"
	"fmt"
	"os"

	"mediadesk/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Backend    BackendConfig    `yaml:"backend"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
	Google     GoogleConfig     `yaml:"google"`
	Bot        BotConfig        `yaml:"bot"`
	Managers   []int64          `yaml:"managers"`
	Blacklist  []int64          `yaml:"blacklist"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

// BackendConfig describes the remote booking/review backend this front-end
// consumes. The base URL is the only required field.
type BackendConfig struct {
	BaseURL        string  `yaml:"base_url"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
	CacheTTL       int     `yaml:"cache_ttl_seconds"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
	HealthCheckPort   int  `yaml:"health_check_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path        string `yaml:"path"`
	JournalPath string `yaml:"journal_path"`
}

type GoogleConfig struct {
	GoogleCredentialsFile string `yaml:"credentials_file"`
	BookingSpreadSheetID  string `yaml:"bookings_spreadsheet_id"`
}

type BotConfig struct {
	PageSize          int `yaml:"page_size"`
	DebounceMillis    int `yaml:"debounce_millis"`
	CarouselChunk     int `yaml:"carousel_chunk"`
	CarouselInterval  int `yaml:"carousel_interval_seconds"`
	RateLimitMessages int `yaml:"rate_limit_messages"`
	RateLimitWindow   int `yaml:"rate_limit_window"`
}

func Load(configPath string) (*Config, error) {
	// .env не обязателен, но при наличии подхватываем
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		return errors.New("telegram bot token is required")
	}

	if c.Backend.BaseURL == "" {
		return errors.New("backend base url is required")
	}

	if c.Google.GoogleCredentialsFile != "" && c.Google.BookingSpreadSheetID == "" {
		return errors.New("google credentials configured without bookings spreadsheet id")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = 10
	}
	if c.Backend.RateLimitRPS == 0 {
		c.Backend.RateLimitRPS = 10
	}
	if c.Backend.RateLimitBurst == 0 {
		c.Backend.RateLimitBurst = 5
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Exports.JournalPath == "" {
		c.Exports.JournalPath = "data/journal.db"
	}

	// Bot defaults
	if c.Bot.PageSize == 0 {
		c.Bot.PageSize = models.DefaultBookingsPageSize
	}
	if c.Bot.DebounceMillis == 0 {
		c.Bot.DebounceMillis = models.DebounceWindowMillis
	}
	if c.Bot.CarouselChunk == 0 {
		c.Bot.CarouselChunk = models.CarouselChunkSize
	}
	if c.Bot.CarouselInterval == 0 {
		c.Bot.CarouselInterval = models.CarouselIntervalSeconds
	}
	if c.Bot.RateLimitMessages == 0 {
		c.Bot.RateLimitMessages = models.RateLimitMessages
	}
	if c.Bot.RateLimitWindow == 0 {
		c.Bot.RateLimitWindow = models.RateLimitWindow
	}
}
