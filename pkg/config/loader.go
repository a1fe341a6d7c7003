package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "NETREL_"
	configEnvVar = "CONFIG_PATH"
)

// Loader загружает конфигурацию из разных источников
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
	usedFile    string
}

// NewLoader создаёт новый загрузчик конфигурации
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"config.yaml",
			"config/config.yaml",
			"/etc/netreliability/config.yaml",
		},
		envPrefix: envPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoaderOption - опция для конфигурации загрузчика
type LoaderOption func(*Loader)

// WithConfigPaths устанавливает пути поиска конфигурации
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.configPaths = paths
	}
}

// WithEnvPrefix устанавливает префикс переменных окружения
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// Load загружает конфигурацию с приоритетом:
// 1. Defaults (самый низкий)
// 2. Config file (yaml), необязателен
// 3. Environment variables (самый высокий)
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := l.loadConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// UsedFile возвращает путь к прочитанному файлу конфигурации или пустую строку
func (l *Loader) UsedFile() string {
	return l.usedFile
}

// Defaults возвращает значения по умолчанию.
// Параметры сети соответствуют эталонному эксперименту: 20 узлов, 28 каналов,
// пакет 120 единиц, миллион испытаний.
func Defaults() map[string]any {
	return map[string]any{
		// App
		"app.name":        "reliability",
		"app.version":     "1.0.0",
		"app.environment": "development",

		// Log
		"log.level":       "info",
		"log.format":      "console",
		"log.output":      "stderr",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		// Metrics
		"metrics.enabled":   false,
		"metrics.port":      9090,
		"metrics.namespace": "netreliability",
		"metrics.subsystem": "",

		// Tracing
		"tracing.enabled":      false,
		"tracing.endpoint":     "localhost:4317",
		"tracing.service_name": "reliability",
		"tracing.sample_rate":  0.1,

		// Database
		"database.enabled":            false,
		"database.host":               "localhost",
		"database.port":               5432,
		"database.database":           "netreliability",
		"database.username":           "postgres",
		"database.password":           "",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     10,
		"database.max_idle_conns":     2,
		"database.conn_max_lifetime":  5 * time.Minute,
		"database.conn_max_idle_time": 5 * time.Minute,
		"database.auto_migrate":       true,

		// Cache
		"cache.enabled":     true,
		"cache.driver":      "memory",
		"cache.host":        "localhost",
		"cache.port":        6379,
		"cache.db":          0,
		"cache.default_ttl": time.Hour,
		"cache.max_entries": 1000,

		// Simulation
		"simulation.trials":              1_000_000,
		"simulation.fault_probability":   0.05,
		"simulation.max_delay":           0.1,
		"simulation.packet_size":         120,
		"simulation.workers":             0,
		"simulation.seed":                0,
		"simulation.confidence_level":    0.95,
		"simulation.network_size":        20,
		"simulation.edge_count":          28,
		"simulation.intensity_min":       1,
		"simulation.intensity_max":       10,
		"simulation.capacity_multiplier": 1.5,
		"simulation.generator_seed":      42,

		// Report
		"report.format":     "markdown",
		"report.output_dir": "reports",
		"report.title":      "",
		"report.author":     "",
	}
}

func (l *Loader) loadDefaults() error {
	return l.k.Load(confmap.Provider(Defaults(), "."), nil)
}

// loadConfigFile загружает конфигурацию из файла.
// Явно указанный через CONFIG_PATH файл обязан существовать.
func (l *Loader) loadConfigFile() error {
	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("%s=%s: %w", configEnvVar, configPath, err)
		}
		l.usedFile = configPath
		return l.k.Load(file.Provider(configPath), yaml.Parser())
	}

	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			l.usedFile = absPath
			return l.k.Load(file.Provider(absPath), yaml.Parser())
		}
	}

	return nil
}

// loadEnv загружает конфигурацию из переменных окружения.
// Ключи вида NETREL_SIMULATION_FAULT_PROBABILITY сопоставляются секции по первому
// сегменту, остаток имени становится полем как есть.
func (l *Loader) loadEnv() error {
	return l.k.Load(env.ProviderWithValue(l.envPrefix, ".", func(envKey string, value string) (string, interface{}) {
		key := strings.ToLower(strings.TrimPrefix(envKey, l.envPrefix))

		section, field, ok := strings.Cut(key, "_")
		if !ok || !knownSections[section] {
			return "", nil
		}
		return section + "." + field, value
	}), nil)
}

var knownSections = map[string]bool{
	"app":        true,
	"log":        true,
	"metrics":    true,
	"tracing":    true,
	"database":   true,
	"cache":      true,
	"simulation": true,
	"report":     true,
}

// MustLoad загружает конфигурацию или паникует
func MustLoad(opts ...LoaderOption) *Config {
	cfg, err := NewLoader(opts...).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load - удобная функция для загрузки с дефолтными настройками
func Load() (*Config, error) {
	return NewLoader().Load()
}
