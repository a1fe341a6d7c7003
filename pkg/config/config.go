// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config - главная структура конфигурации
type Config struct {
	App        AppConfig        `koanf:"app"`
	Log        LogConfig        `koanf:"log"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Tracing    TracingConfig    `koanf:"tracing"`
	Database   DatabaseConfig   `koanf:"database"`
	Cache      CacheConfig      `koanf:"cache"`
	Simulation SimulationConfig `koanf:"simulation"`
	Report     ReportConfig     `koanf:"report"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text, console
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// DatabaseConfig - настройки базы данных истории прогонов
type DatabaseConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// DSN возвращает строку подключения
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode,
	)
}

// CacheConfig - настройки кэша результатов
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // для in-memory
}

// Address возвращает адрес кэша
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SimulationConfig - параметры Монте-Карло оценки по умолчанию
type SimulationConfig struct {
	Trials             int     `koanf:"trials"`
	FaultProbability   float64 `koanf:"fault_probability"`
	MaxDelay           float64 `koanf:"max_delay"`
	PacketSize         int     `koanf:"packet_size"`
	Workers            int     `koanf:"workers"` // 0 = по числу CPU
	Seed               int64   `koanf:"seed"`    // 0 = от текущего времени
	ConfidenceLevel    float64 `koanf:"confidence_level"`
	NetworkSize        int     `koanf:"network_size"`
	EdgeCount          int     `koanf:"edge_count"`
	IntensityMin       int     `koanf:"intensity_min"`
	IntensityMax       int     `koanf:"intensity_max"`
	CapacityMultiplier float64 `koanf:"capacity_multiplier"`
	GeneratorSeed      int64   `koanf:"generator_seed"`
}

// ReportConfig - настройки отчётов
type ReportConfig struct {
	Format    string `koanf:"format"` // csv, json, markdown, excel, pdf
	OutputDir string `koanf:"output_dir"`
	Title     string `koanf:"title"`
	Author    string `koanf:"author"`
}

var validReportFormats = map[string]bool{
	"csv": true, "json": true, "markdown": true, "excel": true, "pdf": true,
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if c.Log.Format != "" && !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of: json, text, console, got %s", c.Log.Format))
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		errs = append(errs, fmt.Sprintf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port))
	}

	if c.Cache.Enabled && c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		errs = append(errs, fmt.Sprintf("cache.driver must be memory or redis, got %s", c.Cache.Driver))
	}

	s := c.Simulation
	if s.Trials <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.trials must be positive, got %d", s.Trials))
	}
	if s.FaultProbability < 0 || s.FaultProbability > 1 {
		errs = append(errs, fmt.Sprintf("simulation.fault_probability must be within [0, 1], got %g", s.FaultProbability))
	}
	if s.MaxDelay <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.max_delay must be positive, got %g", s.MaxDelay))
	}
	if s.PacketSize <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.packet_size must be positive, got %d", s.PacketSize))
	}
	if s.Workers < 0 {
		errs = append(errs, fmt.Sprintf("simulation.workers must be non-negative, got %d", s.Workers))
	}
	if s.ConfidenceLevel <= 0 || s.ConfidenceLevel >= 1 {
		errs = append(errs, fmt.Sprintf("simulation.confidence_level must be within (0, 1), got %g", s.ConfidenceLevel))
	}
	if s.NetworkSize < 2 {
		errs = append(errs, fmt.Sprintf("simulation.network_size must be at least 2, got %d", s.NetworkSize))
	}
	if s.EdgeCount < s.NetworkSize-1 || s.EdgeCount > s.NetworkSize*(s.NetworkSize-1)/2 {
		errs = append(errs, fmt.Sprintf("simulation.edge_count must be within [%d, %d], got %d",
			s.NetworkSize-1, s.NetworkSize*(s.NetworkSize-1)/2, s.EdgeCount))
	}
	if s.IntensityMin < 0 || s.IntensityMax < s.IntensityMin {
		errs = append(errs, fmt.Sprintf("simulation.intensity range [%d, %d] is invalid", s.IntensityMin, s.IntensityMax))
	}
	if s.CapacityMultiplier <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.capacity_multiplier must be positive, got %g", s.CapacityMultiplier))
	}

	if c.Report.Format != "" && !validReportFormats[c.Report.Format] {
		errs = append(errs, fmt.Sprintf("report.format must be one of: csv, json, markdown, excel, pdf, got %s", c.Report.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}
