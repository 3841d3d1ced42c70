package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит конфигурацию приложения
type Config struct {
	Environment string
	Pipeline    PipelineConfig
	Server      ServerConfig
	Export      ExportConfig
	Logging     LoggingConfig
	Monitoring  MonitoringConfig
}

// PipelineConfig параметры конвейера очистки треков
type PipelineConfig struct {
	// Полуширина квадратного окна вокруг аэропорта в градусах
	AirportBoxHalfWidthDeg float64
	// Порог малой высоты для привязки трека к аэропорту (м)
	LowAltitudeM float64
	// Порог скачка высоты между соседними записями (м)
	AltitudeJumpM float64
	// Множитель IQR для границ выбросов
	IQRMultiplier float64
	// Минимальное число точек трека для вычисления квартилей
	MinQuartilePoints int
	// Размер пула воркеров для параллельной обработки треков
	WorkerPoolSize int
}

// ServerConfig конфигурация HTTP сервера
type ServerConfig struct {
	Address      string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// ExportConfig конфигурация экспорта результатов
type ExportConfig struct {
	OutputDir   string
	KMLAnimated bool
}

// LoggingConfig конфигурация логирования
type LoggingConfig struct {
	Level  string
	Format string
}

// MonitoringConfig конфигурация мониторинга
type MonitoringConfig struct {
	MetricsEnabled bool
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Pipeline: PipelineConfig{
			AirportBoxHalfWidthDeg: getFloat("AIRPORT_BOX_HALF_WIDTH_DEG", 0.1),
			LowAltitudeM:           getFloat("LOW_ALTITUDE_M", 1000),
			AltitudeJumpM:          getFloat("ALTITUDE_JUMP_M", 200),
			IQRMultiplier:          getFloat("IQR_MULTIPLIER", 1.5),
			MinQuartilePoints:      getInt("MIN_QUARTILE_POINTS", 4),
			WorkerPoolSize:         getInt("WORKER_POOL_SIZE", 8),
		},
		Server: ServerConfig{
			Address:      getEnv("SERVER_ADDRESS", ":8090"),
			Port:         getEnv("SERVER_PORT", "8090"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Export: ExportConfig{
			OutputDir:   getEnv("EXPORT_OUTPUT_DIR", "out"),
			KMLAnimated: getBool("EXPORT_KML_ANIMATED", false),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Monitoring: MonitoringConfig{
			MetricsEnabled: getBool("METRICS_ENABLED", true),
		},
	}

	// Валидация
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Pipeline.AirportBoxHalfWidthDeg <= 0 {
		return fmt.Errorf("AIRPORT_BOX_HALF_WIDTH_DEG must be positive")
	}

	if c.Pipeline.LowAltitudeM <= 0 {
		return fmt.Errorf("LOW_ALTITUDE_M must be positive")
	}

	if c.Pipeline.AltitudeJumpM <= 0 {
		return fmt.Errorf("ALTITUDE_JUMP_M must be positive")
	}

	if c.Pipeline.IQRMultiplier <= 0 {
		return fmt.Errorf("IQR_MULTIPLIER must be positive")
	}

	if c.Pipeline.MinQuartilePoints < 2 {
		return fmt.Errorf("MIN_QUARTILE_POINTS must be at least 2")
	}

	if c.Pipeline.WorkerPoolSize <= 0 {
		return fmt.Errorf("WORKER_POOL_SIZE must be positive")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getInt возвращает целочисленное значение переменной окружения
func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getFloat возвращает вещественное значение переменной окружения
func getFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBool возвращает булево значение переменной окружения
func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDuration возвращает значение переменной окружения как time.Duration
func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
