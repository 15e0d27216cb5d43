// Package config загружает конфигурацию сервиса: значения по умолчанию,
// необязательный YAML-файл и переменные окружения (последние имеют приоритет).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Поддерживаемые хранилища сценариев
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendMemory = "memory"
)

// Config содержит конфигурацию сервиса
type Config struct {
	AppName string        `yaml:"app_name"`
	Port    int           `yaml:"port"`
	Debug   bool          `yaml:"debug"`
	Storage StorageConfig `yaml:"storage"`
	Model   ModelConfig   `yaml:"model"`
	Backup  BackupConfig  `yaml:"backup"`
}

// StorageConfig настройки хранилища сценариев
type StorageConfig struct {
	Backend    string      `yaml:"backend"`
	File       string      `yaml:"file"`
	SQLitePath string      `yaml:"sqlite_path"`
	MySQL      MySQLConfig `yaml:"mysql"`
}

// MySQLConfig содержит настройки подключения к MySQL
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// ModelConfig параметры обучения модели
type ModelConfig struct {
	Days         int     `yaml:"days"`
	Seed         int64   `yaml:"seed"`
	TestFraction float64 `yaml:"test_fraction"`
	TargetIndex  float64 `yaml:"target_index"`
}

// BackupConfig периодические резервные копии сценариев (Interval = 0 - выключено)
type BackupConfig struct {
	Interval time.Duration `yaml:"interval"`
	Dir      string        `yaml:"dir"`
	Keep     int           `yaml:"keep"`
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		AppName: "Išmanioji Hidratacija – Demo",
		Port:    5050,
		Debug:   false,
		Storage: StorageConfig{
			Backend:    BackendFile,
			File:       "data/scenarios.json",
			SQLitePath: "data/scenarios.db",
			MySQL: MySQLConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Database: "hydration",
			},
		},
		Model: ModelConfig{
			Days:         30,
			Seed:         42,
			TestFraction: 0.2,
			TargetIndex:  75,
		},
		Backup: BackupConfig{
			Interval: 0,
			Dir:      "data/backups",
			Keep:     7,
		},
	}
}

// Load загружает конфигурацию из YAML-файла (если path не пуст)
// и применяет переменные окружения
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("не удалось прочитать конфигурацию: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("не удалось разобрать конфигурацию %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides переопределяет значения переменными окружения
func (c *Config) applyEnvOverrides() error {
	var errs []error

	envInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: неверное число %q", key, v))
				return
			}
			*dst = n
		}
	}
	envString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	envInt("PORT", &c.Port)
	if v := os.Getenv("DEBUG"); v != "" {
		c.Debug = v == "1" || strings.EqualFold(v, "true")
	}
	envString("APP_NAME", &c.AppName)

	envString("SCENARIO_BACKEND", &c.Storage.Backend)
	envString("SCENARIO_FILE", &c.Storage.File)
	envString("SQLITE_PATH", &c.Storage.SQLitePath)
	envString("MYSQL_HOST", &c.Storage.MySQL.Host)
	envInt("MYSQL_PORT", &c.Storage.MySQL.Port)
	envString("MYSQL_USER", &c.Storage.MySQL.User)
	envString("MYSQL_PASSWORD", &c.Storage.MySQL.Password)
	envString("MYSQL_DATABASE", &c.Storage.MySQL.Database)

	if v := os.Getenv("BACKUP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("BACKUP_INTERVAL: %w", err))
		} else {
			c.Backup.Interval = d
		}
	}
	envString("BACKUP_DIR", &c.Backup.Dir)

	return errors.Join(errs...)
}

// Validate проверяет конфигурацию и возвращает все найденные ошибки сразу
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port вне диапазона 1..65535: %d", c.Port))
	}

	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.File == "" {
			errs = append(errs, errors.New("storage.file не задан"))
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("storage.sqlite_path не задан"))
		}
	case BackendMySQL:
		if c.Storage.MySQL.Host == "" || c.Storage.MySQL.Database == "" {
			errs = append(errs, errors.New("storage.mysql: host и database обязательны"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("неизвестное хранилище сценариев: %q", c.Storage.Backend))
	}

	if c.Model.Days < 2 {
		errs = append(errs, fmt.Errorf("model.days должно быть не меньше 2: %d", c.Model.Days))
	}
	if c.Model.TestFraction < 0 || c.Model.TestFraction >= 1 {
		errs = append(errs, fmt.Errorf("model.test_fraction вне диапазона [0, 1): %v", c.Model.TestFraction))
	}

	if c.Backup.Interval < 0 {
		errs = append(errs, fmt.Errorf("backup.interval отрицательный: %v", c.Backup.Interval))
	}
	if c.Backup.Interval > 0 {
		if c.Backup.Dir == "" {
			errs = append(errs, errors.New("backup.dir не задан"))
		}
		if c.Backup.Keep < 1 {
			errs = append(errs, fmt.Errorf("backup.keep должно быть не меньше 1: %d", c.Backup.Keep))
		}
	}

	return errors.Join(errs...)
}

// Addr адрес для http.Server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
