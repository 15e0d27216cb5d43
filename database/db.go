// database/db.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/LilVoxy/smart_hydration/config"
	"github.com/LilVoxy/smart_hydration/scenarios"
)

// CloseFunc закрывает ресурсы хранилища
type CloseFunc func() error

func noopClose() error { return nil }

// MySQLDSN формирует строку подключения к MySQL
func MySQLDSN(c config.MySQLConfig) string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// OpenStore открывает хранилище сценариев, выбранное в конфигурации
func OpenStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (scenarios.Store, CloseFunc, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case config.BackendFile, "":
		logger.Info("Хранилище сценариев: JSON-файл", zap.String("path", cfg.File))
		return scenarios.NewJSONFileStore(cfg.File, logger), noopClose, nil

	case config.BackendMemory:
		logger.Info("Хранилище сценариев: память процесса")
		return scenarios.NewMemoryStore(), noopClose, nil

	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("не удалось создать каталог для SQLite: %w", err)
			}
		}
		db, err := openDB(ctx, "sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		// SQLite не любит параллельных писателей
		db.SetMaxOpenConns(1)
		logger.Info("Хранилище сценариев: SQLite", zap.String("path", cfg.SQLitePath))
		return sqlStore(ctx, db, scenarios.DialectSQLite)

	case config.BackendMySQL:
		db, err := openDB(ctx, "mysql", MySQLDSN(cfg.MySQL))
		if err != nil {
			return nil, nil, err
		}
		// Устанавливаем параметры пула соединений
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		logger.Info("Хранилище сценариев: MySQL",
			zap.String("addr", net.JoinHostPort(cfg.MySQL.Host, strconv.Itoa(cfg.MySQL.Port))),
			zap.String("database", cfg.MySQL.Database))
		return sqlStore(ctx, db, scenarios.DialectMySQL)
	}

	return nil, nil, fmt.Errorf("неизвестное хранилище сценариев: %q", cfg.Backend)
}

// openDB устанавливает соединение и проверяет его
func openDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД (%s): %w", driver, err)
	}

	// Проверяем соединение
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка проверки соединения с БД (%s): %w", driver, err)
	}
	return db, nil
}

// sqlStore создает таблицу при необходимости и оборачивает соединение в SQLStore
func sqlStore(ctx context.Context, db *sql.DB, dialect scenarios.Dialect) (scenarios.Store, CloseFunc, error) {
	store := scenarios.NewSQLStore(db, dialect)
	if err := store.EnsureTableExists(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db.Close, nil
}
