package scenarios

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Dialect диалект SQL, влияющий только на схему таблицы
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

// SQLStore реализация Store поверх database/sql (SQLite или MySQL).
// Каждое изменение выполняется в одной транзакции.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore создает хранилище сценариев для открытого соединения
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{
		db:      db,
		dialect: dialect,
	}
}

// createTableQuery схема таблицы сценариев. Имя сравнивается побайтно:
// в MySQL нужна двоичная колляция, иначе "Stresas" и "stresas" совпадут.
func createTableQuery(dialect Dialect) string {
	nameColumn := "name VARCHAR(191) NOT NULL PRIMARY KEY"
	if dialect == DialectMySQL {
		nameColumn = "name VARCHAR(191) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL PRIMARY KEY"
	}

	return `
	CREATE TABLE IF NOT EXISTS scenarios (
		` + nameColumn + `,
		position BIGINT NOT NULL,
		payload TEXT NOT NULL
	);`
}

// EnsureTableExists проверяет наличие таблицы и создает ее при необходимости
func (s *SQLStore) EnsureTableExists(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableQuery(s.dialect)); err != nil {
		return fmt.Errorf("не удалось создать таблицу scenarios: %w", err)
	}
	return nil
}

// List получает сценарии в порядке добавления
func (s *SQLStore) List(ctx context.Context) ([]Scenario, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, payload FROM scenarios ORDER BY position;`)
	if err != nil {
		return nil, fmt.Errorf("ошибка при выполнении запроса: %w", err)
	}
	defer rows.Close()

	items := []Scenario{}
	for rows.Next() {
		var name, raw string
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("ошибка при чтении данных: %w", err)
		}

		payload := Payload{}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, fmt.Errorf("повреждён payload сценария %q: %w", name, err)
		}
		items = append(items, Scenario{Name: name, Payload: payload})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по результатам: %w", err)
	}

	return items, nil
}

// Upsert удаляет сценарий с тем же именем и вставляет новый с наибольшей позицией
func (s *SQLStore) Upsert(ctx context.Context, name string, payload Payload) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(clonePayload(payload))
	if err != nil {
		return fmt.Errorf("ошибка сериализации payload: %w", err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM scenarios WHERE name = ?;`, name); err != nil {
			return fmt.Errorf("не удалось удалить старый сценарий: %w", err)
		}

		var next int64
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) + 1 FROM scenarios;`).Scan(&next); err != nil {
			return fmt.Errorf("не удалось определить позицию: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scenarios (name, position, payload) VALUES (?, ?, ?);`,
			name, next, string(raw),
		); err != nil {
			return fmt.Errorf("не удалось вставить сценарий: %w", err)
		}
		return nil
	})
}

// Delete удаляет сценарий по имени
func (s *SQLStore) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE name = ?;`, name); err != nil {
		return fmt.Errorf("ошибка при удалении сценария: %w", err)
	}
	return nil
}

// Reset заменяет содержимое таблицы в одной транзакции
func (s *SQLStore) Reset(ctx context.Context, items []Scenario) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return resetTx(ctx, tx, items)
	})
}

// SeedIfEmpty записывает встроенные сценарии, если таблица пуста
func (s *SQLStore) SeedIfEmpty(ctx context.Context) (bool, error) {
	seeded := false
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM scenarios;`).Scan(&count); err != nil {
			return fmt.Errorf("не удалось посчитать сценарии: %w", err)
		}
		if count > 0 {
			return nil
		}
		seeded = true
		return resetTx(ctx, tx, Defaults())
	})
	if err != nil {
		return false, err
	}
	return seeded, nil
}

func resetTx(ctx context.Context, tx *sql.Tx, items []Scenario) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM scenarios;`); err != nil {
		return fmt.Errorf("не удалось очистить таблицу: %w", err)
	}

	// Подготавливаем запрос
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO scenarios (name, position, payload) VALUES (?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("не удалось подготовить запрос: %w", err)
	}
	defer stmt.Close()

	// Последний сценарий с повторяющимся именем побеждает, как и при Upsert
	for i, it := range dedupe(items) {
		raw, err := json.Marshal(it.Payload)
		if err != nil {
			return fmt.Errorf("ошибка сериализации payload: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, it.Name, i+1, string(raw)); err != nil {
			return fmt.Errorf("не удалось выполнить запрос: %w", err)
		}
	}
	return nil
}

// inTx выполняет fn в транзакции и откатывает ее при ошибке
func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	// Фиксируем транзакцию
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("не удалось зафиксировать транзакцию: %w", err)
	}
	return nil
}
