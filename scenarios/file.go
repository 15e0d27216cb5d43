package scenarios

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// JSONFileStore хранит сценарии в одном JSON-файле.
//
// Каждое изменение - полное чтение, изменение и перезапись файла.
// Блокировок нет: одновременные изменения могут потерять друг друга.
type JSONFileStore struct {
	path   string
	logger *zap.Logger
}

// NewJSONFileStore создает хранилище поверх файла path
func NewJSONFileStore(path string, logger *zap.Logger) *JSONFileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONFileStore{path: path, logger: logger}
}

// Path путь к файлу сценариев
func (s *JSONFileStore) Path() string {
	return s.path
}

// List читает файл. Отсутствующий или повреждённый файл означает пустой список.
func (s *JSONFileStore) List(ctx context.Context) ([]Scenario, error) {
	items, err := s.load()
	if err != nil {
		s.logReadError(err)
		return []Scenario{}, nil
	}
	return items, nil
}

// load читает файл и различает "файла нет" и "файл повреждён"
func (s *JSONFileStore) load() ([]Scenario, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &CorruptFileError{Path: s.path, Err: err}
	}

	// Повреждённая запись пропускается, остальные сохраняются
	items := make([]Scenario, 0, len(entries))
	for i, raw := range entries {
		var it Scenario
		if err := json.Unmarshal(raw, &it); err != nil {
			s.logger.Warn("Пропущена повреждённая запись файла сценариев",
				zap.String("path", s.path), zap.Int("index", i), zap.Error(err))
			continue
		}
		if it.Payload == nil {
			it.Payload = Payload{}
		}
		items = append(items, it)
	}
	return items, nil
}

func (s *JSONFileStore) logReadError(err error) {
	var corrupt *CorruptFileError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Debug("Файл сценариев отсутствует", zap.String("path", s.path))
	case errors.As(err, &corrupt):
		s.logger.Warn("Файл сценариев повреждён, считаем его пустым",
			zap.String("path", s.path), zap.Error(corrupt.Err))
	default:
		s.logger.Warn("Не удалось прочитать файл сценариев",
			zap.String("path", s.path), zap.Error(err))
	}
}

// Upsert удаляет сценарий с тем же именем и добавляет новый в конец
func (s *JSONFileStore) Upsert(ctx context.Context, name string, payload Payload) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}

	items, _ := s.List(ctx)
	return s.write(upsertInto(items, name, payload))
}

// Delete удаляет сценарий; файл перезаписывается в любом случае
func (s *JSONFileStore) Delete(ctx context.Context, name string) error {
	items, _ := s.List(ctx)
	return s.write(removeFrom(items, name))
}

// Reset перезаписывает файл набором items
func (s *JSONFileStore) Reset(ctx context.Context, items []Scenario) error {
	return s.write(dedupe(items))
}

// SeedIfEmpty записывает встроенные сценарии, если файла нет или он пуст
func (s *JSONFileStore) SeedIfEmpty(ctx context.Context) (bool, error) {
	items, _ := s.List(ctx)
	if len(items) > 0 {
		return false, nil
	}
	if err := s.Reset(ctx, Defaults()); err != nil {
		return false, err
	}
	return true, nil
}

// write сериализует items с отступами и целиком перезаписывает файл
func (s *JSONFileStore) write(items []Scenario) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("не удалось создать каталог данных: %w", err)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("ошибка сериализации сценариев: %w", err)
	}

	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("ошибка записи файла сценариев: %w", err)
	}

	s.logger.Debug("Файл сценариев перезаписан",
		zap.String("path", s.path), zap.Int("count", len(items)))
	return nil
}
