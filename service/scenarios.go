package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/LilVoxy/smart_hydration/scenarios"
)

// ListScenarios никогда не возвращает ошибку: сбой хранилища логируется
// и превращается в пустой список
func (s *Service) ListScenarios(ctx context.Context) []scenarios.Scenario {
	items, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn("Не удалось получить сценарии", zap.Error(err))
		return []scenarios.Scenario{}
	}
	return items
}

// SaveScenario сохраняет сценарий (перезаписывая одноименный)
func (s *Service) SaveScenario(ctx context.Context, name string, payload scenarios.Payload) error {
	if err := s.store.Upsert(ctx, name, payload); err != nil {
		return err
	}
	s.logger.Info("Сценарий сохранен", zap.String("name", strings.TrimSpace(name)))
	s.notify(ctx)
	return nil
}

// DeleteScenario удаляет сценарий; отсутствие сценария не ошибка
func (s *Service) DeleteScenario(ctx context.Context, name string) error {
	if err := s.store.Delete(ctx, name); err != nil {
		return err
	}
	s.logger.Info("Сценарий удален", zap.String("name", name))
	s.notify(ctx)
	return nil
}

// Reseed безусловно заменяет сценарии встроенным набором
func (s *Service) Reseed(ctx context.Context) (int, error) {
	defaults := scenarios.Defaults()
	if err := s.store.Reset(ctx, defaults); err != nil {
		return 0, err
	}
	s.logger.Info("Сценарии сброшены к встроенному набору", zap.Int("count", len(defaults)))
	s.notify(ctx)
	return len(defaults), nil
}

// SeedIfEmpty записывает встроенные сценарии, если хранилище пусто
func (s *Service) SeedIfEmpty(ctx context.Context) error {
	seeded, err := s.store.SeedIfEmpty(ctx)
	if err != nil {
		return err
	}
	if seeded {
		s.logger.Info("Хранилище сценариев было пустым, записан встроенный набор")
	}
	return nil
}

// ExportScenarios возвращает сжатый архив всех сценариев
func (s *Service) ExportScenarios(ctx context.Context) ([]byte, error) {
	return scenarios.EncodeArchive(s.ListScenarios(ctx))
}

// ImportScenarios заменяет сценарии содержимым архива
func (s *Service) ImportScenarios(ctx context.Context, data []byte) (int, error) {
	items, err := scenarios.DecodeArchive(data)
	if err != nil {
		return 0, &scenarios.ValidationError{Field: "archive", Message: err.Error()}
	}

	for i := range items {
		name := strings.TrimSpace(items[i].Name)
		if name == "" {
			return 0, &scenarios.ValidationError{
				Field:   "name",
				Message: fmt.Sprintf("name required (įrašas %d)", i),
			}
		}
		items[i].Name = name
	}

	if err := s.store.Reset(ctx, items); err != nil {
		return 0, err
	}

	count := len(s.ListScenarios(ctx))
	s.logger.Info("Сценарии импортированы", zap.Int("count", count))
	s.notifyCount(count)
	return count, nil
}

func (s *Service) notify(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	s.notifyCount(len(s.ListScenarios(ctx)))
}

func (s *Service) notifyCount(count int) {
	if s.notifier != nil {
		s.notifier.ScenariosChanged(count)
	}
}
