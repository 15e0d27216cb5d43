// Package backup периодически сохраняет сжатые снимки сценариев на диск.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/LilVoxy/smart_hydration/config"
)

const (
	filePrefix = "scenarios-"
	fileSuffix = ".json.sz"
	timeLayout = "20060102-150405"
)

// Exporter отдает архив сценариев
type Exporter interface {
	ExportScenarios(ctx context.Context) ([]byte, error)
}

// Job задача резервного копирования
type Job struct {
	exporter Exporter
	config   config.BackupConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewJob создает задачу резервного копирования
func NewJob(exporter Exporter, cfg config.BackupConfig, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		exporter: exporter,
		config:   cfg,
		logger:   logger.Named("backup"),
		now:      time.Now,
	}
}

// Start запускает планировщик и блокируется до отмены контекста.
// При нулевом интервале возвращается сразу.
func (j *Job) Start(ctx context.Context) {
	if j.config.Interval <= 0 {
		j.logger.Debug("Резервное копирование выключено")
		return
	}

	scheduler := gocron.NewScheduler(time.UTC)

	j.logger.Info("Запуск планировщика резервного копирования",
		zap.Duration("interval", j.config.Interval),
		zap.String("dir", j.config.Dir))

	_, err := scheduler.Every(j.config.Interval).Do(func() {
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.Error("Ошибка резервного копирования", zap.Error(err))
		}
	})
	if err != nil {
		j.logger.Error("Ошибка при настройке планировщика", zap.Error(err))
		return
	}

	// Запускаем планировщик
	scheduler.StartAsync()

	// Ожидаем сигнал остановки из контекста
	<-ctx.Done()

	// Останавливаем планировщик
	scheduler.Stop()
	j.logger.Info("Планировщик резервного копирования остановлен")
}

// RunOnce записывает один снимок и удаляет лишние старые. Возвращает путь к файлу.
func (j *Job) RunOnce(ctx context.Context) (string, error) {
	data, err := j.exporter.ExportScenarios(ctx)
	if err != nil {
		return "", fmt.Errorf("экспорт сценариев: %w", err)
	}

	if err := os.MkdirAll(j.config.Dir, 0o755); err != nil {
		return "", fmt.Errorf("не удалось создать каталог резервных копий: %w", err)
	}

	name := filePrefix + j.now().UTC().Format(timeLayout) + fileSuffix
	path := filepath.Join(j.config.Dir, name)
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	j.logger.Info("Резервная копия сохранена", zap.String("path", path), zap.Int("bytes", len(data)))

	if err := j.prune(); err != nil {
		j.logger.Warn("Не удалось удалить старые резервные копии", zap.Error(err))
	}
	return path, nil
}

// List возвращает файлы резервных копий, от новых к старым
func (j *Job) List() ([]string, error) {
	entries, err := os.ReadDir(j.config.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		names = append(names, e.Name())
	}

	// Метка времени в имени сортируется лексикографически
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(j.config.Dir, n)
	}
	return paths, nil
}

// prune оставляет только config.Keep последних копий
func (j *Job) prune() error {
	if j.config.Keep < 1 {
		return nil
	}
	paths, err := j.List()
	if err != nil {
		return err
	}
	if len(paths) <= j.config.Keep {
		return nil
	}

	for _, p := range paths[j.config.Keep:] {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
		j.logger.Debug("Удалена старая резервная копия", zap.String("path", p))
	}
	return nil
}

// writeFile пишет через временный файл, чтобы не оставлять обрезанных копий
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".backup-*")
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи резервной копии: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ошибка записи резервной копии: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("ошибка записи резервной копии: %w", err)
	}
	return nil
}
