package linear_regression

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Config конфигурация обучения модели
type Config struct {
	// Количество синтетических дней для обучения
	Days int
	// Зерно генератора синтетических данных
	Seed int64
	// Доля записей, откладываемых для оценки качества
	TestFraction float64
	// Целевой индекс гидратации для производных полей прогноза
	TargetIndex float64
	// Минимальное значение r² для признания модели значимой
	MinR2Threshold float64
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		Days:           30,
		Seed:           42,
		TestFraction:   0.2,
		TargetIndex:    DefaultTargetIndex,
		MinR2Threshold: 0.30, // 30% объяснённой вариации
	}
}

// Trainer генерирует данные и обучает модель один раз при старте процесса
type Trainer struct {
	logger *zap.Logger
	config Config
}

// NewTrainer создает новый тренер модели
func NewTrainer(logger *zap.Logger, config Config) *Trainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trainer{
		logger: logger,
		config: config,
	}
}

// Train выполняет основной процесс: генерация данных, обучение, оценка качества
func (t *Trainer) Train() (*FittedModel, DatasetStats, error) {
	startTime := time.Now()
	t.logger.Info("Запуск обучения модели гидратации",
		zap.Int("days", t.config.Days),
		zap.Int64("seed", t.config.Seed))

	// 1. Генерируем синтетические данные
	records := GenerateDataset(t.config.Days, t.config.Seed)
	t.logger.Debug("Сгенерированы синтетические данные", zap.Int("records", len(records)))

	// 2. Обучаем модель
	model, err := Fit(records, t.config.TestFraction)
	if err != nil {
		return nil, DatasetStats{}, fmt.Errorf("ошибка при обучении модели: %w", err)
	}
	model.TargetIndex = t.config.TargetIndex

	// 3. Оцениваем качество модели
	t.logger.Info("Модель обучена",
		zap.Float64("r2_train", model.Metrics.R2Train),
		zap.Float64("r2_test", model.Metrics.R2Test),
		zap.Float64("mae_test", model.Metrics.MAETest),
		zap.Int("train_size", model.Metrics.TrainSize),
		zap.Int("test_size", model.Metrics.TestSize),
		zap.Duration("elapsed", time.Since(startTime)))

	// Если модель недостаточно хороша, логируем предупреждение
	if model.Metrics.R2Test < t.config.MinR2Threshold {
		t.logger.Warn("Низкое качество модели, однако она будет использована",
			zap.Float64("r2_test", model.Metrics.R2Test),
			zap.Float64("threshold", t.config.MinR2Threshold))
	}

	return model, Describe(records), nil
}
