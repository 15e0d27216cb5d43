// Package service связывает обученную модель, правила советов и хранилище сценариев
// в один объект, который передается обработчикам HTTP и WebSocket.
package service

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/LilVoxy/smart_hydration/insights"
	lr "github.com/LilVoxy/smart_hydration/linear_regression"
	"github.com/LilVoxy/smart_hydration/scenarios"
)

// ModelName описание модели для /api/health
const ModelName = "LinearRegression + StandardScaler"

// Notifier получает уведомления об изменении сценариев
type Notifier interface {
	ScenariosChanged(count int)
}

// Options необязательные параметры сервиса
type Options struct {
	AppName  string
	Logger   *zap.Logger
	Notifier Notifier
}

// Service прикладной сервис гидратации
type Service struct {
	model    *lr.FittedModel
	stats    lr.DatasetStats
	store    scenarios.Store
	appName  string
	logger   *zap.Logger
	notifier Notifier
}

// Result полный ответ прогноза
type Result struct {
	lr.Prediction
	StressInsights insights.Insights `json:"stress_insights"`
}

// HealthReport ответ /api/health
type HealthReport struct {
	OK     bool    `json:"ok"`
	App    string  `json:"app"`
	Model  string  `json:"model"`
	R2Test float64 `json:"r2_test"`
}

// StatsReport ответ /api/stats
type StatsReport struct {
	lr.DatasetStats
	Metrics lr.Metrics `json:"metrikos"`
}

// PredictionError ошибка при обработке одного запроса прогноза
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return e.Err.Error()
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

// New создает сервис. Модель должна быть уже обучена.
func New(model *lr.FittedModel, stats lr.DatasetStats, store scenarios.Store, opts Options) (*Service, error) {
	if model == nil {
		return nil, errors.New("service: модель не задана")
	}
	if store == nil {
		return nil, errors.New("service: хранилище сценариев не задано")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Service{
		model:    model,
		stats:    stats,
		store:    store,
		appName:  opts.AppName,
		logger:   opts.Logger,
		notifier: opts.Notifier,
	}, nil
}

// Predict строит прогноз и советы для произвольного JSON-объекта
func (s *Service) Predict(payload map[string]any) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Паника при расчете прогноза", zap.Any("panic", r))
			res, err = nil, &PredictionError{Err: fmt.Errorf("vidinė klaida: %v", r)}
		}
	}()

	in, err := lr.ParseInput(payload)
	if err != nil {
		return nil, &PredictionError{Err: err}
	}

	p := s.model.Predict(in)
	if math.IsNaN(p.HydrationIndex) || math.IsInf(p.HydrationIndex, 0) {
		return nil, &PredictionError{Err: errors.New("prognozė nėra baigtinis skaičius")}
	}

	vitals := insights.Vitals{
		Stress:      in.Stress,
		HeartRate:   in.HeartRate,
		SleepHours:  in.SleepHours,
		ActivityMin: in.ActivityMin,
	}

	return &Result{
		Prediction:     p,
		StressInsights: insights.Derive(vitals),
	}, nil
}

// Health состояние сервиса и качество модели
func (s *Service) Health() HealthReport {
	return HealthReport{
		OK:     true,
		App:    s.appName,
		Model:  ModelName,
		R2Test: lr.RoundToThousandth(s.model.Metrics.R2Test),
	}
}

// Stats описательная статистика обучающего набора
func (s *Service) Stats() StatsReport {
	return StatsReport{
		DatasetStats: s.stats,
		Metrics:      s.model.Metrics,
	}
}
