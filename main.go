// main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LilVoxy/smart_hydration/config"
	"github.com/LilVoxy/smart_hydration/database"
	lr "github.com/LilVoxy/smart_hydration/linear_regression"
	"github.com/LilVoxy/smart_hydration/scenarios"
	"github.com/LilVoxy/smart_hydration/service"
	"github.com/LilVoxy/smart_hydration/utils"
)

// Глобальные флаги командной строки
type options struct {
	configPath string
	debug      bool
}

// runtime собранные зависимости одной команды
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	svc    *service.Service
	close  func()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "hydration",
		Short: "Демо-сервис прогноза гидратации",
		Long: `hydration обучает линейную регрессию на синтетических данных при старте
и отдает прогноз индекса гидратации, советы по стрессу и сценарии
через HTTP, WebSocket и командную строку.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Без подкоманды запускаем сервер
			return runServe(cmd.Context(), opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "путь к YAML-файлу конфигурации")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "подробное журналирование")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newPredictCmd(opts))
	rootCmd.AddCommand(newScenariosCmd(opts))
	rootCmd.AddCommand(newStatsCmd(opts))

	return rootCmd
}

// loadConfig читает конфигурацию и применяет флаг --debug
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация: %w", err)
	}
	return cfg, nil
}

// setup читает конфигурацию и создает логгер
func setup(opts *options) (*config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось создать логгер: %w", err)
	}
	return cfg, logger, nil
}

// bootstrap обучает модель и собирает сервис. При withStore=false
// используется хранилище в памяти, чтобы не трогать данные на диске.
func bootstrap(ctx context.Context, opts *options, withStore bool) (*runtime, error) {
	cfg, logger, err := setup(opts)
	if err != nil {
		return nil, err
	}
	return build(ctx, cfg, logger, withStore, nil)
}

// build собирает сервис для уже загруженной конфигурации
func build(ctx context.Context, cfg *config.Config, logger *zap.Logger, withStore bool, notifier service.Notifier) (*runtime, error) {
	trainCfg := lr.DefaultConfig()
	trainCfg.Days = cfg.Model.Days
	trainCfg.Seed = cfg.Model.Seed
	trainCfg.TestFraction = cfg.Model.TestFraction
	trainCfg.TargetIndex = cfg.Model.TargetIndex

	model, stats, err := lr.NewTrainer(logger, trainCfg).Train()
	if err != nil {
		logger.Sync()
		return nil, err
	}

	var (
		store     scenarios.Store = scenarios.NewMemoryStore()
		closeFunc database.CloseFunc
	)
	if withStore {
		store, closeFunc, err = database.OpenStore(ctx, cfg.Storage, logger)
		if err != nil {
			logger.Sync()
			return nil, err
		}
	}

	svc, err := service.New(model, stats, store, service.Options{
		AppName:  cfg.AppName,
		Logger:   logger,
		Notifier: notifier,
	})
	if err != nil {
		if closeFunc != nil {
			closeFunc()
		}
		logger.Sync()
		return nil, err
	}

	return &runtime{
		cfg:    cfg,
		logger: logger,
		svc:    svc,
		close: func() {
			if closeFunc != nil {
				if err := closeFunc(); err != nil {
					logger.Warn("Ошибка закрытия хранилища", zap.Error(err))
				}
			}
			logger.Sync()
		},
	}, nil
}
