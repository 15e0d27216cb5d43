// serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LilVoxy/smart_hydration/backup"
	"github.com/LilVoxy/smart_hydration/routes"
	"github.com/LilVoxy/smart_hydration/websocket"
)

// Время на корректное завершение сервера
const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP и WebSocket сервер",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// Канал для сигналов завершения
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := setup(opts)
	if err != nil {
		return err
	}

	// Менеджер создается до сервиса: он получает уведомления об изменении сценариев
	wsManager := websocket.NewManager(logger.Named("websocket"))

	rt, err := build(ctx, cfg, logger, true, wsManager)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.svc.SeedIfEmpty(ctx); err != nil {
		logger.Warn("Не удалось записать встроенные сценарии", zap.Error(err))
	}

	var wg sync.WaitGroup

	// Запускаем менеджер WebSocket
	wg.Add(1)
	go func() {
		defer wg.Done()
		wsManager.Run(ctx)
	}()

	// Запускаем планировщик резервных копий
	wg.Add(1)
	go func() {
		defer wg.Done()
		backup.NewJob(rt.svc, rt.cfg.Backup, logger).Start(ctx)
	}()

	// Настраиваем сервер
	server := &http.Server{
		Addr:              rt.cfg.Addr(),
		Handler:           routes.NewRouter(rt.svc, wsManager, logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Сервер запущен", zap.String("addr", server.Addr), zap.String("app", rt.cfg.AppName))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Ожидаем сигнал завершения или ошибку сервера
	select {
	case <-ctx.Done():
		logger.Info("Получен сигнал завершения, закрываем соединения")
	case err := <-serverErr:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при остановке сервера", zap.Error(err))
	}

	stop()
	wg.Wait()
	logger.Info("Сервер остановлен")
	return nil
}
