// websocket/connection_handler.go
package websocket

import (
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"
)

// HandlePredict обрабатывает WebSocket-соединения канала прогнозов
func (manager *Manager) HandlePredict(predictor Predictor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Устанавливаем WebSocket-соединение
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			manager.logger.Warn("Ошибка при установке WebSocket-соединения", zap.Error(err))
			return
		}

		// Создаем нового клиента
		client := &Client{
			ID:     atomic.AddUint64(&manager.nextID, 1),
			Socket: conn,
			Send:   make(chan []byte, sendBufferSize),
			quit:   make(chan struct{}),
		}

		if !manager.join(client) {
			manager.logger.Warn("Менеджер остановлен, соединение отклонено", zap.String("remote", r.RemoteAddr))
			conn.Close()
			return
		}
		manager.logger.Info("WebSocket-клиент подключился",
			zap.Uint64("client", client.ID),
			zap.String("remote", r.RemoteAddr))

		// Запускаем горутины для чтения и отправки сообщений
		go client.writePump(manager.logger)
		go client.readPump(manager, predictor)
	}
}
