// websocket/manager.go
package websocket

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"go.uber.org/zap"
)

// Создание нового менеджера WebSocket-соединений
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run обслуживает регистрацию клиентов и рассылку до отмены контекста
func (manager *Manager) Run(ctx context.Context) {
	defer func() {
		for client := range manager.clients {
			manager.drop(client)
		}
		atomic.StoreInt64(&manager.count, 0)
		close(manager.done)
		manager.logger.Info("Менеджер WebSocket остановлен")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-manager.register:
			manager.clients[client] = struct{}{}
			atomic.StoreInt64(&manager.count, int64(len(manager.clients)))
			manager.logger.Debug("Клиент подключился", zap.Uint64("client", client.ID))

		case client := <-manager.unregister:
			if _, ok := manager.clients[client]; ok {
				manager.drop(client)
				atomic.StoreInt64(&manager.count, int64(len(manager.clients)))
				manager.logger.Debug("Клиент отключился", zap.Uint64("client", client.ID))
			}

		case message := <-manager.broadcast:
			manager.fanOut(message)
		}
	}
}

// fanOut отправляет сообщение всем подключенным клиентам.
// Клиент с переполненной очередью отключается.
func (manager *Manager) fanOut(message []byte) {
	for client := range manager.clients {
		select {
		case client.Send <- message:
		default:
			manager.drop(client)
			manager.logger.Warn("Очередь клиента переполнена, соединение закрыто", zap.Uint64("client", client.ID))
		}
	}
	atomic.StoreInt64(&manager.count, int64(len(manager.clients)))
}

// drop удаляет клиента из карты и сигнализирует его writePump завершиться
func (manager *Manager) drop(client *Client) {
	delete(manager.clients, client)
	close(client.quit)
}

// ClientCount число подключенных клиентов
func (manager *Manager) ClientCount() int {
	return int(atomic.LoadInt64(&manager.count))
}

// ScenariosChanged рассылает событие об изменении списка сценариев
func (manager *Manager) ScenariosChanged(count int) {
	data, err := json.Marshal(Message{Type: TypeScenariosChanged, Count: &count})
	if err != nil {
		manager.logger.Error("Ошибка кодирования события", zap.Error(err))
		return
	}

	select {
	case manager.broadcast <- data:
	case <-manager.done:
	default:
		manager.logger.Warn("Очередь рассылки переполнена, событие пропущено", zap.Int("count", count))
	}
}

// join регистрирует клиента; false, если менеджер уже остановлен
func (manager *Manager) join(client *Client) bool {
	select {
	case manager.register <- client:
		return true
	case <-manager.done:
		return false
	}
}

// leave снимает клиента с регистрации
func (manager *Manager) leave(client *Client) {
	select {
	case manager.unregister <- client:
	case <-manager.done:
	}
}
