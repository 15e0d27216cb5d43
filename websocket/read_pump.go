// websocket/read_pump.go
package websocket

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// readPump читает кадры клиента и отвечает прогнозами
func (c *Client) readPump(manager *Manager, predictor Predictor) {
	logger := manager.logger.With(zap.Uint64("client", c.ID))
	defer func() {
		// Обработка паники при разборе кадра
		if r := recover(); r != nil {
			logger.Error("Паника при чтении сообщений клиента", zap.Any("panic", r))
		}

		// Отправляем сигнал отключения
		manager.leave(c)

		// Безопасно закрываем соединение
		c.Socket.Close()
		logger.Debug("Завершение readPump")
	}()

	// Устанавливаем параметры подключения
	c.Socket.SetReadLimit(maxMessageSize)
	c.Socket.SetReadDeadline(time.Now().Add(pongWait))
	c.Socket.SetPongHandler(func(string) error {
		c.Socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Соединение закрыто с ошибкой", zap.Error(err))
			}
			return
		}

		// Любой входящий кадр продлевает соединение
		c.Socket.SetReadDeadline(time.Now().Add(pongWait))

		if !c.enqueue(handleFrame(message, predictor)) {
			logger.Warn("Очередь клиента переполнена, ответ пропущен")
		}
	}
}

// handleFrame превращает входящий кадр в ответ клиенту
func handleFrame(frame []byte, predictor Predictor) Message {
	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(frame), &payload); err != nil {
		return errorMessage(errors.New("kadras turi būti JSON objektas"))
	}

	if kind, _ := payload["type"].(string); kind == TypePing {
		return Message{Type: TypePong}
	}

	result, err := predictor.Predict(payload)
	if err != nil {
		return errorMessage(err)
	}

	ok := true
	return Message{Type: TypePrediction, OK: &ok, Result: result}
}

func errorMessage(err error) Message {
	ok := false
	return Message{Type: TypeError, OK: &ok, Error: err.Error()}
}

// enqueue ставит сообщение в очередь отправки; false, если очередь полна
// или клиент уже отключен
func (c *Client) enqueue(msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		return false
	}

	select {
	case <-c.quit:
		return false
	default:
	}

	select {
	case c.Send <- data:
		return true
	case <-c.quit:
		return false
	default:
		return false
	}
}
