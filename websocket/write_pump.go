// websocket/write_pump.go
package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// writePump отвечает за отправку сообщений клиенту
func (c *Client) writePump(logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()

		// Безопасно закрываем соединение
		c.Socket.Close()
		logger.Debug("Завершение writePump", zap.Uint64("client", c.ID))
	}()

	for {
		select {
		case <-c.quit:
			c.Socket.SetWriteDeadline(time.Now().Add(writeWait))
			c.Socket.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return

		case message := <-c.Send:
			c.Socket.SetWriteDeadline(time.Now().Add(writeWait))

			// Каждое сообщение уходит отдельным кадром
			if err := c.Socket.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Отправляем накопившиеся сообщения отдельными WriteMessage вызовами
			n := len(c.Send)
			for i := 0; i < n; i++ {
				if err := c.Socket.WriteMessage(websocket.TextMessage, <-c.Send); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.Socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
