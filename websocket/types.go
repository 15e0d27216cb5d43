// websocket/types.go
package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/LilVoxy/smart_hydration/service"
)

// Типы сообщений канала
const (
	TypePing             = "ping"
	TypePong             = "pong"
	TypePrediction       = "prediction"
	TypeError            = "error"
	TypeScenariosChanged = "scenarios_changed"
)

// Структура сообщения, отправляемого клиенту
type Message struct {
	Type   string          `json:"type"`
	OK     *bool           `json:"ok,omitempty"`
	Result *service.Result `json:"rezultatas,omitempty"`
	Error  string          `json:"klaida,omitempty"`
	Count  *int            `json:"count,omitempty"`
}

// Predictor считает прогноз для входящего кадра
type Predictor interface {
	Predict(payload map[string]any) (*service.Result, error)
}

// Клиент WebSocket
type Client struct {
	ID     uint64
	Socket *websocket.Conn
	Send   chan []byte
	quit   chan struct{} // закрывается менеджером
}

// Менеджер WebSocket-соединений. Карта клиентов принадлежит горутине Run.
type Manager struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *zap.Logger
	nextID     uint64
	count      int64
}

// Конфигурация WebSocket-соединения
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Разрешаем подключения с любого источника
	},
}
