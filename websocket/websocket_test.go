package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lr "github.com/LilVoxy/smart_hydration/linear_regression"
	"github.com/LilVoxy/smart_hydration/service"
)

type stubPredictor struct{}

func (stubPredictor) Predict(payload map[string]any) (*service.Result, error) {
	if _, ok := payload["vandens_ml"].(string); ok {
		return nil, errors.New("vandens_ml: neteisingas skaičius")
	}
	return &service.Result{Prediction: lr.Prediction{HydrationIndex: 80, Status: lr.StatusGood}}, nil
}

type reply struct {
	Type   string          `json:"type"`
	OK     *bool           `json:"ok"`
	Result json.RawMessage `json:"rezultatas"`
	Error  string          `json:"klaida"`
	Count  *int            `json:"count"`
}

func startServer(t *testing.T) (*Manager, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	manager := NewManager(nil)
	go manager.Run(ctx)

	srv := httptest.NewServer(manager.HandlePredict(stubPredictor{}))
	t.Cleanup(srv.Close)
	return manager, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, frame string) reply {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
	return readReply(t, conn)
}

func readReply(t *testing.T, conn *websocket.Conn) reply {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var r reply
	require.NoError(t, conn.ReadJSON(&r))
	return r
}

func TestPredictionChannel(t *testing.T) {
	_, url := startServer(t)
	conn := dial(t, url)

	t.Run("prediction", func(t *testing.T) {
		r := roundTrip(t, conn, `{"vandens_ml": 2100}`)
		assert.Equal(t, TypePrediction, r.Type)
		require.NotNil(t, r.OK)
		assert.True(t, *r.OK)
		assert.Contains(t, string(r.Result), `"busena":"gera"`)
	})

	t.Run("ping", func(t *testing.T) {
		r := roundTrip(t, conn, `{"type":"ping"}`)
		assert.Equal(t, TypePong, r.Type)
		assert.Nil(t, r.OK)
	})

	t.Run("invalid input", func(t *testing.T) {
		r := roundTrip(t, conn, `{"vandens_ml": "daug"}`)
		assert.Equal(t, TypeError, r.Type)
		require.NotNil(t, r.OK)
		assert.False(t, *r.OK)
		assert.Contains(t, r.Error, "vandens_ml")
	})

	t.Run("not an object", func(t *testing.T) {
		r := roundTrip(t, conn, `[1, 2, 3]`)
		assert.Equal(t, TypeError, r.Type)
		assert.NotEmpty(t, r.Error)
	})

	t.Run("connection survives errors", func(t *testing.T) {
		r := roundTrip(t, conn, `{}`)
		assert.Equal(t, TypePrediction, r.Type)
	})
}

func TestScenariosChangedBroadcast(t *testing.T) {
	manager, url := startServer(t)
	first := dial(t, url)
	second := dial(t, url)

	require.Eventually(t, func() bool { return manager.ClientCount() == 2 },
		2*time.Second, 10*time.Millisecond)

	manager.ScenariosChanged(4)

	for _, conn := range []*websocket.Conn{first, second} {
		r := readReply(t, conn)
		assert.Equal(t, TypeScenariosChanged, r.Type)
		require.NotNil(t, r.Count)
		assert.Equal(t, 4, *r.Count)
	}
}

func TestClientDisconnect(t *testing.T) {
	manager, url := startServer(t)
	conn := dial(t, url)

	require.Eventually(t, func() bool { return manager.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return manager.ClientCount() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestStoppedManager(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	manager := NewManager(nil)
	stopped := make(chan struct{})
	go func() {
		manager.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	// После остановки рассылка не блокируется
	manager.ScenariosChanged(1)
	assert.Equal(t, 0, manager.ClientCount())
}
