// routes/api_routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/LilVoxy/smart_hydration/service"
	"github.com/LilVoxy/smart_hydration/websocket"
)

// SetupRoutes настраивает все маршруты API и WebSocket
func SetupRoutes(router *mux.Router, svc *service.Service, wsManager *websocket.Manager, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handlers{svc: svc, logger: logger}

	// Имена сценариев приходят в закодированном виде и декодируются в обработчике
	router.UseEncodedPath()

	router.Use(RequestIDMiddleware)
	router.Use(LoggingMiddleware(logger))
	router.Use(CORSMiddleware)

	// Сервис
	router.HandleFunc("/api/health", h.health).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/predict", h.predict).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/stats", h.stats).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/docs", h.docs).Methods("GET", "OPTIONS")

	// API сценариев
	router.HandleFunc("/api/scenarios", h.listScenarios).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/scenarios", h.saveScenario).Methods("POST")
	router.HandleFunc("/api/scenarios/seed", h.reseed).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/scenarios/export", h.exportScenarios).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/scenarios/import", h.importScenarios).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/scenarios/{name}", h.deleteScenario).Methods("DELETE", "OPTIONS")

	// WebSocket соединения
	router.HandleFunc("/ws/predict", wsManager.HandlePredict(svc)).Methods("GET")

	// Страница демо
	router.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods("GET")
	router.HandleFunc("/", h.index).Methods("GET")

	router.NotFoundHandler = RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{OK: false, Error: "nerasta"})
	}))
}

// NewRouter создает маршрутизатор со всеми маршрутами
func NewRouter(svc *service.Service, wsManager *websocket.Manager, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	SetupRoutes(router, svc, wsManager, logger)
	return router
}
