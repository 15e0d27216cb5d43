// routes/scenario_handlers.go
package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/LilVoxy/smart_hydration/scenarios"
)

// Максимальный размер импортируемого архива
const maxArchiveSize = 8 << 20

type scenariosResponse struct {
	Scenarios []scenarios.Scenario `json:"scenarios"`
}

type saveScenarioRequest struct {
	Name    string            `json:"name"`
	Payload scenarios.Payload `json:"payload"`
}

func (h *handlers) listScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenariosResponse{Scenarios: h.svc.ListScenarios(r.Context())})
}

func (h *handlers) saveScenario(w http.ResponseWriter, r *http.Request) {
	var req saveScenarioRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{OK: false, Error: decodeErrorMessage(err)})
		return
	}

	if err := h.svc.SaveScenario(r.Context(), req.Name, req.Payload); err != nil {
		h.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *handlers) deleteScenario(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(mux.Vars(r)["name"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{OK: false, Error: "invalid name"})
		return
	}

	if err := h.svc.DeleteScenario(r.Context(), name); err != nil {
		h.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *handlers) reseed(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.Reseed(r.Context())
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true, Count: &count})
}

func (h *handlers) exportScenarios(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportScenarios(r.Context())
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	filename := "scenarios-" + time.Now().UTC().Format("20060102-150405") + ".json.sz"
	w.Header().Set("Content-Type", scenarios.ArchiveContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *handlers) importScenarios(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxArchiveSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{OK: false, Error: "archive too large"})
		return
	}

	count, err := h.svc.ImportScenarios(r.Context(), data)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true, Count: &count})
}

// decodeErrorMessage понятное сообщение для тела с неверными типами полей
func decodeErrorMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		switch typeErr.Field {
		case "payload":
			return "payload must be an object"
		case "name":
			return "name must be a string"
		}
	}
	return "invalid JSON: " + err.Error()
}

// storeError ошибки проверки дают 400, остальные 500
func (h *handlers) storeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *scenarios.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{OK: false, Error: vErr.Message})
		return
	}

	h.logger.Error("Ошибка хранилища сценариев",
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("request_id", RequestID(r.Context())))
	writeJSON(w, http.StatusInternalServerError, errorResponse{OK: false, Error: err.Error()})
}
