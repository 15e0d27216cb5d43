// routes/handlers.go
package routes

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	lr "github.com/LilVoxy/smart_hydration/linear_regression"
	"github.com/LilVoxy/smart_hydration/service"
)

// Максимальный размер тела запроса
const maxBodySize = 1 << 20

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type handlers struct {
	svc    *service.Service
	logger *zap.Logger
}

// predictResponse ответ /api/predict
type predictResponse struct {
	OK     bool            `json:"ok"`
	Result *service.Result `json:"rezultatas,omitempty"`
	Error  string          `json:"klaida,omitempty"`
}

// errorResponse ответ с ошибкой для сценариев и служебных маршрутов
type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type okResponse struct {
	OK    bool `json:"ok"`
	Count *int `json:"count,omitempty"`
}

// writeJSON кодирует ответ, не экранируя не-ASCII символы
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		http.Error(w, `{"ok":false,"error":"encoding"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Health())
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats())
}

func (h *handlers) predict(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeObject(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, predictResponse{OK: false, Error: err.Error()})
		return
	}

	result, err := h.svc.Predict(payload)
	if err != nil {
		h.logger.Debug("Некорректный запрос прогноза",
			zap.Error(err),
			zap.String("request_id", RequestID(r.Context())))
		writeJSON(w, http.StatusBadRequest, predictResponse{OK: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{OK: true, Result: result})
}

// decodeObject читает тело как JSON-объект. Пустое тело и null дают пустой объект.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, errors.New("nepavyko perskaityti užklausos")
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return map[string]any{}, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.New("užklausa turi būti JSON objektas")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

// docs перечень маршрутов
func (h *handlers) docs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"endpoints": map[string]string{
			"GET /":                        "Žiniatinklio forma ir demo",
			"GET /api/health":              "Sveikatos patikra",
			"POST /api/predict":            "Prognozė (JSON įvestys)",
			"GET /api/stats":               "Aprašomoji statistika",
			"GET /api/scenarios":           "Gauti scenarijus",
			"POST /api/scenarios":          "Išsaugoti scenarijų {name, payload}",
			"DELETE /api/scenarios/<name>": "Ištrinti scenarijų",
			"POST /api/scenarios/seed":     "Perrašyti į numatytuosius scenarijus",
			"GET /api/scenarios/export":    "Atsisiųsti scenarijų archyvą (snappy)",
			"POST /api/scenarios/import":   "Įkelti scenarijų archyvą (snappy)",
			"GET /ws/predict":              "Realiojo laiko prognozės per WebSocket",
		},
	})
}

// formField поле формы на демо-странице
type formField struct {
	Name  string
	Label string
	Value string
	Step  string
}

var fieldLabels = map[string][2]string{
	lr.FeatureWater:       {"Vanduo (ml)", "50"},
	lr.FeatureSteps:       {"Žingsniai", "100"},
	lr.FeatureHeartRate:   {"Širdies ritmas (bpm)", "1"},
	lr.FeatureStress:      {"Stresas (1–10)", "1"},
	lr.FeatureSleep:       {"Miegas (val.)", "0.1"},
	lr.FeatureTemperature: {"Temperatūra (°C)", "0.1"},
	lr.FeatureActivity:    {"Aktyvumas (min)", "5"},
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	defaults := lr.DefaultInput().Vector()
	fields := make([]formField, 0, lr.NumFeatures)
	for i, name := range lr.FeatureNames {
		meta := fieldLabels[name]
		fields = append(fields, formField{
			Name:  name,
			Label: meta[0],
			Value: strconv.FormatFloat(defaults[i], 'f', -1, 64),
			Step:  meta[1],
		})
	}

	var buf bytes.Buffer
	data := struct {
		AppName string
		Fields  []formField
	}{AppName: h.svc.Health().App, Fields: fields}
	if err := indexTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("Ошибка отрисовки страницы", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
