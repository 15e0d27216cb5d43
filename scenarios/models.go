// Package scenarios хранит именованные наборы входных данных (сценарии).
//
// Хранилище описано интерфейсом Store. Основная реализация - JSONFileStore,
// которая целиком перезаписывает один JSON-файл при каждом изменении.
// SQLStore хранит сценарии в SQLite или MySQL, MemoryStore - в памяти процесса.
package scenarios

import (
	"context"
	"fmt"
	"maps"
	"strings"
)

// Payload входные данные сценария (произвольный JSON-объект)
type Payload map[string]any

// Scenario именованный набор входных данных
type Scenario struct {
	Name    string  `json:"name"`
	Payload Payload `json:"payload"`
}

// Store интерфейс хранилища сценариев
type Store interface {
	// List возвращает сценарии в порядке хранения
	List(ctx context.Context) ([]Scenario, error)

	// Upsert удаляет сценарий с тем же именем и добавляет новый в конец
	Upsert(ctx context.Context, name string, payload Payload) error

	// Delete удаляет сценарий с точно таким именем; отсутствие - не ошибка
	Delete(ctx context.Context, name string) error

	// Reset заменяет всё содержимое хранилища
	Reset(ctx context.Context, items []Scenario) error

	// SeedIfEmpty записывает встроенные сценарии, если хранилище пусто
	SeedIfEmpty(ctx context.Context) (bool, error)
}

// ValidationError неверные входные данные пользователя
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// errNameRequired возвращается при пустом имени сценария
func errNameRequired() error {
	return &ValidationError{Field: "name", Message: "name required"}
}

// CorruptFileError файл сценариев существует, но не разбирается как JSON
type CorruptFileError struct {
	Path string
	Err  error
}

func (e *CorruptFileError) Error() string {
	return fmt.Sprintf("файл сценариев повреждён: %s: %v", e.Path, e.Err)
}

func (e *CorruptFileError) Unwrap() error {
	return e.Err
}

// normalizeName обрезает пробелы и проверяет, что имя не пустое
func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errNameRequired()
	}
	return name, nil
}

// clonePayload поверхностная копия, пустой payload превращается в {}
func clonePayload(p Payload) Payload {
	if p == nil {
		return Payload{}
	}
	return maps.Clone(p)
}

// upsertInto удаляет сценарий name из items и добавляет новый в конец
func upsertInto(items []Scenario, name string, payload Payload) []Scenario {
	out := removeFrom(items, name)
	return append(out, Scenario{Name: name, Payload: clonePayload(payload)})
}

// dedupe оставляет последний сценарий для каждого имени
func dedupe(items []Scenario) []Scenario {
	out := make([]Scenario, 0, len(items))
	for _, it := range items {
		out = upsertInto(out, it.Name, it.Payload)
	}
	return out
}

// removeFrom возвращает items без сценариев с именем name
func removeFrom(items []Scenario, name string) []Scenario {
	out := make([]Scenario, 0, len(items)+1)
	for _, s := range items {
		if s.Name != name {
			out = append(out, s)
		}
	}
	return out
}

// Defaults встроенный набор сценариев
func Defaults() []Scenario {
	return []Scenario{
		{
			Name: "Puikiai pailsėjęs",
			Payload: Payload{
				"vandens_ml": 2300.0, "zingsniai": 9500.0, "sirdies_ritmas": 64.0,
				"stresas": 3.0, "miegas_val": 8.0, "temperatura_c": 21.0, "aktyvumas_min": 60.0,
			},
		},
		{
			Name: "Po intensyvios treniruotės",
			Payload: Payload{
				"vandens_ml": 2800.0, "zingsniai": 12000.0, "sirdies_ritmas": 82.0,
				"stresas": 6.0, "miegas_val": 6.5, "temperatura_c": 23.0, "aktyvumas_min": 90.0,
			},
		},
		{
			Name: "Darbo dienos pabaiga",
			Payload: Payload{
				"vandens_ml": 1600.0, "zingsniai": 4500.0, "sirdies_ritmas": 76.0,
				"stresas": 7.0, "miegas_val": 6.0, "temperatura_c": 24.0, "aktyvumas_min": 20.0,
			},
		},
	}
}
