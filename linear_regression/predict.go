package linear_regression

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultTargetIndex целевой индекс гидратации, если он не задан в конфигурации
const DefaultTargetIndex = 75.0

// Статусы гидратации относительно целевого индекса
const (
	StatusGood   = "gera"
	StatusMedium = "vidutinė"
	StatusLow    = "žema"
)

// ParseInput собирает Input из произвольного JSON-объекта.
// Отсутствующие ключи и null получают значения по умолчанию, неизвестные ключи игнорируются.
// Числа можно передавать строками ("2100"); всё остальное возвращает ошибку.
func ParseInput(payload map[string]any) (Input, error) {
	in := DefaultInput()

	for _, name := range FeatureNames {
		raw, ok := payload[name]
		if !ok || raw == nil {
			continue
		}
		value, err := toFloat(raw)
		if err != nil {
			return Input{}, fmt.Errorf("%s: %w", name, err)
		}
		in.set(name, value)
	}

	return in, nil
}

// toFloat приводит значение JSON к числу
func toFloat(raw any) (float64, error) {
	var v float64

	switch t := raw.(type) {
	case float64:
		v = t
	case float32:
		v = float64(t)
	case int:
		v = float64(t)
	case int64:
		v = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("neteisingas skaičius %q", t.String())
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("neteisingas skaičius %q", t)
		}
		v = f
	default:
		return 0, fmt.Errorf("reikšmė turi būti skaičius, gauta %T", raw)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("reikšmė turi būti baigtinis skaičius")
	}
	return v, nil
}

// WaterEffectPerML на сколько пунктов индекса меняется прогноз на каждый мл воды
func (m *FittedModel) WaterEffectPerML() float64 {
	return m.Coefficients[0] / m.Scales[0]
}

// Predict применяет модель к входным данным.
// Отрицательные значения для воды и шагов не проверяются и принимаются как есть.
func (m *FittedModel) Predict(in Input) Prediction {
	target := m.TargetIndex
	if target == 0 {
		target = DefaultTargetIndex
	}

	index := RoundToThousandth(m.raw(in.Vector()))
	deficit := RoundToThousandth(math.Max(0, target-index))

	extra := 0.0
	if w := m.WaterEffectPerML(); w > 0 && deficit > 0 {
		// Округляем до 10 мл
		extra = math.Round(deficit/w/10) * 10
	}

	status := StatusLow
	switch {
	case index >= target:
		status = StatusGood
	case index >= target-15:
		status = StatusMedium
	}

	return Prediction{
		HydrationIndex: index,
		TargetIndex:    target,
		IndexDeficit:   deficit,
		ExtraWaterML:   extra,
		Status:         status,
		Input:          in,
	}
}
