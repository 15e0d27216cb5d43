// Package insights выводит уровень стресса и советы по фиксированным порогам.
package insights

// Level уровень стресса
type Level string

const (
	LevelLow    Level = "žemas"
	LevelMedium Level = "vidutinis"
	LevelHigh   Level = "aukštas"
)

// Советы в порядке их добавления
const (
	TipBreathing   = "3× po 1 min. gilaus kvėpavimo (4–4–6)."
	TipSleep       = "Šiąnakt nusitaikyk į ≥7 val. miego."
	TipWalk        = "Greitas 10–15 min. pasivaikščiojimas."
	TipScreenBreak = "Pertraukėlė be ekranų + stiklinė vandens."
)

// Vitals показатели, из которых выводятся советы
type Vitals struct {
	Stress      float64
	HeartRate   float64
	SleepHours  float64
	ActivityMin float64
}

// DefaultVitals значения для отсутствующих полей
func DefaultVitals() Vitals {
	return Vitals{
		Stress:      5,
		HeartRate:   70,
		SleepHours:  7,
		ActivityMin: 45,
	}
}

// Insights результат правил
type Insights struct {
	Level Level    `json:"lygis"`
	Tips  []string `json:"rekomendacijos"`
}

// Classify определяет уровень стресса:
// stress ≥ 8 или пульс ≥ 90 - высокий, stress ≥ 5 или пульс ≥ 80 - средний, иначе низкий.
func Classify(v Vitals) Level {
	switch {
	case v.Stress >= 8 || v.HeartRate >= 90:
		return LevelHigh
	case v.Stress >= 5 || v.HeartRate >= 80:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Derive возвращает уровень и все подходящие советы в фиксированном порядке
func Derive(v Vitals) Insights {
	level := Classify(v)
	tips := make([]string, 0, 4)

	if level != LevelLow {
		tips = append(tips, TipBreathing)
	}
	if v.SleepHours < 7 {
		tips = append(tips, TipSleep)
	}
	if v.ActivityMin < 30 {
		tips = append(tips, TipWalk)
	}
	if v.HeartRate > 85 && v.Stress >= 6 {
		tips = append(tips, TipScreenBreak)
	}

	return Insights{Level: level, Tips: tips}
}
