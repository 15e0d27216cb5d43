package linear_regression

import "math"

// FeatureStats описательная статистика одного признака
type FeatureStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"vidurkis"`
	Std  float64 `json:"std"`
}

// DatasetStats описательная статистика обучающего набора
type DatasetStats struct {
	Count    int                     `json:"irasu_skaicius"`
	Features map[string]FeatureStats `json:"pozymiai"`
	Label    FeatureStats            `json:"etikete"`
}

// Describe считает min/max/среднее/std по каждому признаку и по метке
func Describe(records []TrainingRecord) DatasetStats {
	stats := DatasetStats{
		Count:    len(records),
		Features: make(map[string]FeatureStats, NumFeatures),
	}

	for i, name := range FeatureNames {
		values := make([]float64, len(records))
		for j, r := range records {
			values[j] = r.Vector()[i]
		}
		stats.Features[name] = describeValues(values)
	}

	labels := make([]float64, len(records))
	for j, r := range records {
		labels[j] = r.HydrationIndex
	}
	stats.Label = describeValues(labels)

	return stats
}

func describeValues(values []float64) FeatureStats {
	if len(values) == 0 {
		return FeatureStats{}
	}

	s := FeatureStats{Min: values[0], Max: values[0]}
	sum := 0.0
	for _, v := range values {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
	}
	mean := sum / float64(len(values))

	sq := 0.0
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}

	s.Mean = RoundToThousandth(mean)
	s.Std = RoundToThousandth(math.Sqrt(sq / float64(len(values))))
	return s
}
