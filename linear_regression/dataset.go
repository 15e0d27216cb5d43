package linear_regression

import (
	"math"
	"math/rand"
)

// GenerateDataset генерирует days синтетических записей.
// При одинаковом seed результат одинаков.
//
// Метка растёт с потреблением воды и сном и падает с шагами, пульсом,
// стрессом, температурой и активностью, плюс гауссовский шум (σ=2).
func GenerateDataset(days int, seed int64) []TrainingRecord {
	if days <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	records := make([]TrainingRecord, 0, days)

	for i := 0; i < days; i++ {
		r := TrainingRecord{
			WaterML:      math.Round(2000 + rng.NormFloat64()*400),
			Steps:        3000 + rng.Intn(10001),
			HeartRate:    math.Round(72 + rng.NormFloat64()*8),
			Stress:       float64(1 + rng.Intn(10)),
			SleepHours:   RoundToThousandth(7 + rng.NormFloat64()),
			TemperatureC: RoundToThousandth(22 + rng.NormFloat64()*4),
			ActivityMin:  float64(10 + rng.Intn(111)),
		}
		r.HydrationIndex = RoundToThousandth(syntheticIndex(r) + rng.NormFloat64()*2)
		records = append(records, r)
	}

	return records
}

// syntheticIndex детерминированная часть формулы метки
func syntheticIndex(r TrainingRecord) float64 {
	return 50 +
		0.012*(r.WaterML-2000) -
		0.0008*(float64(r.Steps)-8000) -
		0.25*(r.HeartRate-70) -
		1.5*(r.Stress-5) +
		2*(r.SleepHours-7) -
		0.6*(r.TemperatureC-22) -
		0.05*(r.ActivityMin-45)
}
