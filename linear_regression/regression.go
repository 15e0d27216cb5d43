package linear_regression

import (
	"fmt"
	"math"
)

// Порог вырожденности для ведущего элемента при исключении Гаусса
// (относительно наибольшего диагонального элемента)
const singularTolerance = 1e-10

// RoundToThousandth округляет число до тысячных (3 знака после запятой)
func RoundToThousandth(value float64) float64 {
	return math.Round(value*1000) / 1000
}

// Fit обучает линейную регрессию со стандартизацией признаков.
// Последняя доля testFraction записей откладывается для оценки качества;
// если отложить нечего, метрики считаются по обучающей выборке.
func Fit(records []TrainingRecord, testFraction float64) (*FittedModel, error) {
	n := len(records)
	if n < 2 {
		return nil, &ModelFitError{
			Reason:  fmt.Sprintf("требуется минимум 2 записи, получено: %d", n),
			Records: n,
		}
	}

	testSize := 0
	if testFraction > 0 && testFraction < 1 {
		testSize = int(float64(n) * testFraction)
	}
	if n-testSize < 2 {
		testSize = 0
	}

	train := records[:n-testSize]
	test := records[n-testSize:]

	model := &FittedModel{}
	model.Means, model.Scales = standardization(train)

	// Нормальные уравнения (Zᵀ Z) β = Zᵀ y, где Z = [1 | стандартизованные X]
	const dim = NumFeatures + 1
	var a [dim][dim]float64
	var b [dim]float64

	for _, r := range train {
		z := model.design(r.Vector())
		for i := 0; i < dim; i++ {
			b[i] += z[i] * r.HydrationIndex
			for j := 0; j < dim; j++ {
				a[i][j] += z[i] * z[j]
			}
		}
	}

	beta, err := solve(a, b)
	if err != nil {
		return nil, &ModelFitError{Reason: err.Error(), Records: n}
	}

	model.Intercept = beta[0]
	copy(model.Coefficients[:], beta[1:])

	trainR2, _ := model.evaluate(train)
	model.Metrics.TrainSize = len(train)
	model.Metrics.TestSize = len(test)
	model.Metrics.R2Train = RoundToThousandth(trainR2)

	if len(test) == 0 {
		test = train
	}
	testR2, testMAE := model.evaluate(test)
	model.Metrics.R2Test = RoundToThousandth(testR2)
	model.Metrics.MAETest = RoundToThousandth(testMAE)

	return model, nil
}

// standardization считает среднее и стандартное отклонение (генеральное)
// каждого признака. Для постоянного признака масштаб равен 1.
func standardization(records []TrainingRecord) (means, scales [NumFeatures]float64) {
	n := float64(len(records))

	for _, r := range records {
		v := r.Vector()
		for i := range v {
			means[i] += v[i]
		}
	}
	for i := range means {
		means[i] /= n
	}

	for _, r := range records {
		v := r.Vector()
		for i := range v {
			d := v[i] - means[i]
			scales[i] += d * d
		}
	}
	for i := range scales {
		scales[i] = math.Sqrt(scales[i] / n)
		if scales[i] < 1e-12 {
			scales[i] = 1
		}
	}

	return means, scales
}

// design возвращает строку матрицы плана: единица для сдвига и стандартизованные признаки
func (m *FittedModel) design(x [NumFeatures]float64) [NumFeatures + 1]float64 {
	var z [NumFeatures + 1]float64
	z[0] = 1
	for i := range x {
		z[i+1] = (x[i] - m.Means[i]) / m.Scales[i]
	}
	return z
}

// raw применяет модель к вектору признаков без округления
func (m *FittedModel) raw(x [NumFeatures]float64) float64 {
	z := m.design(x)
	y := m.Intercept
	for i, c := range m.Coefficients {
		y += c * z[i+1]
	}
	return y
}

// evaluate считает коэффициент детерминации и среднюю абсолютную ошибку
func (m *FittedModel) evaluate(records []TrainingRecord) (r2, mae float64) {
	if len(records) == 0 {
		return 0, 0
	}

	mean := 0.0
	for _, r := range records {
		mean += r.HydrationIndex
	}
	mean /= float64(len(records))

	ssRes, ssTot := 0.0, 0.0
	for _, r := range records {
		d := r.HydrationIndex - m.raw(r.Vector())
		ssRes += d * d
		mae += math.Abs(d)
		t := r.HydrationIndex - mean
		ssTot += t * t
	}
	mae /= float64(len(records))

	switch {
	case ssTot > 1e-12:
		r2 = 1 - ssRes/ssTot
	case ssRes <= 1e-12:
		r2 = 1 // все метки одинаковы и предсказаны точно
	default:
		r2 = 0
	}

	return r2, mae
}

// solve решает систему методом Гаусса с выбором ведущего элемента по столбцу
func solve(a [NumFeatures + 1][NumFeatures + 1]float64, b [NumFeatures + 1]float64) ([NumFeatures + 1]float64, error) {
	const dim = NumFeatures + 1
	var x [dim]float64

	maxDiag := 0.0
	for i := 0; i < dim; i++ {
		maxDiag = math.Max(maxDiag, math.Abs(a[i][i]))
	}
	if maxDiag == 0 {
		return x, fmt.Errorf("матрица признаков нулевая")
	}

	for col := 0; col < dim; col++ {
		pivot := col
		for row := col + 1; row < dim; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < singularTolerance*maxDiag {
			return x, fmt.Errorf("матрица признаков вырождена (столбец %d)", col)
		}

		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < dim; row++ {
			f := a[row][col] / a[col][col]
			for k := col; k < dim; k++ {
				a[row][k] -= f * a[col][k]
			}
			b[row] -= f * b[col]
		}
	}

	for row := dim - 1; row >= 0; row-- {
		s := b[row]
		for k := row + 1; k < dim; k++ {
			s -= a[row][k] * x[k]
		}
		x[row] = s / a[row][row]
	}

	return x, nil
}
