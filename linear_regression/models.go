package linear_regression

import "fmt"

// Имена признаков в том порядке, в котором их видит модель.
// Они же используются как ключи JSON во входных данных API.
const (
	FeatureWater       = "vandens_ml"
	FeatureSteps       = "zingsniai"
	FeatureHeartRate   = "sirdies_ritmas"
	FeatureStress      = "stresas"
	FeatureSleep       = "miegas_val"
	FeatureTemperature = "temperatura_c"
	FeatureActivity    = "aktyvumas_min"
)

// NumFeatures количество входных признаков модели
const NumFeatures = 7

// FeatureNames упорядоченный список признаков
var FeatureNames = [NumFeatures]string{
	FeatureWater,
	FeatureSteps,
	FeatureHeartRate,
	FeatureStress,
	FeatureSleep,
	FeatureTemperature,
	FeatureActivity,
}

// TrainingRecord одна синтетическая запись (один "день") для обучения
type TrainingRecord struct {
	WaterML        float64 `json:"vandens_ml"`
	Steps          int     `json:"zingsniai"`
	HeartRate      float64 `json:"sirdies_ritmas"`
	Stress         float64 `json:"stresas"`
	SleepHours     float64 `json:"miegas_val"`
	TemperatureC   float64 `json:"temperatura_c"`
	ActivityMin    float64 `json:"aktyvumas_min"`
	HydrationIndex float64 `json:"hidratacijos_indeksas"` // Целевая метка
}

// Vector возвращает признаки записи в порядке FeatureNames
func (r TrainingRecord) Vector() [NumFeatures]float64 {
	return [NumFeatures]float64{
		r.WaterML,
		float64(r.Steps),
		r.HeartRate,
		r.Stress,
		r.SleepHours,
		r.TemperatureC,
		r.ActivityMin,
	}
}

// Input входные данные для прогноза. Отсутствующие поля заполняются значениями по умолчанию.
type Input struct {
	WaterML      float64 `json:"vandens_ml"`
	Steps        float64 `json:"zingsniai"`
	HeartRate    float64 `json:"sirdies_ritmas"`
	Stress       float64 `json:"stresas"`
	SleepHours   float64 `json:"miegas_val"`
	TemperatureC float64 `json:"temperatura_c"`
	ActivityMin  float64 `json:"aktyvumas_min"`
}

// DefaultInput значения по умолчанию (совпадают с формой на главной странице)
func DefaultInput() Input {
	return Input{
		WaterML:      2000,
		Steps:        8000,
		HeartRate:    70,
		Stress:       5,
		SleepHours:   7,
		TemperatureC: 22,
		ActivityMin:  45,
	}
}

// Vector возвращает входные данные в порядке FeatureNames
func (in Input) Vector() [NumFeatures]float64 {
	return [NumFeatures]float64{
		in.WaterML,
		in.Steps,
		in.HeartRate,
		in.Stress,
		in.SleepHours,
		in.TemperatureC,
		in.ActivityMin,
	}
}

// set присваивает значение признаку по его имени
func (in *Input) set(name string, value float64) bool {
	switch name {
	case FeatureWater:
		in.WaterML = value
	case FeatureSteps:
		in.Steps = value
	case FeatureHeartRate:
		in.HeartRate = value
	case FeatureStress:
		in.Stress = value
	case FeatureSleep:
		in.SleepHours = value
	case FeatureTemperature:
		in.TemperatureC = value
	case FeatureActivity:
		in.ActivityMin = value
	default:
		return false
	}
	return true
}

// Metrics метрики качества модели
type Metrics struct {
	R2Train   float64 `json:"r2_train"`
	R2Test    float64 `json:"r2_test"`
	MAETest   float64 `json:"mae_test"`
	TrainSize int     `json:"train_size"`
	TestSize  int     `json:"test_size"`
}

// FittedModel обученная модель. После Fit не изменяется, поэтому
// безопасна для одновременного чтения из нескольких горутин.
type FittedModel struct {
	Means        [NumFeatures]float64
	Scales       [NumFeatures]float64
	Coefficients [NumFeatures]float64 // Коэффициенты в стандартизованном пространстве
	Intercept    float64
	Metrics      Metrics
	TargetIndex  float64
}

// Prediction результат применения модели к входным данным
type Prediction struct {
	HydrationIndex float64 `json:"hidratacijos_indeksas"`
	TargetIndex    float64 `json:"tikslinis_indeksas"`
	IndexDeficit   float64 `json:"indekso_trukumas"`
	ExtraWaterML   float64 `json:"rekomenduojama_papildomai_ml"`
	Status         string  `json:"busena"`
	Input          Input   `json:"ivestis"`
}

// ModelFitError ошибка обучения: слишком мало данных или вырожденная матрица признаков
type ModelFitError struct {
	Reason  string
	Records int
}

func (e *ModelFitError) Error() string {
	return fmt.Sprintf("не удалось обучить модель (%d записей): %s", e.Records, e.Reason)
}
