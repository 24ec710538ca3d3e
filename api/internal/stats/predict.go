package stats

import "fmt"

// Prediction is the result of one forecasting model.
type Prediction struct {
	Prediction   float64   `json:"prediction"`
	Trend        string    `json:"trend"`
	Confidence   float64   `json:"confidence"`
	ModelType    string    `json:"model_type"`
	Coefficients []float64 `json:"coefficients,omitempty"`
}

// UnknownModelError carries the rejected name so callers can echo it.
type UnknownModelError struct{ Name string }

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("지원하지 않는 모델명: %s", e.Name)
}

type model func(data []float64) (Prediction, error)

var models = map[string]model{
	"test":    predictTest,
	"linear":  predictLinear,
	"average": predictAverage,
}

// SupportedModels lists model names in a stable order.
func SupportedModels() []string {
	return []string{"test", "linear", "average"}
}

// Predict runs the named model over data.
func Predict(name string, data []float64) (Prediction, error) {
	m, ok := models[name]
	if !ok {
		return Prediction{}, &UnknownModelError{Name: name}
	}
	if len(data) < 2 {
		return Prediction{}, ErrNotEnoughData
	}
	return m(data)
}

func trendAgainstMean(data []float64, mean float64) string {
	if data[len(data)-1] > mean {
		return TrendUp
	}
	return TrendDown
}

func predictTest(data []float64) (Prediction, error) {
	m := Mean(data)
	return Prediction{Prediction: m, Trend: trendAgainstMean(data, m), Confidence: 0.75, ModelType: "test"}, nil
}

func predictAverage(data []float64) (Prediction, error) {
	m := Mean(data)
	return Prediction{Prediction: m, Trend: trendAgainstMean(data, m), Confidence: 0.70, ModelType: "average"}, nil
}

func predictLinear(data []float64) (Prediction, error) {
	slope, intercept, err := LinearFit(data)
	if err != nil {
		return Prediction{}, err
	}
	trend := TrendDown
	if slope > 0 {
		trend = TrendUp
	}
	return Prediction{
		Prediction:   slope*float64(len(data)) + intercept,
		Trend:        trend,
		Confidence:   0.85,
		ModelType:    "linear",
		Coefficients: []float64{slope, intercept},
	}, nil
}

