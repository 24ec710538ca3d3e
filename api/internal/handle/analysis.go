package handle

import (
	"errors"
	"net/http"
	"time"

	"github.com/jbh6357/VOYZ/api/internal/dashboard"
	"github.com/jbh6357/VOYZ/api/internal/stats"
)

func (h *Handle) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": h.now().Format(time.RFC3339),
		"service":   h.ServiceTitle,
		"version":   h.ServiceVersion,
	})
}

func (h *Handle) SampleData(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dashboard.Sample())
}

type predictSalesReq struct {
	Data      []float64 `json:"data"`
	ModelType string    `json:"model_type"`
}

func (h *Handle) PredictSales(w http.ResponseWriter, r *http.Request) {
	var req predictSalesReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.ModelType == "" {
		req.ModelType = "linear"
	}

	p, err := stats.Predict(req.ModelType, req.Data)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type predictModelResp struct {
	stats.Prediction
	ModelName string    `json:"model_name"`
	InputData []float64 `json:"input_data"`
	Status    string    `json:"status"`
}

type predictModelErr struct {
	ModelName       string   `json:"model_name"`
	Error           string   `json:"error"`
	SupportedModels []string `json:"supported_models"`
	Status          string   `json:"status"`
}

// PredictModel serves the backend's dynamic model route. An unknown model is reported
// in a 200 body so the caller can list alternatives.
func (h *Handle) PredictModel(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("model_name")

	var req struct {
		Data []float64 `json:"data"`
	}
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		h.fail(w, r, err)
		return
	}
	data := req.Data
	if len(data) == 0 {
		data = dashboard.Sample().SalesData
	}

	p, err := stats.Predict(name, data)
	var unknown *stats.UnknownModelError
	if errors.As(err, &unknown) {
		writeJSON(w, http.StatusOK, predictModelErr{
			ModelName:       name,
			Error:           unknown.Error(),
			SupportedModels: stats.SupportedModels(),
			Status:          "error",
		})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, predictModelResp{Prediction: p, ModelName: name, InputData: data, Status: "success"})
}

type trendReq struct {
	Data         []float64 `json:"data"`
	AnalysisType string    `json:"analysis_type"`
}

func (h *Handle) AnalyzeTrend(w http.ResponseWriter, r *http.Request) {
	var req trendReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := stats.Trend(req.Data)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type correlationReq struct {
	Data1 []float64 `json:"data1"`
	Data2 []float64 `json:"data2"`
}

func (h *Handle) AnalyzeCorrelation(w http.ResponseWriter, r *http.Request) {
	var req correlationReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Data1 == nil || req.Data2 == nil {
		h.fail(w, r, invalid("data1과 data2가 필요합니다"))
		return
	}
	res, err := stats.Correlation(req.Data1, req.Data2)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handle) AnalyzeSegmentation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Customers []stats.Customer `json:"customers"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if len(req.Customers) == 0 {
		h.fail(w, r, invalid("고객 데이터가 필요합니다"))
		return
	}
	res, err := stats.Segment(req.Customers)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handle) DashboardData(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Dashboard.Snapshot())
}
