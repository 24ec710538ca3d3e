package handle

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes builds the full API mux wrapped in the request middleware.
func (h *Handle) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/data", h.SampleData)
	mux.HandleFunc("POST /api/predict/sales", h.PredictSales)
	mux.HandleFunc("POST /api/predict/{model_name}", h.PredictModel)
	mux.HandleFunc("POST /api/analysis/trend", h.AnalyzeTrend)
	mux.HandleFunc("POST /api/analysis/correlation", h.AnalyzeCorrelation)
	mux.HandleFunc("POST /api/analysis/segmentation", h.AnalyzeSegmentation)
	mux.HandleFunc("GET /api/dashboard", h.DashboardData)

	mux.HandleFunc("POST /api/match/specialDay", h.MatchSpecialDay)
	mux.HandleFunc("POST /api/specialday/categories", h.SpecialDayCategories)
	mux.HandleFunc("POST /api/specialday/content", h.SpecialDayContent)
	mux.HandleFunc("POST /api/specialday/suggest", h.SpecialDaySuggest)

	mux.HandleFunc("POST /api/menus/ocr", h.MenuOCR)
	mux.HandleFunc("POST /api/ocr/text", h.OCRText)

	mux.HandleFunc("POST /api/translate/{$}", h.TranslateTexts)
	mux.HandleFunc("POST /api/translate/reviews", h.TranslateReviews)
	mux.HandleFunc("POST /api/menus/translate", h.TranslateMenu)

	mux.HandleFunc("POST /api/reviews/keywords", h.ReviewKeywords)
	mux.HandleFunc("POST /api/llm/chat", h.Chat)

	return chain(mux, h.recoverer, h.observe(mux), requestID)
}

// chain applies middleware so the first one listed runs innermost.
func chain(next http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for _, mw := range mws {
		next = mw(next)
	}
	return next
}
