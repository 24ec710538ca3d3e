// Package dashboard produces the demo data shown on the analytics screens.
package dashboard

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

type SampleData struct {
	SalesData     []float64 `json:"sales_data"`
	Dates         []string  `json:"dates"`
	Categories    []string  `json:"categories"`
	CategorySales []float64 `json:"category_sales"`
}

// Sample returns a fresh copy of the fixed sample set.
func Sample() SampleData {
	return SampleData{
		SalesData:     []float64{100, 150, 200, 180, 220, 250, 280, 300},
		Dates:         []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05", "2024-06", "2024-07", "2024-08"},
		Categories:    []string{"전자제품", "의류", "식품", "가구"},
		CategorySales: []float64{45, 30, 15, 10},
	}
}

type HourlySales struct {
	Hour  string `json:"hour"`
	Sales int    `json:"sales"`
}

type CategorySales struct {
	Category string `json:"category"`
	Sales    int    `json:"sales"`
}

type ProductSales struct {
	Name  string `json:"name"`
	Sales int    `json:"sales"`
}

type Snapshot struct {
	Timestamp       string          `json:"timestamp"`
	TotalSalesToday int             `json:"total_sales_today"`
	HourlySales     []HourlySales   `json:"hourly_sales"`
	CategorySales   []CategorySales `json:"category_sales"`
	TopProducts     []ProductSales  `json:"top_products"`
}

var dashboardCategories = []string{"전자제품", "의류", "식품", "가구", "화장품"}

const (
	hourlyMean   = 1000
	hourlyStdDev = 200
	categoryMin  = 500
	categoryMax  = 2000
)

type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewGenerator(rng *rand.Rand, now func() time.Time) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{rng: rng, now: now}
}

// Snapshot builds 24 hourly points ending at the current hour plus per-category totals.
func (g *Generator) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	s := Snapshot{
		Timestamp:     now.Format(time.RFC3339),
		HourlySales:   make([]HourlySales, 0, 24),
		CategorySales: make([]CategorySales, 0, len(dashboardCategories)),
		TopProducts: []ProductSales{
			{Name: "스마트폰", Sales: 150},
			{Name: "노트북", Sales: 120},
			{Name: "태블릿", Sales: 90},
		},
	}
	for i := 0; i < 24; i++ {
		hour := now.Add(-time.Duration(23-i) * time.Hour)
		v := int(math.Max(0, g.rng.NormFloat64()*hourlyStdDev+hourlyMean))
		s.HourlySales = append(s.HourlySales, HourlySales{Hour: hour.Format("15") + ":00", Sales: v})
		s.TotalSalesToday += v
	}
	for _, c := range dashboardCategories {
		v := int(categoryMin + g.rng.Float64()*(categoryMax-categoryMin))
		s.CategorySales = append(s.CategorySales, CategorySales{Category: c, Sales: v})
	}
	return s
}
