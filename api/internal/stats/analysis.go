package stats

import "fmt"

type Statistics struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

type TrendResult struct {
	Trend      string     `json:"trend"`
	GrowthRate float64    `json:"growth_rate"`
	Volatility float64    `json:"volatility"`
	Statistics Statistics `json:"statistics"`
	Data       []float64  `json:"data"`
}

// Trend compares the last point against the first. Growth is always reported as a
// positive percentage of the first value; the direction lives in Trend.
func Trend(data []float64) (TrendResult, error) {
	if len(data) < 2 {
		return TrendResult{}, ErrNotEnoughData
	}
	first, last := data[0], data[len(data)-1]
	mean := Mean(data)
	if first == 0 || mean == 0 {
		return TrendResult{}, ErrZeroBase
	}
	std := Std(data)
	lo, hi := MinMax(data)

	res := TrendResult{
		Volatility: std / mean * 100,
		Statistics: Statistics{Mean: mean, Std: std, Min: lo, Max: hi},
		Data:       data,
	}
	if last > first {
		res.Trend = TrendUp
		res.GrowthRate = (last - first) / first * 100
	} else {
		res.Trend = TrendDown
		res.GrowthRate = (first - last) / first * 100
	}
	return res, nil
}

type CorrelationResult struct {
	Correlation    float64 `json:"correlation"`
	Strength       string  `json:"strength"`
	Interpretation string  `json:"interpretation"`
}

func Correlation(a, b []float64) (CorrelationResult, error) {
	r, err := Pearson(a, b)
	if err != nil {
		return CorrelationResult{}, err
	}
	strength := CorrelationStrength(r)
	return CorrelationResult{
		Correlation:    r,
		Strength:       strength,
		Interpretation: fmt.Sprintf("상관계수 %.3f로 %s한 상관관계를 보입니다", r, strength),
	}, nil
}

func CorrelationStrength(r float64) string {
	switch {
	case r > 0.7 || r < -0.7:
		return "강함"
	case r > 0.3 || r < -0.3:
		return "보통"
	default:
		return "약함"
	}
}

const (
	SegmentVIP     = "VIP"
	SegmentRegular = "일반"
	SegmentNew     = "신규"
)

type Customer struct {
	ID                any     `json:"id,omitempty"`
	TotalSpending     float64 `json:"total_spending"`
	PurchaseFrequency float64 `json:"purchase_frequency"`
}

type CustomerSegment struct {
	CustomerID        any     `json:"customer_id"`
	Segment           string  `json:"segment"`
	TotalSpending     float64 `json:"total_spending"`
	PurchaseFrequency float64 `json:"purchase_frequency"`
}

type SegmentAverages struct {
	AvgSpending  float64 `json:"avg_spending"`
	AvgFrequency float64 `json:"avg_frequency"`
}

type SegmentationResult struct {
	Segments       []CustomerSegment `json:"segments"`
	SegmentSummary map[string]int    `json:"segment_summary"`
	Averages       SegmentAverages   `json:"averages"`
}

// Segment buckets customers against the population averages of spending and frequency.
func Segment(customers []Customer) (SegmentationResult, error) {
	if len(customers) == 0 {
		return SegmentationResult{}, ErrEmptyInput
	}
	spend := make([]float64, len(customers))
	freq := make([]float64, len(customers))
	for i, c := range customers {
		spend[i] = c.TotalSpending
		freq[i] = c.PurchaseFrequency
	}
	avgS, avgF := Mean(spend), Mean(freq)

	res := SegmentationResult{
		Segments:       make([]CustomerSegment, 0, len(customers)),
		SegmentSummary: map[string]int{SegmentVIP: 0, SegmentRegular: 0, SegmentNew: 0},
		Averages:       SegmentAverages{AvgSpending: avgS, AvgFrequency: avgF},
	}
	for i, c := range customers {
		hiS, hiF := c.TotalSpending > avgS, c.PurchaseFrequency > avgF
		seg := SegmentNew
		switch {
		case hiS && hiF:
			seg = SegmentVIP
		case hiS || hiF:
			seg = SegmentRegular
		}
		var id any = i
		if c.ID != nil {
			id = c.ID
		}
		res.Segments = append(res.Segments, CustomerSegment{
			CustomerID:        id,
			Segment:           seg,
			TotalSpending:     c.TotalSpending,
			PurchaseFrequency: c.PurchaseFrequency,
		})
		res.SegmentSummary[seg]++
	}
	return res, nil
}
