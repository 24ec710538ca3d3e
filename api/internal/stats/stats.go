// Package stats holds the small in-memory computations behind the analysis endpoints.
package stats

import (
	"errors"
	"math"
)

var (
	ErrNotEnoughData  = errors.New("최소 2개 이상의 데이터가 필요합니다")
	ErrLengthMismatch = errors.New("두 데이터의 길이가 같아야 합니다")
	ErrZeroVariance   = errors.New("분산이 0인 데이터는 상관계수를 계산할 수 없습니다")
	ErrZeroBase       = errors.New("기준값이 0이라 비율을 계산할 수 없습니다")
	ErrEmptyInput     = errors.New("입력 데이터가 비어 있습니다")
)

const (
	TrendUp   = "상승"
	TrendDown = "하락"
)

func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// Std is the population standard deviation.
func Std(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

func MinMax(xs []float64) (lo, hi float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

// LinearFit fits y = slope*x + intercept over x = 0..n-1 by least squares.
func LinearFit(ys []float64) (slope, intercept float64, err error) {
	n := len(ys)
	if n < 2 {
		return 0, 0, ErrNotEnoughData
	}
	xm := float64(n-1) / 2
	ym := Mean(ys)
	var num, den float64
	for i, y := range ys {
		dx := float64(i) - xm
		num += dx * (y - ym)
		den += dx * dx
	}
	slope = num / den
	intercept = ym - slope*xm
	return slope, intercept, nil
}

// Pearson returns the correlation coefficient of two equally long series.
func Pearson(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrLengthMismatch
	}
	if len(a) < 2 {
		return 0, ErrNotEnoughData
	}
	am, bm := Mean(a), Mean(b)
	var cov, va, vb float64
	for i := range a {
		da, db := a[i]-am, b[i]-bm
		cov += da * db
		va += da * da
		vb += db * db
	}
	if va == 0 || vb == 0 {
		return 0, ErrZeroVariance
	}
	return cov / math.Sqrt(va*vb), nil
}

// Round rounds half away from zero to the given number of decimals.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}
