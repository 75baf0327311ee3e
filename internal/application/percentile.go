package app

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

func samples(values []uint8) []float64 {
	xs := make([]float64, len(values))
	for i, v := range values {
		xs[i] = float64(v)
	}
	return xs
}

// percentile возвращает p-й процентиль (0..100): позиция h = (n-1)*p/100 в отсортированном
// наборе, между соседними значениями линейная интерполяция. Пустой набор даёт 0.
func percentile(values []uint8, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	xs := samples(values)
	sort.Float64s(xs)

	h := float64(len(xs)-1) * p / 100
	lo := int(math.Floor(h))
	if lo >= len(xs)-1 {
		return xs[len(xs)-1]
	}
	if lo < 0 {
		return xs[0]
	}
	return xs[lo] + (h-float64(lo))*(xs[lo+1]-xs[lo])
}

func maxValue(values []uint8) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Max(samples(values))
}
