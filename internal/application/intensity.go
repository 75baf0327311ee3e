package app

import "thermal-inspector/internal/domain/entity"

// RegionProxy способ свести область к одному числу
type RegionProxy string

const (
	ProxyPercentile RegionProxy = "percentile"
	ProxyMax        RegionProxy = "max"
)

// RegionIntensityExtractor оценивает яркость горячей точки внутри прямоугольника
type RegionIntensityExtractor struct {
	proxy      RegionProxy
	percentile float64
}

// NewRegionIntensityExtractor создаёт экстрактор; percentile используется только для ProxyPercentile
func NewRegionIntensityExtractor(proxy RegionProxy, percentile float64) *RegionIntensityExtractor {
	return &RegionIntensityExtractor{proxy: proxy, percentile: percentile}
}

// Proxy возвращает оценку яркости области; пустая область даёт 0.
func (x *RegionIntensityExtractor) Proxy(plane *entity.Plane, r entity.Rect) float64 {
	values := plane.Crop(r)
	if len(values) == 0 {
		return 0
	}
	if x.proxy == ProxyMax {
		return maxValue(values)
	}
	return percentile(values, x.percentile)
}
