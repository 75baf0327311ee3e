package app

// DeferenceScale знаменатель в формуле превышения
type DeferenceScale string

const (
	ScaleFixed    DeferenceScale = "fixed"    // (M - B) / 255
	ScaleBaseline DeferenceScale = "baseline" // (M - B) / B
)

// DeferenceClassifier решает, оставить ли кандидата, по превышению над эталоном
type DeferenceClassifier struct {
	scale     DeferenceScale
	threshold float64
}

// NewDeferenceClassifier создаёт классификатор; threshold задаётся долей (0.10 = 10%)
func NewDeferenceClassifier(scale DeferenceScale, threshold float64) *DeferenceClassifier {
	return &DeferenceClassifier{scale: scale, threshold: threshold}
}

// Deference возвращает превышение в процентах. При нулевом эталоне превышение максимально.
func (c *DeferenceClassifier) Deference(baseline int, proxy float64) float64 {
	if baseline <= 0 {
		return 100
	}
	b := float64(baseline)
	if c.scale == ScaleBaseline {
		return ((proxy - b) / b) * 100
	}
	return ((proxy - b) / 255) * 100
}

// Accept возвращает превышение и решение; граница порога включается.
func (c *DeferenceClassifier) Accept(baseline int, proxy float64) (float64, bool) {
	d := c.Deference(baseline, proxy)
	return d, d >= c.threshold*100
}
