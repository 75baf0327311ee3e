package entity

// SeverityMap сопоставляет имя класса и степень серьёзности (0 нет, 1 потенциально, 2 неисправность)
type SeverityMap map[string]int

// DefaultSeverityMap возвращает соответствие по умолчанию
func DefaultSeverityMap() SeverityMap {
	return SeverityMap{
		"Potentially Faulty": 1,
		"Faulty":             2,
	}
}

// Score возвращает серьёзность класса, 0 для неизвестных
func (m SeverityMap) Score(label string) int {
	return m[label]
}

// OverallStatus итоговый статус инспекции
type OverallStatus string

const (
	StatusNormal            OverallStatus = "NORMAL"
	StatusPotentiallyFaulty OverallStatus = "POTENTIALLY_FAULTY"
	StatusFaulty            OverallStatus = "FAULTY"
	StatusUncertain         OverallStatus = "UNCERTAIN" // только для ошибок входа и настройки
)

// Escalate поднимает статус по серьёзности принятой аномалии и никогда не понижает его.
func (s OverallStatus) Escalate(severity int) OverallStatus {
	switch {
	case s == StatusUncertain:
		return s
	case severity >= 2:
		return StatusFaulty
	case severity == 1 && s != StatusFaulty:
		return StatusPotentiallyFaulty
	}
	return s
}
