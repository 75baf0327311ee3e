package app

import "thermal-inspector/internal/domain/entity"

// SeverityAggregator сворачивает серьёзность принятых аномалий в итоговый статус
type SeverityAggregator struct {
	severity entity.SeverityMap
	status   entity.OverallStatus
}

// NewSeverityAggregator создаёт агрегатор со статусом NORMAL
func NewSeverityAggregator(severity entity.SeverityMap) *SeverityAggregator {
	return &SeverityAggregator{severity: severity, status: entity.StatusNormal}
}

// Add учитывает принятую аномалию и возвращает её серьёзность
func (a *SeverityAggregator) Add(label string) int {
	score := a.severity.Score(label)
	a.status = a.status.Escalate(score)
	return score
}

// Status текущий итоговый статус
func (a *SeverityAggregator) Status() entity.OverallStatus {
	return a.status
}
