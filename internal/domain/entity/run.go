package entity

import "time"

// RunStage этап обработки одной инспекции
type RunStage string

const (
	StageInit             RunStage = "INIT"              // Запуск создан
	StageValidatingInputs RunStage = "VALIDATING_INPUTS" // Проверка путей и настройка
	StageBaselineComputed RunStage = "BASELINE_COMPUTED" // Эталонная яркость посчитана
	StageDetecting        RunStage = "DETECTING"         // Вызов детектора
	StageFiltering        RunStage = "FILTERING"         // Проверка превышения по кандидатам
	StageAggregating      RunStage = "AGGREGATING"       // Итоговый статус
	StageAnnotating       RunStage = "ANNOTATING"        // Рисование и сохранение снимка
	StageDone             RunStage = "DONE"              // Отчёт готов
	StageUncertain        RunStage = "UNCERTAIN"         // Запуск прерван ошибкой
)

// Run представляет один запуск конвейера
type Run struct {
	ID        string    // идентификатор запуска
	Stage     RunStage  // текущий этап
	StartedAt time.Time // время начала, от него строится имя файла
}

// NewRun создаёт запуск в начальном состоянии
func NewRun(id string, startedAt time.Time) *Run {
	return &Run{
		ID:        id,
		Stage:     StageInit,
		StartedAt: startedAt,
	}
}

// SetStage переводит запуск на новый этап; из конечных состояний выхода нет
func (r *Run) SetStage(stage RunStage) {
	if r.Finished() {
		return
	}
	r.Stage = stage
}

// Finished сообщает, что запуск в конечном состоянии
func (r *Run) Finished() bool {
	return r.Stage == StageDone || r.Stage == StageUncertain
}
