package entity

import (
	"errors"
	"fmt"
)

// FailureKind класс ошибки запуска
type FailureKind string

const (
	FailureInputNotFound FailureKind = "input_not_found"
	FailureSetup         FailureKind = "setup_failure"
	FailureDecode        FailureKind = "decode_failure"
	FailureArgument      FailureKind = "argument_error"
	FailureDetector      FailureKind = "detector_failure"
	FailureSave          FailureKind = "save_failure"
	FailureInternal      FailureKind = "internal_error"
)

// Failure ошибка с указанием класса
type Failure struct {
	Kind FailureKind
	Err  error
}

// NewFailure оборачивает ошибку классом
func NewFailure(kind FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}

// Failuref создаёт ошибку класса kind из форматной строки
func Failuref(kind FailureKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (f *Failure) Error() string {
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// KindOf возвращает класс ошибки или FailureInternal, если он не указан
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return FailureInternal
}
