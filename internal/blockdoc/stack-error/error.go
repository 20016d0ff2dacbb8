// Пакет stack_error накапливает контекст ошибки по мере ее подъема по стеку
// вызовов: файл и строку каждого места, где ошибка была обернута, и
// произвольные пары ключ-значение (файл, формат, тип блока).
package stack_error

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
)

type TrackerError struct {
	Context  map[string]any
	ErrStack []slog.Attr
	cause    error
}

// TrackErrorStack добавляет место вызова к стеку ошибки.
// Ошибка, уже несущая TrackerError, дополняется, а не оборачивается повторно.
func TrackErrorStack(err error) *TrackerError {
	if err == nil {
		return nil
	}
	var te *TrackerError
	if errors.As(err, &te) {
		te.ErrStack = append(te.ErrStack, getCallerFile(err))
		return te
	}

	newTe := newTrackError(err)
	newTe.ErrStack = append(newTe.ErrStack, getCallerFile(err))
	return newTe
}

func newTrackError(err error) *TrackerError {
	return &TrackerError{
		Context:  make(map[string]any),
		ErrStack: make([]slog.Attr, 0),
		cause:    err,
	}
}

// AddContext сохраняет первое значение ключа.
func (te *TrackerError) AddContext(k string, v any) *TrackerError {
	if _, ok := te.Context[k]; !ok {
		te.Context[k] = v
	}
	return te
}

func (te *TrackerError) AddErr(err error) *TrackerError {
	te.ErrStack = append(te.ErrStack, getCallerFile(err))
	return te
}

// LogError пишет ошибку в журнал вместе с накопленным контекстом и стеком.
// attrs добавляются к записи как есть.
func LogError(log *slog.Logger, msg string, err error, attrs ...any) {
	if log == nil {
		log = slog.Default()
	}

	var trackerError *TrackerError
	if errors.As(err, &trackerError) {
		trackerError.traceOut(log)
		attrs = append(attrs, trackerError.getAttrs()...)
	}
	attrs = append(attrs, slog.String("err", err.Error()))

	log.With(attrs...).Error(msg)
}

func (te *TrackerError) Error() string {
	if te.cause != nil {
		return te.cause.Error()
	}
	return "TrackerError"
}

func (te *TrackerError) Unwrap() error {
	return te.cause
}

func (te *TrackerError) getAttrs() []any {
	keys := make([]string, 0, len(te.Context))
	for k := range te.Context {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	res := make([]any, 0, len(keys))
	for _, k := range keys {
		res = append(res, slog.Any(k, te.Context[k]))
	}
	return res
}

func (te *TrackerError) traceOut(log *slog.Logger) {
	for _, attr := range te.ErrStack {
		log.Debug("trace:", attr)
	}
}

func getCallerFile(err error) slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.String("trace", "unknown")
	}
	_, file := filepath.Split(path)
	return slog.String("trace", fmt.Sprintf("%s:%d %s", file, no, err.Error()))
}
