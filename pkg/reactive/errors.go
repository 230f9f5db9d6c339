package reactive

import (
	"context"
	"fmt"
	"log/slog"

	rerrors "github.com/vango-dev/reactor/internal/errors"
)

// ErrorKind classifies reported errors.
type ErrorKind uint8

const (
	// KindEvaluation is a panic inside a render function or watcher getter.
	KindEvaluation ErrorKind = iota + 1
	// KindUserCallback is a panic inside a watch callback or lifecycle hook.
	KindUserCallback
	// KindSchedulerLoop is raised when a watcher re-queues itself past
	// the update bound within one flush.
	KindSchedulerLoop
	// KindStructural is an advisory warning about misuse.
	KindStructural
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindEvaluation:
		return "evaluation"
	case KindUserCallback:
		return "user_callback"
	case KindSchedulerLoop:
		return "scheduler_loop"
	case KindStructural:
		return "structural"
	default:
		return "unknown"
	}
}

// Error is what the runtime hands to the ErrorHandler. It is never
// returned from an operation; reporting it is the whole effect.
type Error struct {
	Kind ErrorKind
	// Code is the diagnostic code from the errors registry.
	Code string
	// Component names the owning component, when there is one.
	Component string
	// Info says where the error happened, e.g. "render function".
	Info string
	// Err is the recovered panic value or the warning text.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Diagnostic().Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Diagnostic expands e into the registry form used for terminal output.
func (e *Error) Diagnostic() *rerrors.ReactorError {
	return rerrors.New(e.Code).In(e.Component, e.Info).Wrap(e.Err)
}

// Warning reports whether e is advisory.
func (e *Error) Warning() bool {
	return e.Kind == KindStructural
}

// ErrorHandler receives every reported error and warning.
type ErrorHandler func(err *Error)

// LogHandler returns an ErrorHandler that writes to logger. Warnings are
// logged at Warn level, everything else at Error.
func LogHandler(logger *slog.Logger) ErrorHandler {
	return func(err *Error) {
		level := slog.LevelError
		if err.Warning() {
			level = slog.LevelWarn
		}
		attrs := []slog.Attr{
			slog.String("code", err.Code),
			slog.String("kind", err.Kind.String()),
		}
		if err.Component != "" {
			attrs = append(attrs, slog.String("component", err.Component))
		}
		if err.Info != "" {
			attrs = append(attrs, slog.String("info", err.Info))
		}
		if err.Err != nil {
			attrs = append(attrs, slog.String("error", err.Err.Error()))
		}
		msg := "reactive error"
		if t, ok := rerrors.Lookup(err.Code); ok {
			msg = t.Message
		}
		logger.LogAttrs(context.Background(), level, msg, attrs...)
	}
}

// panicError turns a recovered value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

func codeFor(kind ErrorKind) string {
	switch kind {
	case KindEvaluation:
		return rerrors.CodeEvaluation
	case KindUserCallback:
		return rerrors.CodeUserCallback
	case KindSchedulerLoop:
		return rerrors.CodeUpdateLoop
	default:
		return ""
	}
}

// Report delivers err to the handler and the instrumentation.
func (rt *Runtime) Report(err *Error) {
	if err.Code == "" {
		err.Code = codeFor(err.Kind)
	}
	if rt.instr != nil {
		rt.instr.Reported(err)
	}
	if rt.onError != nil {
		rt.onError(err)
	}
}

// Warn reports a structural warning with the given registry code.
func (rt *Runtime) Warn(code, component, format string, args ...any) {
	rt.Report(&Error{
		Kind:      KindStructural,
		Code:      code,
		Component: component,
		Err:       fmt.Errorf(format, args...),
	})
}

// Try runs fn, reporting a panic as an error of the given kind instead
// of propagating it. It reports whether fn returned normally.
func (rt *Runtime) Try(kind ErrorKind, component, info string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			rt.Report(&Error{Kind: kind, Component: component, Info: info, Err: panicError(r)})
			ok = false
		}
	}()
	fn()
	return true
}
