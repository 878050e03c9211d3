package core

import (
	"context"
	"time"
)

// Logger is the structured logging surface used by Service. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Clock supplies timestamps for activity entries.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// MetricsRecorder observes the outcome of each service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// StateGauges is implemented by recorders that also track store and history sizes.
type StateGauges interface {
	SetState(contacts, undoDepth, redoDepth int)
}

// Tracer starts a span around each service operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is finished with the operation's error, nil on success.
type TraceSpan interface {
	End(err error)
}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the activity timestamp source.
func WithClock(c Clock) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMetricsRecorder sets the operation metrics sink.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithMirror attaches a write-only sink that receives state after each committed mutation.
func WithMirror(m Mirror) ServiceOption {
	return func(s *Service) {
		s.mirror = m
	}
}

// WithActivityCapacity shrinks the activity log bound. Values outside
// 1..DefaultActivityCapacity are ignored.
func WithActivityCapacity(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 && n <= DefaultActivityCapacity {
			s.activityCap = n
		}
	}
}

// WithSeed replaces the initial store contents.
func WithSeed(contacts ...Contact) ServiceOption {
	return func(s *Service) {
		s.seed = append([]Contact(nil), contacts...)
	}
}
