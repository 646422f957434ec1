package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/mkrupp/storefront/internal/domain"
	ictx "github.com/mkrupp/storefront/internal/infra/context"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/svc/sessionsvc"
)

// handler executes one front-end command.
type handler func(ctx context.Context, args []string) error

// errPanic is returned by rescueing when a command panicked.
var errPanic = errors.New("command panicked")

// tracing tags the context of every command with a fresh trace ID and the
// session username, so the log lines of one command can be correlated.
func tracing(next handler, session *sessionsvc.SessionManager) handler {
	return func(ctx context.Context, args []string) error {
		return next(session.Context(ictx.WithNewTraceID(ctx)), args)
	}
}

// rescueing recovers from panics in a command. It logs the panic and stack
// trace and reports the command as failed instead of crashing the session.
func rescueing(next handler, name string, log logging.Logger) handler {
	return func(ctx context.Context, args []string) (err error) {
		defer func() {
			if p := recover(); p != nil {
				log.ErrorContext(ctx, "command panic", slog.Group("command",
					"name", name,
				), slog.Group("error",
					"panic", p,
					"stack", string(debug.Stack()),
				))

				err = fmt.Errorf("%w: %v", errPanic, p)
			}
		}()

		return next(ctx, args)
	}
}

// logged logs every command at debug level and its outcome at a level
// determined by the error:
// - unclassified errors: ERROR
// - user errors (bad input, wrong password, ...): WARN
// - success: INFO.
func logged(next handler, name string, log logging.Logger) handler {
	return func(ctx context.Context, args []string) error {
		log.DebugContext(ctx, "command", slog.Group("command", "name", name, "args", len(args)))

		err := next(ctx, args)

		var level logging.Level

		switch {
		case err == nil:
			level = logging.LevelInfo
		case domain.KindOf(err) == domain.KindUnknown:
			level = logging.LevelError
		default:
			level = logging.LevelWarn
		}

		attrs := []any{slog.Group("command", "name", name, "ok", err == nil)}
		if err != nil {
			attrs = append(attrs, "error", err)
		}

		log.Log(ctx, level, "command done", attrs...)

		return err
	}
}
