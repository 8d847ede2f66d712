package observability

import (
	"context"
	"log/slog"
)

// WSLogger provides structured logging for feed websocket connections.
type WSLogger struct {
	hubName string
	logger  *slog.Logger
}

// NewWSLogger creates a WSLogger for the given hub. A nil logger uses slog.Default.
func NewWSLogger(hubName string, logger *slog.Logger) *WSLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSLogger{hubName: hubName, logger: logger}
}

// LogConnect logs a websocket connection event.
func (l *WSLogger) LogConnect(ctx context.Context, userID string, active int) {
	l.logger.DebugContext(ctx, "websocket connected",
		slog.String("hub", l.hubName),
		slog.String("user_id", userID),
		slog.Int("active", active),
	)
}

// LogDisconnect logs a websocket disconnection event.
func (l *WSLogger) LogDisconnect(ctx context.Context, userID, reason string) {
	l.logger.DebugContext(ctx, "websocket disconnected",
		slog.String("hub", l.hubName),
		slog.String("user_id", userID),
		slog.String("reason", reason),
	)
}

// LogRefused logs a connection turned away by the hub limits.
func (l *WSLogger) LogRefused(ctx context.Context, userID string, err error) {
	l.logger.WarnContext(ctx, "websocket refused",
		slog.String("hub", l.hubName),
		slog.String("user_id", userID),
		slog.String("error", err.Error()),
	)
}

// LogLifecycle logs a hub lifecycle event such as startup or shutdown.
func (l *WSLogger) LogLifecycle(ctx context.Context, event string, attrs ...slog.Attr) {
	args := []any{
		slog.String("hub", l.hubName),
		slog.String("event", event),
	}
	for _, a := range attrs {
		args = append(args, a)
	}
	l.logger.InfoContext(ctx, "websocket lifecycle", args...)
}
