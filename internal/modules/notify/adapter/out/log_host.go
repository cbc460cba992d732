package out

import (
	"context"

	"go.uber.org/zap"

	"pursue/internal/modules/notify/domain"
	notifyout "pursue/internal/modules/notify/port/out"
	"pursue/internal/platform/logging"
)

// LogHost is the provider used when no push plugin is configured: every
// message is written to the application log and accepted.
type LogHost struct {
	logger *zap.Logger
}

func NewLogHost(logger *zap.Logger) notifyout.Host {
	return &LogHost{logger: logging.OrNop(logger)}
}

func (h *LogHost) Open(context.Context, domain.Manifest) (notifyout.Connection, error) {
	return logConnection{logger: h.logger.Named("push")}, nil
}

type logConnection struct {
	logger *zap.Logger
}

func (logConnection) Metadata(context.Context) (domain.Metadata, error) {
	return domain.Metadata{Name: "log", Version: "builtin"}, nil
}

func (c logConnection) Send(_ context.Context, message domain.Message) error {
	c.logger.Info("push",
		zap.String("user_id", message.UserID),
		zap.String("group_id", message.GroupID),
		zap.String("type", message.Type),
		zap.String("title", message.Title),
		zap.String("body", message.Body),
		zap.Any("data", message.Data),
	)
	return nil
}

func (logConnection) Close() {}

// HostFor picks the plugin host for an external manifest and the log host
// otherwise.
func HostFor(manifest domain.Manifest, plugins notifyout.Host, logger *zap.Logger) notifyout.Host {
	if manifest.External() {
		return plugins
	}
	return NewLogHost(logger)
}
