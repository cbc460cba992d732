package out

import (
	"context"

	"pursue/internal/modules/notify/domain"
)

// Connection is an open session with a push provider.
type Connection interface {
	Metadata(ctx context.Context) (domain.Metadata, error)
	Send(ctx context.Context, message domain.Message) error
	Close()
}

type Host interface {
	Open(ctx context.Context, manifest domain.Manifest) (Connection, error)
}
