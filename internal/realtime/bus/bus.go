package bus

import (
	"context"

	"github.com/talentvine/talentvine-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}
