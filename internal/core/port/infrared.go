package port

import "context"

// InfraredSender emits a single infrared code through the configured remote.
type InfraredSender interface {
	Send(ctx context.Context, code string) error
}
