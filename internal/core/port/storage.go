package port

import "context"

// DeviceStore is the key/value store backing the device cache. Get of a
// missing key returns nil bytes and no error.
type DeviceStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
