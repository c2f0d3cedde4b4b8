package eversolo

import (
	"context"
	"sync"
)

func CreateTestControlClient(address string) *TestControlClient {
	return &TestControlClient{
		Addr: address,
		Identity: DeviceIdentity{
			Name: "DMP-A6",
			Host: address,
		},
	}
}

// TestControlClient is a canned in-memory ControlClient. Set ConnectErr or
// ExecErr to force failures; executed paths are recorded.
type TestControlClient struct {
	Addr       string
	Identity   DeviceIdentity
	ConnectErr error
	ExecErr    error

	mutex     sync.Mutex
	execPaths []string
}

func (c *TestControlClient) Address() string {
	return c.Addr
}

func (c *TestControlClient) Connect(ctx context.Context) (*DeviceIdentity, error) {
	if c.ConnectErr != nil {
		return nil, c.ConnectErr
	}
	identity := c.Identity
	return &identity, nil
}

func (c *TestControlClient) Exec(ctx context.Context, path string) error {
	if c.ExecErr != nil {
		return c.ExecErr
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.execPaths = append(c.execPaths, path)
	return nil
}

// ExecutedPaths returns the control paths executed so far.
func (c *TestControlClient) ExecutedPaths() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]string{}, c.execPaths...)
}
