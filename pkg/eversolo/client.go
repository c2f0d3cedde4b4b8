package eversolo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultPort is the TCP port the DMP-A6 control API listens on.
const DefaultPort = 9529

// Default identity presented to devices on connect.
const (
	DefaultClientName = "PiControlHub"
	DefaultClientUUID = "f6c4ad46-f0d3-11ee-a951-0242ac120002"
)

// DeviceIdentity is the name/host pair a device reports on a successful
// control handshake.
type DeviceIdentity struct {
	Name string
	Host string
}

// ControlClient drives one streamer over its HTTP control API. Every call
// performs exactly one outbound request bounded by the configured timeout.
type ControlClient interface {
	// Address returns the host this client is bound to.
	Address() string
	// Connect performs the identify handshake and returns the identity the
	// device reports.
	Connect(ctx context.Context) (*DeviceIdentity, error)
	// Exec performs a GET of a control path and checks the embedded status.
	Exec(ctx context.Context, path string) error
}

type HTTPControlClient struct {
	address        string
	baseURL        string
	client         *http.Client
	clientName     string
	clientUUID     string
	connectTimeout time.Duration
	commandTimeout time.Duration
	logger         *zap.Logger
}

func CreateControlClient(address string, port uint, clientName string, clientUUID string,
	connectTimeout time.Duration, commandTimeout time.Duration, logger *zap.Logger) ControlClient {
	return CreateControlClientForURL(address, fmt.Sprintf("http://%s:%d", address, port),
		clientName, clientUUID, connectTimeout, commandTimeout, logger)
}

// CreateControlClientForURL targets an explicit base URL instead of the
// standard address/port pair. Mainly used by tests.
func CreateControlClientForURL(address string, baseURL string, clientName string, clientUUID string,
	connectTimeout time.Duration, commandTimeout time.Duration, logger *zap.Logger) ControlClient {
	return &HTTPControlClient{
		address:        address,
		baseURL:        baseURL,
		client:         &http.Client{},
		clientName:     clientName,
		clientUUID:     clientUUID,
		connectTimeout: connectTimeout,
		commandTimeout: commandTimeout,
		logger:         logger.With(zap.String("device", address)),
	}
}

func (c *HTTPControlClient) Address() string {
	return c.address
}

type connectResponse struct {
	Status *int `json:"status"`
	Device struct {
		Name string `json:"name"`
		Host string `json:"host"`
	} `json:"device"`
}

func (c *HTTPControlClient) Connect(ctx context.Context) (*DeviceIdentity, error) {
	url := c.baseURL + PathConnect(c.clientName, c.clientUUID)

	body, err := c.get(ctx, url, c.connectTimeout)
	if err != nil {
		return nil, err
	}

	var parsed connectResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ProtocolError{URL: url, Err: err}
	}
	if parsed.Status != nil && *parsed.Status != 200 {
		return nil, &ProtocolError{URL: url, Status: *parsed.Status}
	}
	if parsed.Device.Name == "" || parsed.Device.Host == "" {
		return nil, &ProtocolError{URL: url, Err: fmt.Errorf("handshake response carries no device identity")}
	}
	return &DeviceIdentity{
		Name: parsed.Device.Name,
		Host: parsed.Device.Host,
	}, nil
}

type statusResponse struct {
	Status *int `json:"status"`
}

func (c *HTTPControlClient) Exec(ctx context.Context, path string) error {
	url := c.baseURL + path

	body, err := c.get(ctx, url, c.commandTimeout)
	if err != nil {
		return err
	}

	var parsed statusResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &ProtocolError{URL: url, Err: err}
	}
	if parsed.Status == nil {
		return &ProtocolError{URL: url, Err: fmt.Errorf("response carries no status")}
	}
	if *parsed.Status != 200 {
		return &ProtocolError{URL: url, Status: *parsed.Status}
	}
	return nil
}

func (c *HTTPControlClient) get(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c.logger.Debug("GET", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	return body, nil
}
