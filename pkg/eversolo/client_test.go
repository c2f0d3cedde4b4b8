package eversolo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testHTTPClient(t *testing.T, handler http.HandlerFunc) ControlClient {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	logger := zap.Must(zap.NewDevelopment())
	return CreateControlClientForURL("test-device", server.URL, DefaultClientName, DefaultClientUUID,
		2*time.Second, 500*time.Millisecond, logger)
}

func TestConnect(t *testing.T) {
	client := testHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ZidooControlCenter/connect", r.URL.Path)
		assert.Equal(t, DefaultClientName, r.URL.Query().Get("name"))
		assert.Equal(t, DefaultClientUUID, r.URL.Query().Get("uuid"))
		assert.Equal(t, "0", r.URL.Query().Get("tag"))
		assert.Equal(t, "1", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`{"status": 200, "device": {"name": "Studio DMP-A6", "host": "10.0.0.15"}}`))
	})

	identity, err := client.Connect(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "Studio DMP-A6", identity.Name)
	assert.Equal(t, "10.0.0.15", identity.Host)
}

func TestConnectMalformedBody(t *testing.T) {
	client := testHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.Connect(context.Background())
	assert.Error(t, err)
	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestConnectNoIdentity(t *testing.T) {
	client := testHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": 200}`))
	})

	_, err := client.Connect(context.Background())
	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestConnectDeviceStatusError(t *testing.T) {
	client := testHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": 804, "device": {"name": "Studio DMP-A6", "host": "10.0.0.15"}}`))
	})

	_, err := client.Connect(context.Background())
	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
	assert.Equal(t, 804, protoErr.Status)
}

func TestConnectUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	logger := zap.Must(zap.NewDevelopment())
	client := CreateControlClientForURL("test-device", server.URL, DefaultClientName, DefaultClientUUID,
		time.Second, time.Second, logger)

	_, err := client.Connect(context.Background())
	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestExec(t *testing.T) {
	var gotPath string
	client := testHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"status": 200}`))
	})

	err := client.Exec(context.Background(), PathPlayOrPause)
	assert.NoError(t, err)
	assert.Equal(t, "/ZidooMusicControl/v2/playOrPause", gotPath)
}

func TestExecDeviceStatusError(t *testing.T) {
	client := testHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": 500}`))
	})

	err := client.Exec(context.Background(), PathPlayNext)
	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
	assert.Equal(t, 500, protoErr.Status)
}

func TestExecMissingStatus(t *testing.T) {
	client := testHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"everything": "fine"}`))
	})

	err := client.Exec(context.Background(), PathPlayNext)
	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestExecTimeout(t *testing.T) {
	client := testHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		_, _ = w.Write([]byte(`{"status": 200}`))
	})

	err := client.Exec(context.Background(), PathPlayOrPause)
	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}
