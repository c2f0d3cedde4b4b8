package lirc

import (
	"bufio"
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLircd answers every command with the given middle block of a
// BEGIN..END reply and records the last command line.
func fakeLircd(t *testing.T, reply string) (socketPath string, lastCommand *string) {
	socketPath = filepath.Join(t.TempDir(), "lircd")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = listener.Close()
	})

	lastCommand = new(string)
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				line, err := bufio.NewReader(c).ReadString('\n')
				if err != nil {
					return
				}
				*lastCommand = strings.TrimSpace(line)
				_, _ = c.Write([]byte("BEGIN\n" + *lastCommand + "\n" + reply + "END\n"))
			}(conn)
		}
	}()
	return socketPath, lastCommand
}

func testSender(socketPath string) *LircSender {
	logger := zap.Must(zap.NewDevelopment())
	return CreateLircSender(socketPath, "eversolo-dmpa6", time.Second, logger)
}

func TestSendSuccess(t *testing.T) {

	socketPath, lastCommand := fakeLircd(t, "SUCCESS\n")
	sender := testSender(socketPath)

	err := sender.Send(context.Background(), "KEY_POWER")
	assert.NoError(t, err)
	assert.Equal(t, "SEND_ONCE eversolo-dmpa6 KEY_POWER", *lastCommand)
}

func TestSendReportsDaemonError(t *testing.T) {

	socketPath, _ := fakeLircd(t, "ERROR\nDATA\n1\nunknown remote: \"eversolo-dmpa6\"\n")
	sender := testSender(socketPath)

	err := sender.Send(context.Background(), "KEY_POWER")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown remote")
}

func TestSendWithoutDaemon(t *testing.T) {

	sender := testSender(filepath.Join(t.TempDir(), "missing"))

	err := sender.Send(context.Background(), "KEY_POWER")
	assert.Error(t, err)
}

func TestProbe(t *testing.T) {

	socketPath, _ := fakeLircd(t, "SUCCESS\n")
	assert.NoError(t, testSender(socketPath).Probe())
	assert.Error(t, testSender(filepath.Join(t.TempDir(), "missing")).Probe())
}
