package lirc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/picontrol/eversolo2hub/internal/core/port"

	"go.uber.org/zap"
)

const DefaultSocketPath = "/var/run/lirc/lircd"

// LircSender emits single infrared codes through a local lircd socket. A
// fresh connection is opened per send and every call is deadline bounded.
type LircSender struct {
	socketPath string
	remote     string
	timeout    time.Duration
	logger     *zap.Logger
}

func CreateLircSender(socketPath string, remote string, timeout time.Duration, logger *zap.Logger) *LircSender {
	return &LircSender{
		socketPath: socketPath,
		remote:     remote,
		timeout:    timeout,
		logger:     logger.With(zap.String("remote", remote)),
	}
}

// Probe reports whether the lircd socket currently accepts connections.
func (s *LircSender) Probe() error {
	conn, err := net.DialTimeout("unix", s.socketPath, s.timeout)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (s *LircSender) Send(ctx context.Context, code string) error {
	conn, err := net.DialTimeout("unix", s.socketPath, s.timeout)
	if err != nil {
		return fmt.Errorf("connect lircd: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(s.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetDeadline(deadline)

	if _, err := fmt.Fprintf(conn, "SEND_ONCE %s %s\n", s.remote, code); err != nil {
		return fmt.Errorf("send infrared code: %w", err)
	}
	if err := readReply(bufio.NewReader(conn)); err != nil {
		return fmt.Errorf("lircd: %w", err)
	}
	s.logger.Debug("sent infrared code", zap.String("code", code))
	return nil
}

// readReply consumes one BEGIN..END reply block and reports whether lircd
// accepted the command.
func readReply(reader *bufio.Reader) error {
	var status string
	var data []string
	inData := false
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read reply: %w", err)
		}
		line = strings.TrimSpace(line)
		switch line {
		case "BEGIN":
		case "SUCCESS", "ERROR":
			status = line
			inData = false
		case "DATA":
			inData = true
		case "END":
			if status == "SUCCESS" {
				return nil
			}
			// first DATA line is the line count
			if len(data) > 1 {
				return errors.New(strings.Join(data[1:], "; "))
			}
			return errors.New("command failed")
		default:
			if inData {
				data = append(data, line)
			}
		}
	}
}

var _ port.InfraredSender = (*LircSender)(nil)
