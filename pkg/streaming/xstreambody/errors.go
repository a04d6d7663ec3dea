package xstreambody

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

var (
	// ErrPeerGone classifies a write fault caused by the client having
	// already disconnected (broken pipe, connection reset, closed conn).
	ErrPeerGone = errors.New("xstreambody: peer gone")

	// ErrSinkFault classifies any other write fault.
	ErrSinkFault = errors.New("xstreambody: sink fault")
)

// classifyWriteFault maps a raw write error to the taxonomy BodyWriter
// logs under: a client that walked away is routine and info-logged, any
// other failure writing to the sink is unexpected and error-logged.
func classifyWriteFault(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		return ErrPeerGone
	}
	msg := err.Error()
	if strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer") {
		return ErrPeerGone
	}
	return ErrSinkFault
}
