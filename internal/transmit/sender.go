package transmit

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"

	"drivelink/internal/telemetry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultMaxPacketBytes caps a single datagram.
const DefaultMaxPacketBytes = 4096

type packet struct {
	telemetry.NavigationFields
	Index     uint64 `json:"carrotIndex"`
	EpochTime int64  `json:"epochTime"`
}

// Sender writes navigation packets as JSON datagrams.
type Sender struct {
	conn     io.WriteCloser
	maxBytes int
	index    atomic.Uint64
	now      func() time.Time
}

// NewSender dials the UDP target addr.
func NewSender(addr string, maxBytes int) (*Sender, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial navigation target %s: %w", addr, err)
	}
	return newSender(conn, maxBytes), nil
}

func newSender(conn io.WriteCloser, maxBytes int) *Sender {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPacketBytes
	}
	return &Sender{conn: conn, maxBytes: maxBytes, now: time.Now}
}

// Encode renders nf as the next packet without sending it.
func (s *Sender) Encode(nf telemetry.NavigationFields) ([]byte, error) {
	b, err := json.Marshal(packet{
		NavigationFields: nf,
		Index:            s.index.Add(1),
		EpochTime:        s.now().Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode navigation packet: %w", err)
	}
	if len(b) > s.maxBytes {
		return nil, fmt.Errorf("navigation packet is %d bytes, limit %d", len(b), s.maxBytes)
	}
	return b, nil
}

// Send encodes and writes one packet.
func (s *Sender) Send(ctx context.Context, nf telemetry.NavigationFields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := s.Encode(nf)
	if err != nil {
		return err
	}
	if _, err := s.conn.Write(b); err != nil {
		return fmt.Errorf("write navigation packet: %w", err)
	}
	return nil
}

// Emit adapts Send to a Gate EmitFunc.
func (s *Sender) Emit(ctx context.Context) EmitFunc {
	return func(nf telemetry.NavigationFields) error { return s.Send(ctx, nf) }
}

// Close closes the socket.
func (s *Sender) Close() error { return s.conn.Close() }
