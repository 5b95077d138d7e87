package ingest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	"golang.org/x/time/rate"

	"drivelink/internal/logging"
	"drivelink/internal/telemetry"
)

// NavListener receives navigation field sets as JSON datagrams and keeps
// the latest one.
type NavListener struct {
	conn      net.PacketConn
	latest    atomic.Pointer[telemetry.NavigationFields]
	received  atomic.Uint64
	sometimes rate.Sometimes
}

// ListenNav binds a UDP socket on addr.
func ListenNav(addr string) (*NavListener, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen navigation %s: %w", addr, err)
	}
	return &NavListener{conn: conn, sometimes: rate.Sometimes{First: 1, Every: 100}}, nil
}

// Addr returns the bound address.
func (l *NavListener) Addr() net.Addr { return l.conn.LocalAddr() }

// Latest returns the most recent field set.
func (l *NavListener) Latest() (telemetry.NavigationFields, bool) {
	nf := l.latest.Load()
	if nf == nil {
		return telemetry.NavigationFields{}, false
	}
	return *nf, true
}

// Received returns how many datagrams were decoded.
func (l *NavListener) Received() uint64 { return l.received.Load() }

// Run reads datagrams until ctx is done, then closes the socket.
func (l *NavListener) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)
	log.Info("navigation listener started", "addr", l.Addr().String())
	defer log.Info("navigation listener stopped")

	go func() {
		<-ctx.Done()
		l.conn.Close()
	}()

	buf := make([]byte, 64*1024)
	for {
		n, _, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read navigation datagram: %w", err)
		}
		nf, err := telemetry.DecodeNavigation(buf[:n])
		if err != nil {
			l.sometimes.Do(func() { log.Warn("navigation datagram dropped", "err", err) })
			continue
		}
		l.latest.Store(&nf)
		l.received.Add(1)
	}
}

// Close closes the socket.
func (l *NavListener) Close() error { return l.conn.Close() }
