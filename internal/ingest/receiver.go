package ingest

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"drivelink/internal/logging"
	"drivelink/internal/telemetry"
)

// heartbeatValue is what the client writes to keep the feed session alive.
const heartbeatValue = 2

// Frame outcomes reported to the FrameRecorder.
const (
	FrameOK        = "ok"
	FrameHeartbeat = "heartbeat"
	FrameRejected  = "rejected"
	FrameInvalid   = "invalid"
)

// FrameRecorder counts frame outcomes.
type FrameRecorder interface {
	FrameReceived(result string)
}

// Options configures a Receiver. Zero durations fall back to the defaults.
type Options struct {
	Address        string
	Heartbeat      time.Duration
	ReconnectDelay time.Duration
	ReadTimeout    time.Duration
	DataTimeout    time.Duration
}

func (o *Options) setDefaults() {
	if o.Heartbeat <= 0 {
		o.Heartbeat = 5 * time.Second
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = 2 * time.Second
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 30 * time.Second
	}
	if o.DataTimeout <= 0 {
		o.DataTimeout = 15 * time.Second
	}
}

// Receiver keeps a TCP session to the vehicle feed and swaps every decoded
// snapshot into the store. It reconnects until its context is cancelled.
type Receiver struct {
	opts       Options
	store      *telemetry.Store
	rec        FrameRecorder
	now        func() time.Time
	checkEvery time.Duration
	dialer     net.Dialer
	sometimes  rate.Sometimes

	lastData atomic.Int64
}

// NewReceiver returns a receiver writing into store. rec may be nil.
func NewReceiver(opts Options, store *telemetry.Store, rec FrameRecorder) *Receiver {
	opts.setDefaults()
	return &Receiver{
		opts:       opts,
		store:      store,
		rec:        rec,
		now:        time.Now,
		checkEvery: time.Second,
		dialer:     net.Dialer{Timeout: 5 * time.Second},
		sometimes:  rate.Sometimes{First: 10, Every: 100},
	}
}

// Run connects, reads and reconnects until ctx is done. It also clears the
// store when no data has arrived for the data timeout.
func (r *Receiver) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)
	log.Info("vehicle feed receiver started", "addr", r.opts.Address)
	defer log.Info("vehicle feed receiver stopped")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.watchData(ctx) })
	g.Go(func() error { return r.connectLoop(ctx) })
	return g.Wait()
}

func (r *Receiver) connectLoop(ctx context.Context) error {
	log := logging.FromContext(ctx)
	for {
		conn, err := r.dialer.DialContext(ctx, "tcp", r.opts.Address)
		if err == nil {
			log.Info("vehicle feed connected", "addr", r.opts.Address)
			err = r.serve(ctx, conn)
		}
		if ctx.Err() != nil {
			return nil
		}
		log.Warn("vehicle feed connection lost", "err", err, "retry_in", r.opts.ReconnectDelay)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(r.opts.ReconnectDelay):
		}
	}
}

func (r *Receiver) serve(ctx context.Context, conn net.Conn) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return conn.Close()
	})
	g.Go(func() error { return r.heartbeat(ctx, conn) })
	g.Go(func() error { return r.readLoop(ctx, conn) })
	return g.Wait()
}

func (r *Receiver) heartbeat(ctx context.Context, conn net.Conn) error {
	t := time.NewTicker(r.opts.Heartbeat)
	defer t.Stop()
	var beat [4]byte
	binary.BigEndian.PutUint32(beat[:], heartbeatValue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			_ = conn.SetWriteDeadline(time.Now().Add(r.opts.Heartbeat))
			if _, err := conn.Write(beat[:]); err != nil {
				return fmt.Errorf("write heartbeat: %w", err)
			}
		}
	}
}

func (r *Receiver) readLoop(ctx context.Context, conn net.Conn) error {
	br := bufio.NewReader(conn)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(r.opts.ReadTimeout))
		payload, err := ReadFrame(br, MaxFrameSize)
		switch {
		case errors.Is(err, ErrFrameTooSmall), errors.Is(err, ErrFrameTooLarge):
			r.record(FrameRejected)
			r.sometimes.Do(func() {
				logging.FromContext(ctx).Warn("vehicle feed frame rejected", "err", err)
			})
			continue
		case errors.Is(err, ErrFrameCorrupt):
			r.record(FrameRejected)
			return fmt.Errorf("read feed frame: %w", err)
		case err != nil:
			return fmt.Errorf("read feed frame: %w", err)
		case payload == nil:
			r.record(FrameHeartbeat)
			continue
		}
		r.handle(ctx, payload)
	}
}

func (r *Receiver) handle(ctx context.Context, payload []byte) {
	snap, err := telemetry.Decode(payload)
	if err != nil {
		r.record(FrameInvalid)
		r.sometimes.Do(func() {
			logging.FromContext(ctx).Warn("vehicle feed frame invalid", "err", err, "size", len(payload))
		})
		return
	}
	now := r.now()
	snap.ReceivedAt = now
	r.store.Store(snap)
	r.lastData.Store(now.UnixNano())
	r.record(FrameOK)
}

func (r *Receiver) watchData(ctx context.Context) error {
	t := time.NewTicker(r.checkEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			last := r.lastData.Load()
			if last == 0 {
				continue
			}
			if r.now().Sub(time.Unix(0, last)) > r.opts.DataTimeout {
				r.store.Clear()
				r.lastData.Store(0)
				logging.FromContext(ctx).Warn("vehicle feed silent, snapshot cleared", "timeout", r.opts.DataTimeout)
			}
		}
	}
}

func (r *Receiver) record(result string) {
	if r.rec != nil {
		r.rec.FrameReceived(result)
	}
}
