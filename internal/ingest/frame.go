// Package ingest receives the vehicle feed over TCP and navigation field
// sets over UDP.
package ingest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Frame size bounds. A zero length is a heartbeat.
const (
	MinFrameSize = 8
	MaxFrameSize = 4096
)

// maxDrainFactor bounds how far past maxSize a frame is still drained.
// Longer headers are taken as a corrupt stream.
const maxDrainFactor = 4

var (
	ErrFrameTooSmall = errors.New("frame too small")
	ErrFrameTooLarge = errors.New("frame too large")
	ErrFrameCorrupt  = errors.New("corrupt frame header")
)

// ReadFrame reads one 4-byte big-endian length prefix and its payload.
// Heartbeats return a nil payload and nil error. Out-of-range frames are
// drained so the stream stays aligned, and reported as ErrFrameTooSmall or
// ErrFrameTooLarge. A length beyond maxDrainFactor*maxSize is not drained
// and yields ErrFrameCorrupt; that and any other error mean the stream is
// unusable.
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n == 0 {
		return nil, nil
	}
	if int64(n) > maxDrainFactor*int64(maxSize) {
		return nil, fmt.Errorf("%w: length %d exceeds %d", ErrFrameCorrupt, n, maxDrainFactor*maxSize)
	}
	if n < MinFrameSize || int64(n) > int64(maxSize) {
		if _, err := io.CopyN(io.Discard, r, int64(n)); err != nil {
			return nil, fmt.Errorf("drain %d byte frame: %w", n, err)
		}
		if n < MinFrameSize {
			return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooSmall, n)
		}
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFrameTooLarge, n, maxSize)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteFrame writes payload with its length prefix. An empty payload is a heartbeat.
func WriteFrame(w io.Writer, payload []byte) error {
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[4:], payload)
	_, err := w.Write(buf)
	return err
}
