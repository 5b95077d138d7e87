package telemetry

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNoData is returned for frames without a data section.
var ErrNoData = errors.New("frame has no data section")

type feedFrame struct {
	Sequence  uint64    `json:"sequence"`
	Timestamp float64   `json:"timestamp"`
	IP        string    `json:"ip"`
	Data      *feedData `json:"data"`
}

type feedData struct {
	CarState    *CarState    `json:"carState"`
	ModelV2     *ModelV2     `json:"modelV2"`
	SystemState *SystemState `json:"systemState"`
	Road        *Road        `json:"road"`
}

// Decode parses one vehicle feed frame into a Snapshot. ReceivedAt is left
// for the caller to stamp.
func Decode(frame []byte) (*Snapshot, error) {
	var f feedFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		return nil, fmt.Errorf("decode feed frame: %w", err)
	}
	if f.Data == nil {
		return nil, ErrNoData
	}
	return &Snapshot{
		Sequence:    f.Sequence,
		Timestamp:   f.Timestamp,
		CarState:    f.Data.CarState,
		ModelV2:     f.Data.ModelV2,
		SystemState: f.Data.SystemState,
		Road:        f.Data.Road,
	}, nil
}

// DecodeNavigation parses a JSON navigation field set.
func DecodeNavigation(b []byte) (NavigationFields, error) {
	var nf NavigationFields
	if err := json.Unmarshal(b, &nf); err != nil {
		return NavigationFields{}, fmt.Errorf("decode navigation fields: %w", err)
	}
	return nf, nil
}

// EncodeFrame renders a Snapshot in the feed frame layout.
func EncodeFrame(s *Snapshot, ip string) ([]byte, error) {
	return json.Marshal(feedFrame{
		Sequence:  s.Sequence,
		Timestamp: s.Timestamp,
		IP:        ip,
		Data: &feedData{
			CarState:    s.CarState,
			ModelV2:     s.ModelV2,
			SystemState: s.SystemState,
			Road:        s.Road,
		},
	})
}
