package monitor

import (
	"context"
	"time"

	"drivelink/internal/logging"
	"drivelink/internal/telemetry"
	"drivelink/internal/transmit"
)

// CommandLaneChange is the navigation command used to forward an auto-mode
// recommendation; the argument is the direction.
const CommandLaneChange = "LANECHANGE"

type txLoop struct {
	nav      NavSource
	gate     *transmit.Gate
	sender   Transmitter
	stats    StatsWriter
	interval time.Duration
}

// AttachTransmit wires the navigation loop. tx and sw may be nil: without a
// transmitter the gate runs dry, without a stats writer decisions are not logged.
func (m *Monitor) AttachTransmit(nav NavSource, gate *transmit.Gate, tx Transmitter, sw StatsWriter, interval time.Duration) {
	if interval <= 0 {
		interval = transmit.DefaultMinInterval / 2
	}
	m.tx = &txLoop{nav: nav, gate: gate, sender: tx, stats: sw, interval: interval}
}

// RunTransmit offers the latest navigation fields to the gate every
// interval until ctx is done.
func (m *Monitor) RunTransmit(ctx context.Context) {
	log := logging.FromContext(ctx)
	if m.tx == nil {
		log.Warn("transmit loop not attached")
		return
	}
	log.Info("starting navigation transmit", "interval", m.tx.interval)
	ticker := time.NewTicker(m.tx.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.transmitStep(ctx)
		case <-ctx.Done():
			log.Info("stopping navigation transmit", "stats", m.tx.gate.Stats().Format())
			return
		}
	}
}

func (m *Monitor) transmitStep(ctx context.Context) {
	log := logging.FromContext(ctx)
	nf, ok := m.tx.nav.Latest()
	cmd := m.takePending()
	if !ok && cmd == nil {
		return
	}
	if cmd != nil {
		nf.Command, nf.CommandArg = CommandLaneChange, cmd.Direction
		log.Info("forwarding lane change command", "direction", cmd.Direction)
	}

	var emit transmit.EmitFunc
	if m.tx.sender != nil {
		emit = func(nf telemetry.NavigationFields) error { return m.tx.sender.Send(ctx, nf) }
	}
	d, err := m.tx.gate.Offer(ctx, nf, emit)
	if err != nil {
		log.Error("navigation send failed", "err", err)
	}
	if m.tx.stats == nil {
		return
	}
	if err := m.tx.stats.WriteStats(newStatsRow(m.vehicleID, d, m.tx.gate.Stats(), m.now())); err != nil {
		log.Error("stats write failed", "err", err)
	}
}
