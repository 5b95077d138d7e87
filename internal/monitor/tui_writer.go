package monitor

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"drivelink/internal/overtake"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries an event line for the viewport.
type logMsg struct{ line string }

// verdictMsg carries the latest evaluation.
type verdictMsg struct{ VerdictRow }

// statsMsg carries the latest transmission counters.
type statsMsg struct{ StatsRow }

type setModeMsg struct{ fn func(overtake.Mode) }

const maxLogLines = 500

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	blockStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// TUIWriter renders verdicts and transmission stats in a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool

	lastState  string
	lastReason string
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(vehicleID string) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(vehicleID), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		// quitting the TUI stops the whole process
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// WriteVerdict implements VerdictWriter. State changes, new blocking
// reasons and recommendations are also logged.
func (w *TUIWriter) WriteVerdict(row VerdictRow) error {
	ts := dimStyle.Render(row.Timestamp.Format("15:04:05.000"))
	if row.State != w.lastState {
		w.program.Send(logMsg{line: fmt.Sprintf("%s state %s -> %s", ts, orNone(w.lastState), row.State)})
		w.lastState = row.State
	}
	if row.BlockingReason != w.lastReason {
		if row.BlockingReason == "" {
			w.program.Send(logMsg{line: fmt.Sprintf("%s %s", ts, okStyle.Render("overtake permitted"))})
		} else {
			w.program.Send(logMsg{line: fmt.Sprintf("%s blocked by %s", ts, blockStyle.Render(row.BlockingReason))})
		}
		w.lastReason = row.BlockingReason
	}
	if r := row.Recommendation; r != nil {
		w.program.Send(logMsg{line: fmt.Sprintf("%s %s %s", ts, titleStyle.Render("RECOMMEND"), r.Action+" "+r.Direction)})
	}
	w.program.Send(verdictMsg{row})
	return nil
}

// WriteStats implements StatsWriter.
func (w *TUIWriter) WriteStats(row StatsRow) error {
	w.program.Send(statsMsg{row})
	return nil
}

// SetModeSwitcher lets the 'm' key cycle the overtake mode.
func (w *TUIWriter) SetModeSwitcher(fn func(overtake.Mode)) {
	w.program.Send(setModeMsg{fn: fn})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

type tuiModel struct {
	vehicleID  string
	table      table.Model
	vp         viewport.Model
	logs       []string
	row        VerdictRow
	haveRow    bool
	stats      StatsRow
	haveStats  bool
	wrap       bool
	autoscroll bool
	width      int
	height     int
	setMode    func(overtake.Mode)
}

func newTUIModel(vehicleID string) tuiModel {
	cols := []table.Column{
		{Title: "Condition", Width: 22},
		{Title: "Threshold", Width: 16},
		{Title: "Actual", Width: 20},
		{Title: "Met", Width: 4},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(8))
	return tuiModel{
		vehicleID:  vehicleID,
		table:      t,
		vp:         viewport.New(0, 0),
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
		case "m":
			if m.setMode != nil {
				next := nextMode(m.row.Mode)
				go m.setMode(next)
			}
		default:
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
	case logMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		m.refreshViewport()
	case verdictMsg:
		m.row = msg.VerdictRow
		m.haveRow = true
		m.table.SetRows(conditionRows(msg.Conditions))
	case statsMsg:
		m.stats = msg.StatsRow
		m.haveStats = true
	case setModeMsg:
		m.setMode = msg.fn
	}
	return m, nil
}

// nextMode cycles disabled -> manual -> auto -> disabled.
func nextMode(current string) overtake.Mode {
	mode, err := overtake.ParseMode(current)
	if err != nil {
		return overtake.ModeDisabled
	}
	switch mode {
	case overtake.ModeDisabled:
		return overtake.ModeManual
	case overtake.ModeManual:
		return overtake.ModeAuto
	default:
		return overtake.ModeDisabled
	}
}

func conditionRows(conds []overtake.Condition) []table.Row {
	rows := make([]table.Row, 0, len(conds))
	for _, c := range conds {
		met := "✘"
		if c.Met {
			met = "✔"
		}
		rows = append(rows, table.Row{c.Name, c.Threshold, c.Actual, met})
	}
	return rows
}

func (m *tuiModel) updateViewportHeight() {
	used := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.table.View()) + lipgloss.Height(m.renderBottom()) + 2
	h := m.height - used
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	divider := strings.Repeat("─", m.vp.Width)
	return strings.Join([]string{
		m.renderHeader(),
		m.table.View(),
		divider,
		m.vp.View(),
		divider,
		m.renderBottom(),
	}, "\n")
}

func (m tuiModel) renderHeader() string {
	title := titleStyle.Render("drivelink " + m.vehicleID)
	if !m.haveRow {
		return title + dimStyle.Render("  waiting for data")
	}
	verdict := okStyle.Render("OVERTAKE OK")
	if !m.row.CanOvertake {
		verdict = blockStyle.Render("BLOCKED: " + m.row.BlockingReason)
	}
	lane := m.row.Lane
	if lane == "" {
		lane = "?"
	}
	return fmt.Sprintf("%s  mode=%s state=%s feed=%s lane=%s speed=%.0f km/h  %s",
		title, m.row.Mode, m.row.State, m.row.Freshness, lane, m.row.EgoSpeedKph, verdict)
}

func (m tuiModel) renderBottom() string {
	indicator := func(on bool) string {
		if on {
			return okStyle.Render("●")
		}
		return blockStyle.Render("●")
	}
	stats := dimStyle.Render("tx: idle")
	if m.haveStats {
		stats = fmt.Sprintf("tx: sent %d skipped %d (%.1f%% saved) %.1f pkt/s last=%s",
			m.stats.PacketsSent, m.stats.PacketsSkipped, m.stats.OptimizationRate, m.stats.SendRate, m.stats.Reason)
	}
	keys := fmt.Sprintf("%s wrap [w]  %s scroll [s]  mode [m]  quit [q]", indicator(m.wrap), indicator(m.autoscroll))
	return stats + "\n" + dimStyle.Render(time.Now().Format("15:04:05")) + "  " + keys
}
