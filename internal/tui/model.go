// Package tui provides the Bubble Tea N-back player.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/nback/internal/level"
	"github.com/verte-zerg/nback/internal/model"
	"github.com/verte-zerg/nback/internal/random"
	"github.com/verte-zerg/nback/internal/session"
	"github.com/verte-zerg/nback/internal/stats"
	"github.com/verte-zerg/nback/internal/store"
)

// DefaultTickInterval is the wall-clock length of one session tick.
const DefaultTickInterval = 100 * time.Millisecond

const historyWindow = 20

type phase int

const (
	phasePlaying phase = iota
	phaseFinished
)

type tickMsg struct {
	run int
}

// Options configures the player.
type Options struct {
	Mode         model.Mode
	Store        *store.Store
	Seeds        random.Source
	TickInterval time.Duration
	Logger       zerolog.Logger
	// RestoreLevel continues from the level after the last stored session.
	RestoreLevel bool
}

// Model implements the Bubble Tea player UI.
type Model struct {
	mode  model.Mode
	store *store.Store
	seeds random.Source
	tick  time.Duration
	log   zerolog.Logger

	width  int
	height int

	sess      *session.Session
	run       int
	phase     phase
	startedAt time.Time

	visible   map[model.Channel]model.Instruction
	remaining int
	flagged   map[model.Channel]bool
	feedback  map[model.Channel]model.Outcome
	answer    string
	answered  bool

	history  []model.SessionSummary
	last     *model.SessionStats
	decision level.Decision
	notice   string
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	hitStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	missStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	flaggedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FADB14"))
	cueLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Width(7)
)

// NewModel constructs the player. It loads recent history, optionally restores
// the level from it, and starts the first session.
func NewModel(opts Options) (*Model, error) {
	m := &Model{
		mode:  opts.Mode,
		store: opts.Store,
		seeds: opts.Seeds,
		tick:  opts.TickInterval,
		log:   opts.Logger,
	}
	if m.seeds == nil {
		m.seeds = random.Crypto()
	}
	if m.tick <= 0 {
		m.tick = DefaultTickInterval
	}
	m.loadHistory()
	if opts.RestoreLevel {
		m.mode = level.Resume(m.mode, m.history)
	}
	if err := m.startSession(); err != nil {
		return nil, err
	}
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.scheduleTick()
}

func (m *Model) scheduleTick() tea.Cmd {
	run := m.run
	return tea.Tick(m.tick, func(time.Time) tea.Msg {
		return tickMsg{run: run}
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if msg.run != m.run || m.phase != phasePlaying {
			return m, nil
		}
		m.advance()
		if m.phase != phasePlaying {
			return m, nil
		}
		return m, m.scheduleTick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		if m.phase == phasePlaying {
			m.finishSession()
		}
		return m, tea.Quit
	}

	if m.phase == phaseFinished {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case " ", "enter":
			if err := m.startSession(); err != nil {
				m.notice = err.Error()
				return m, nil
			}
			return m, m.scheduleTick()
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		m.submitAnswer()
		return m, nil
	case tea.KeyBackspace, tea.KeyDelete:
		if n := len(m.answer); n > 0 {
			m.answer = m.answer[:n-1]
		}
		return m, nil
	case tea.KeySpace:
		m.togglePause()
		return m, nil
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			m.handleRune(r)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleRune(r rune) {
	if strings.ContainsRune("0123456789-.", r) && m.mode.Has(model.Arithmetic) {
		if !m.answered {
			m.answer += string(r)
		}
		return
	}
	ch, ok := channelForKey(r, m.sess.Channels())
	if !ok {
		return
	}
	if m.sess.OnInput(ch, m.sess.Offset()) {
		m.flagged[ch] = true
	}
}

func (m *Model) submitAnswer() {
	if m.answer == "" || !m.mode.Has(model.Arithmetic) {
		return
	}
	v, err := strconv.ParseFloat(m.answer, 64)
	if err != nil {
		m.answer = ""
		return
	}
	if m.sess.OnAnswer(v, m.sess.Offset()) {
		m.answered = true
	}
}

func (m *Model) togglePause() {
	if m.sess.Paused() {
		m.sess.Resume()
		return
	}
	m.sess.Pause()
}

// advance feeds one tick to the session and applies its instructions.
func (m *Model) advance() {
	ins := m.sess.OnTick(1)
	if m.sess.Paused() {
		return
	}
	presented := false
	for _, in := range ins {
		if in.Kind == model.InstructionPresent && !presented {
			presented = true
			m.visible = map[model.Channel]model.Instruction{}
			m.flagged = map[model.Channel]bool{}
			m.feedback = map[model.Channel]model.Outcome{}
			m.answer = ""
			m.answered = false
			m.remaining = in.DisplayTicks
		}
	}
	for _, in := range ins {
		switch in.Kind {
		case model.InstructionFeedback:
			m.feedback[in.Channel] = in.Outcome
		case model.InstructionPresent:
			m.visible[in.Channel] = in
		}
	}
	if m.remaining > 0 {
		m.remaining--
		if m.remaining == 0 {
			m.visible = map[model.Channel]model.Instruction{}
		}
	}
	if m.sess.State() == session.Complete {
		m.finishSession()
	}
}

func (m *Model) startSession() error {
	seed, err := m.seeds()
	if err != nil {
		return err
	}
	sess, err := session.Start(m.mode, seed, session.WithLogger(m.log))
	if err != nil {
		return err
	}
	m.sess = sess
	m.run++
	m.phase = phasePlaying
	m.startedAt = time.Now()
	m.visible = map[model.Channel]model.Instruction{}
	m.flagged = map[model.Channel]bool{}
	m.feedback = map[model.Channel]model.Outcome{}
	m.answer = ""
	m.answered = false
	m.remaining = 0
	m.notice = ""
	return nil
}

func (m *Model) finishSession() {
	if m.phase == phaseFinished {
		return
	}
	m.phase = phaseFinished
	st := m.sess.End()
	recent := m.recentForMode()
	next, decision := level.NextSessionConfig(st, m.mode, recent)
	m.decision = decision
	m.last = &st

	rec := m.sess.Record(m.startedAt, time.Now(), decision.Delta)
	var id int64
	if m.store != nil {
		var err error
		id, err = m.store.InsertSession(context.Background(), rec)
		if err != nil {
			m.log.Error().Err(err).Msg("failed to save session")
			m.notice = "session not saved: " + err.Error()
		}
	}
	m.history = append(m.history, model.SessionSummary{
		SessionID:  id,
		EndedAt:    rec.EndedAt,
		Mode:       st.Mode,
		Level:      st.Level,
		Trials:     st.Trials,
		Score:      st.Score,
		Delta:      decision.Delta,
		Strict:     st.Strict,
		Manual:     st.Manual,
		Incomplete: st.Incomplete,
	})
	m.log.Info().
		Str("mode", st.Mode).
		Int("level", st.Level).
		Float64("score", st.Score).
		Int("delta", decision.Delta).
		Bool("incomplete", st.Incomplete).
		Msg("session complete")
	m.mode = next
}

func (m *Model) recentForMode() []model.SessionSummary {
	var out []model.SessionSummary
	for _, s := range m.history {
		if s.Mode == m.mode.Name {
			out = append(out, s)
		}
	}
	return out
}

func (m *Model) loadHistory() {
	if m.store == nil {
		return
	}
	recent, err := m.store.RecentSessions(context.Background(), m.mode.Name, historyWindow)
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to load session history")
		return
	}
	m.history = recent
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	if m.phase == phaseFinished {
		body = m.renderResults()
	} else {
		body = m.renderBoard()
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return body + "\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	content := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, body)
	return content + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}

func (m *Model) renderBoard() string {
	trial, total := m.sess.Trial()
	title := titleStyle.Render(fmt.Sprintf("%s · N=%d", m.mode.Name, m.mode.Level))
	if m.mode.VariableN || m.mode.Crab {
		if len(m.visible) > 0 {
			title += footerStyle.Render(fmt.Sprintf(" (this trial %d-back)", m.sess.Back()))
		}
	}
	parts := []string{title}
	if m.mode.Has(model.Position) {
		parts = append(parts, renderGrid(m.gridCells()))
	}
	parts = append(parts, m.renderCues()...)
	status := fmt.Sprintf("Trial %d/%d", min(trial+1, total), total)
	if m.sess.Paused() {
		status += noticeStyle.Render("  paused")
	}
	parts = append(parts, status, m.renderKeys())
	if m.notice != "" {
		parts = append(parts, noticeStyle.Render(m.notice))
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (m *Model) renderResults() string {
	if m.last == nil {
		return ""
	}
	st := m.last
	lines := []string{titleStyle.Render(fmt.Sprintf("%s · N=%d · score %.0f%%", st.Mode, st.Level, st.Score*100))}
	if st.Incomplete {
		lines = append(lines, noticeStyle.Render(fmt.Sprintf("ended after %d of %d trials", st.Trials, st.PlannedTrials)))
	}
	for _, cs := range st.Channels {
		lines = append(lines, fmt.Sprintf("%-10s %5.1f%%  hits %d  misses %d  false %d",
			cs.Channel, cs.Accuracy*100, cs.TruePositive, cs.FalseNegative, cs.FalsePositive))
	}
	if weak, ok := stats.WeakestChannel(st.Channels); ok && len(st.Channels) > 1 {
		lines = append(lines, footerStyle.Render(fmt.Sprintf("weakest: %s", weak.Channel)))
	}
	lines = append(lines, "", m.decision.Rationale)
	for _, dev := range m.decision.Deviations {
		lines = append(lines, noticeStyle.Render("· "+dev))
	}
	lines = append(lines, fmt.Sprintf("next: N=%d", m.mode.Level), "")
	lines = append(lines, footerStyle.Render("space/enter: next session · q: quit"))
	if m.notice != "" {
		lines = append(lines, noticeStyle.Render(m.notice))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.phase == phasePlaying {
		trial, total := m.sess.Trial()
		progress := 0
		if total > 0 {
			progress = int(float64(trial) / float64(total) * 100)
		}
		segments = append(segments, fmt.Sprintf("Progress %d%%", progress))
	}
	if n := len(m.history); n > 0 {
		last := m.history[n-1]
		segments = append(segments, fmt.Sprintf("Last N=%d · %.1f%%", last.Level, last.Score*100))
		tr := stats.Summarize(m.history)
		segments = append(segments, fmt.Sprintf("Best N=%d · Avg %.1f%%", tr.BestLevel, tr.AvgScore*100))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
