package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/nback/internal/alphabet"
	"github.com/verte-zerg/nback/internal/model"
)

const cellWidth = 5

// Colors of the extra squares in multi-stimulus sessions.
var squareColors = []string{"#4A90E2", "#52C41A", "#FA8C16", "#EB2F96"}

var keyForChannel = map[model.Channel]rune{
	model.PositionChannel(0):    'a',
	model.PositionChannel(1):    's',
	model.PositionChannel(2):    'd',
	model.PositionChannel(3):    'g',
	model.Channel(model.Color):  'f',
	model.Channel(model.Image):  'j',
	model.Channel(model.Audio):  'l',
	model.Channel(model.Audio2): 'k',
	model.VisVis:                'v',
	model.VisAudio:              'b',
	model.AudioVis:              'n',
}

// channelForKey maps a match key to an active channel.
func channelForKey(r rune, channels []model.Channel) (model.Channel, bool) {
	for _, ch := range channels {
		if k, ok := keyForChannel[ch]; ok && k == r {
			return ch, true
		}
	}
	return "", false
}

type cell struct {
	fill  string
	glyph string
}

// gridCells builds the nine grid cells from the visible cues. The square of
// the first position channel takes the color cue, and the vis letter or the
// image cue, when present.
func (m *Model) gridCells() [model.GridCells]cell {
	var cells [model.GridCells]cell
	colorHex := ""
	if in, ok := m.visible[model.Channel(model.Color)]; ok {
		colorHex = alphabet.ColorHex(in.Value)
	}
	glyph := ""
	if in, ok := m.visible[model.Channel(model.Image)]; ok {
		glyph = in.Symbol
	}
	if in, ok := m.visible[model.Vis]; ok {
		glyph = in.Symbol
	}
	for i, ch := range m.sess.Channels() {
		if ch.Modality() != model.Position {
			continue
		}
		in, ok := m.visible[ch]
		if !ok || in.Value < 0 || in.Value >= model.GridCells {
			continue
		}
		c := cell{fill: squareColors[min(i, len(squareColors)-1)]}
		if ch == model.PositionChannel(0) {
			if colorHex != "" {
				c.fill = colorHex
			}
			c.glyph = glyph
		}
		cells[in.Value] = c
	}
	return cells
}

func renderGrid(cells [model.GridCells]cell) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3A3A3A"))
	rows := make([]string, 0, 3)
	for r := 0; r < 3; r++ {
		cols := make([]string, 0, 3)
		for c := 0; c < 3; c++ {
			cols = append(cols, renderCell(cells[r*3+c]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	}
	return border.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderCell(c cell) string {
	style := lipgloss.NewStyle().Width(cellWidth).Height(2).Align(lipgloss.Center, lipgloss.Center)
	if c.fill == "" {
		return style.Render("")
	}
	return style.Background(lipgloss.Color(c.fill)).Foreground(lipgloss.Color("#111111")).Bold(true).Render(c.glyph)
}

// renderCues renders the non-spatial cues as text lines.
func (m *Model) renderCues() []string {
	var lines []string
	for _, ch := range m.sess.Streams() {
		switch ch.Modality() {
		case model.Position:
			continue
		case model.Color, model.Image, model.Combination:
			if m.mode.Has(model.Position) {
				continue
			}
		}
		value := ""
		if in, ok := m.visible[ch]; ok {
			value = cueText(in)
		}
		if ch.Modality() == model.Arithmetic {
			value += "  = " + m.answer
			if m.answered {
				value += " ✓"
			}
		}
		lines = append(lines, cueLabelStyle.Render(string(ch))+m.markChannel(ch, value))
	}
	return lines
}

func cueText(in model.Instruction) string {
	switch in.Modality {
	case model.Arithmetic:
		return fmt.Sprintf("%s %d", in.Symbol, in.Value)
	case model.Color:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(alphabet.ColorHex(in.Value))).Render(in.Symbol)
	default:
		return in.Symbol
	}
}

func (m *Model) markChannel(ch model.Channel, text string) string {
	if m.flagged[ch] {
		return flaggedStyle.Render(text)
	}
	return text
}

// renderKeys renders the key legend with the last trial's feedback.
func (m *Model) renderKeys() string {
	parts := make([]string, 0, len(m.sess.Channels()))
	for _, ch := range m.sess.Channels() {
		k, ok := keyForChannel[ch]
		if !ok {
			continue
		}
		label := fmt.Sprintf("[%c] %s", k, ch)
		switch {
		case m.flagged[ch]:
			label = flaggedStyle.Render(label)
		default:
			label = feedbackStyle(m.feedback, ch).Render(label)
		}
		parts = append(parts, label)
	}
	if m.mode.Has(model.Arithmetic) {
		parts = append(parts, feedbackStyle(m.feedback, model.Channel(model.Arithmetic)).Render("[0-9 enter] answer"))
	}
	parts = append(parts, pendingStyle.Render("[space] pause  [esc] end"))
	return strings.Join(parts, "  ")
}

func feedbackStyle(fb map[model.Channel]model.Outcome, ch model.Channel) lipgloss.Style {
	out, ok := fb[ch]
	if !ok {
		return pendingStyle
	}
	if out.Correct() {
		return hitStyle
	}
	return missStyle
}
