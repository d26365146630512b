// Package stats aggregates session results and renders history reports.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/verte-zerg/nback/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := lo.Min(values), lo.Max(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - minVal) / (maxVal - minVal) * float64(last)))
		b.WriteByte(sparkChars[max(0, min(idx, last))])
	}
	return b.String()
}

// Trend summarizes where the history currently stands.
type Trend struct {
	Sessions     int     `json:"sessions"`
	Complete     int     `json:"complete"`
	CurrentLevel int     `json:"current_level"`
	BestLevel    int     `json:"best_level"`
	AvgScore     float64 `json:"avg_score"`
	BestScore    float64 `json:"best_score"`
	Advances     int     `json:"advances"`
	Retreats     int     `json:"retreats"`
}

// Summarize computes the trend over complete sessions. Incomplete sessions
// are counted but do not contribute scores.
func Summarize(sessions []model.SessionSummary) Trend {
	tr := Trend{Sessions: len(sessions)}
	var total float64
	for _, s := range sessions {
		if s.Incomplete {
			continue
		}
		tr.Complete++
		total += s.Score
		tr.BestScore = math.Max(tr.BestScore, s.Score)
		tr.BestLevel = max(tr.BestLevel, s.Level)
		switch {
		case s.Delta > 0:
			tr.Advances++
		case s.Delta < 0:
			tr.Retreats++
		}
	}
	if tr.Complete > 0 {
		tr.AvgScore = total / float64(tr.Complete)
	}
	if n := len(sessions); n > 0 {
		last := sessions[n-1]
		tr.CurrentLevel = max(1, last.Level+last.Delta)
	}
	return tr
}

// RenderSummary prints a summary block for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionSummary) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	tr := Summarize(sessions)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d (%d complete)", tr.Sessions, tr.Complete),
		fmt.Sprintf("Current N: %d", tr.CurrentLevel),
		fmt.Sprintf("Best N: %d", tr.BestLevel),
		fmt.Sprintf("Avg Score: %.2f%%", tr.AvgScore*100),
		fmt.Sprintf("Best Score: %.2f%%", tr.BestScore*100),
		fmt.Sprintf("Advances/Retreats: %d/%d", tr.Advances, tr.Retreats),
		fmt.Sprintf("Levels: [%s]", Sparkline(lo.Map(sessions, func(s model.SessionSummary, _ int) float64 { return float64(s.Level) }))),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints level and score curves.
func RenderCurves(w io.Writer, sessions []model.SessionSummary, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, 10, false)
}

// RenderCurvesWithSize prints level and score curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionSummary, window, totalWidth, height int, useColor bool) error {
	complete := lo.Filter(sessions, func(s model.SessionSummary, _ int) bool { return !s.Incomplete })
	if len(complete) == 0 {
		return nil
	}
	levels := lo.Map(complete, func(s model.SessionSummary, _ int) float64 { return float64(s.Level) })
	scores := lo.Map(complete, func(s model.SessionSummary, _ int) float64 { return s.Score * 100 })

	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Progress", []Series{
		{Name: "N", Values: levels},
		{Name: "Score", Values: MovingAverage(scores, window), Fixed: true, Min: 0, Max: 100},
	}, width, height, useColor)
}

// RenderChannelTable prints per-channel aggregates, weakest first.
func RenderChannelTable(w io.Writer, title string, aggs []model.ChannelStats) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No channel stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for _, line := range channelTable(SortByAccuracy(aggs)) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderChannelCurves prints per-channel accuracy curves.
func RenderChannelCurves(w io.Writer, sessions []model.SessionSummary, perSession map[int64][]model.ChannelStats, channels []model.Channel, window int) error {
	return RenderChannelCurvesWithSize(w, sessions, perSession, channels, window, 0, 10, false)
}

// RenderChannelCurvesWithSize prints per-channel accuracy curves sized to a
// given total width. All channels share one plot.
func RenderChannelCurvesWithSize(w io.Writer, sessions []model.SessionSummary, perSession map[int64][]model.ChannelStats, channels []model.Channel, window, totalWidth, height int, useColor bool) error {
	if len(channels) == 0 || len(sessions) == 0 {
		return nil
	}
	series := make([]Series, 0, len(channels))
	for _, ch := range channels {
		values := make([]float64, 0, len(sessions))
		for _, s := range sessions {
			cs, ok := lo.Find(perSession[s.SessionID], func(c model.ChannelStats) bool { return c.Channel == ch })
			if !ok || cs.Defined == 0 {
				continue
			}
			values = append(values, cs.Accuracy*100)
		}
		series = append(series, Series{Name: string(ch), Values: MovingAverage(values, window), Fixed: true, Min: 0, Max: 100})
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Channel Accuracy", series, width, height, useColor)
}
