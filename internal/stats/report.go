package stats

import (
	"context"

	"github.com/samber/lo"

	"github.com/verte-zerg/nback/internal/model"
	"github.com/verte-zerg/nback/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionSummary
	WindowSessionIDs []int64
	PerSession       map[int64][]model.ChannelStats
	ChannelsAll      []model.ChannelStats
	ChannelsWindow   []model.ChannelStats
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	allIDs := sessionIDs(sessions)
	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	perSession, err := st.ListChannelStats(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		PerSession:       perSession,
		ChannelsAll:      mergeFor(perSession, allIDs),
		ChannelsWindow:   mergeFor(perSession, windowIDs),
	}, nil
}

// Channels returns the channels seen across the report, in first-seen order.
func (r Report) Channels() []model.Channel {
	var out []model.Channel
	for _, s := range r.Sessions {
		for _, cs := range r.PerSession[s.SessionID] {
			if !lo.Contains(out, cs.Channel) {
				out = append(out, cs.Channel)
			}
		}
	}
	return out
}

func mergeFor(perSession map[int64][]model.ChannelStats, ids []int64) []model.ChannelStats {
	groups := lo.Map(ids, func(id int64, _ int) []model.ChannelStats { return perSession[id] })
	return Merge(groups...)
}

func sessionIDs(sessions []model.SessionSummary) []int64 {
	return lo.Map(sessions, func(s model.SessionSummary, _ int) int64 { return s.SessionID })
}

func lastSessionIDs(sessions []model.SessionSummary, window int) []int64 {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}
