package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/nback/internal/model"
)

// ListChannelStats returns per-channel stats keyed by session ID.
func (s *Store) ListChannelStats(ctx context.Context, sessionIDs []int64) (map[int64][]model.ChannelStats, error) {
	result := map[int64][]model.ChannelStats{}
	if len(sessionIDs) == 0 {
		return result, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT session_id, channel, modality, true_positive, true_negative,
		false_positive, false_negative, defined, accuracy, mean_reaction_ticks
		FROM session_channel_stats
		WHERE session_id IN (%s)
		ORDER BY session_id, rowid`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			log.Debug().Err(cerr).Msg("close rows")
		}
	}()

	for rows.Next() {
		var id int64
		var cs model.ChannelStats
		var channel, modality string
		if err := rows.Scan(&id, &channel, &modality, &cs.TruePositive, &cs.TrueNegative,
			&cs.FalsePositive, &cs.FalseNegative, &cs.Defined, &cs.Accuracy, &cs.MeanReactionTicks); err != nil {
			return nil, err
		}
		cs.Channel = model.Channel(channel)
		cs.Modality = model.Modality(modality)
		result[id] = append(result[id], cs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
