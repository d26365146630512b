package stats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"

	"github.com/verte-zerg/nback/internal/model"
)

type channelColumn struct {
	header string
	right  bool
	cell   func(model.ChannelStats) string
}

var channelColumns = []channelColumn{
	{header: "Channel", cell: func(cs model.ChannelStats) string { return string(cs.Channel) }},
	{header: "Accuracy", right: true, cell: func(cs model.ChannelStats) string { return fmt.Sprintf("%.2f%%", cs.Accuracy*100) }},
	{header: "Hits", right: true, cell: func(cs model.ChannelStats) string { return strconv.Itoa(cs.TruePositive) }},
	{header: "Misses", right: true, cell: func(cs model.ChannelStats) string { return strconv.Itoa(cs.FalseNegative) }},
	{header: "False", right: true, cell: func(cs model.ChannelStats) string { return strconv.Itoa(cs.FalsePositive) }},
	{header: "Correct Rej", right: true, cell: func(cs model.ChannelStats) string { return strconv.Itoa(cs.TrueNegative) }},
	{header: "Avg RT", right: true, cell: func(cs model.ChannelStats) string { return fmt.Sprintf("%.1f", cs.MeanReactionTicks) }},
}

// ChannelHeaders returns the column titles of a channel table.
func ChannelHeaders() []string {
	return lo.Map(channelColumns, func(c channelColumn, _ int) string { return c.header })
}

// ChannelCells formats one channel row in column order.
func ChannelCells(cs model.ChannelStats) []string {
	return lo.Map(channelColumns, func(c channelColumn, _ int) string { return c.cell(cs) })
}

// channelTable lays out the channels, in the given order, under a header line.
// Column widths follow the widest cell, counted in terminal cells.
func channelTable(aggs []model.ChannelStats) []string {
	rows := make([][]string, 0, len(aggs)+1)
	rows = append(rows, ChannelHeaders())
	for _, cs := range aggs {
		rows = append(rows, ChannelCells(cs))
	}
	widths := make([]int, len(channelColumns))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	return lo.Map(rows, func(row []string, _ int) string {
		cells := make([]string, len(row))
		for i, cell := range row {
			if channelColumns[i].right {
				cells[i] = runewidth.FillLeft(cell, widths[i])
			} else {
				cells[i] = runewidth.FillRight(cell, widths[i])
			}
		}
		return strings.Join(cells, " ")
	})
}
