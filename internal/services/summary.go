// Package services computes the derived dashboard data from the record
// collection.
package services

import "snapexpense/internal/core"

// chartSize is how many records the recent-activity series shows.
const chartSize = 7

// recentSize is how many records the latest-receipts list shows.
const recentSize = 3

// ChartBar is one bar of the recent-activity series.
type ChartBar struct {
	Label  string // merchant name truncated to 5 characters
	Amount core.Money
	Height int  // rounded percent of the tallest bar
	Latest bool // most recent record, visually distinguished
}

// DashboardSummary is everything the dashboard renders.
type DashboardSummary struct {
	Total  core.Money
	Count  int
	Series []ChartBar    // last 7 records, oldest to newest
	Recent []core.Record // 3 most recent records
}

// Summarize derives the dashboard data from the collection, which is held
// newest first.
func Summarize(records []core.Record) DashboardSummary {
	s := DashboardSummary{Count: len(records)}

	for _, r := range records {
		s.Total.Pence += r.Amount.Pence
	}

	n := len(records)
	if n > 0 {
		take := n
		if take > chartSize {
			take = chartSize
		}
		// The chart reads oldest to newest left to right.
		var maxPence int64
		for i := take - 1; i >= 0; i-- {
			r := records[i]
			if r.Amount.Pence > maxPence {
				maxPence = r.Amount.Pence
			}
			s.Series = append(s.Series, ChartBar{
				Label:  truncate(r.Merchant, 5),
				Amount: r.Amount,
			})
		}
		for i := range s.Series {
			s.Series[i].Height = barHeight(s.Series[i].Amount.Pence, maxPence)
		}
		s.Series[len(s.Series)-1].Latest = true
	}

	recent := recentSize
	if recent > n {
		recent = n
	}
	s.Recent = append(s.Recent, records[:recent]...)

	return s
}

// barHeight scales a bar to a rounded percent of the tallest one, keeping
// very small values visible.
func barHeight(pence, maxPence int64) int {
	if maxPence <= 0 || pence <= 0 {
		return 0
	}
	h := int((pence*100 + maxPence/2) / maxPence)
	if h > 0 && h < 2 {
		h = 2
	}
	if h > 100 {
		h = 100
	}
	return h
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
