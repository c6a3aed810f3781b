package service

import (
	"context"

	"github.com/hakwon-ops/roster-api/internal/models"
)

// OccupancyService projects the resolved roster into an hourly occupancy
// histogram: each present student occupies the building for a fixed stay
// starting at their resolved arrival. Pure and stateless.
type OccupancyService struct {
	roster    *RosterService
	stayHours int
}

// NewOccupancyService constructs the forecaster.
func NewOccupancyService(roster *RosterService, stayHours int) *OccupancyService {
	if stayHours <= 0 {
		stayHours = 4
	}
	return &OccupancyService{roster: roster, stayHours: stayHours}
}

// Forecast buckets the date's roster into 1-hour bins spanning the earliest
// arrival hour to the latest departure hour. Students whose arrival cannot
// be resolved stay on the roster but are excluded here.
func (s *OccupancyService) Forecast(ctx context.Context, date models.DateKey) []models.OccupancyBin {
	entries := s.roster.Resolve(ctx, date)
	return s.forecast(entries)
}

type interval struct {
	start int // minutes since midnight
	end   int
}

func (s *OccupancyService) forecast(entries []models.RosterEntry) []models.OccupancyBin {
	intervals := make([]interval, 0, len(entries))
	for _, entry := range entries {
		start := MinutesOf(entry.Arrival)
		if start == unresolvedMinutes {
			continue
		}
		intervals = append(intervals, interval{start: start, end: start + s.stayHours*60})
	}
	if len(intervals) == 0 {
		return nil
	}

	firstHour := intervals[0].start / 60
	lastHour := (intervals[0].end + 59) / 60
	for _, iv := range intervals[1:] {
		if h := iv.start / 60; h < firstHour {
			firstHour = h
		}
		if h := (iv.end + 59) / 60; h > lastHour {
			lastHour = h
		}
	}

	bins := make([]models.OccupancyBin, 0, lastHour-firstHour)
	for hour := firstHour; hour < lastHour; hour++ {
		binStart := hour * 60
		binEnd := binStart + 60
		count := 0
		for _, iv := range intervals {
			// half-open overlap test
			if iv.start < binEnd && iv.end > binStart {
				count++
			}
		}
		bins = append(bins, models.OccupancyBin{Hour: hour, Count: count})
	}
	return bins
}
