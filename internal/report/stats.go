package report

import (
	"math"

	"github.com/maerty1/asterisk-stats-sub000/internal/models"
)

const (
	// slaThresholdSeconds is the queue service-level target: answered
	// within 20 seconds of queue entry.
	slaThresholdSeconds = 20

	// maxSaneSeconds bounds wait and duration samples; values outside
	// [0, maxSaneSeconds] come from corrupt rows and are excluded from
	// averages rather than folded in as zero.
	maxSaneSeconds = 7200
)

// Aggregate reduces a classified call set into QueueStats in a single
// pass. Callback statuses must already be assigned (the correlator runs
// before aggregation for any set containing missed calls).
func Aggregate(calls []*models.Call, direction models.Direction) *models.QueueStats {
	stats := &models.QueueStats{Direction: direction}
	slaApplies := direction == models.DirectionQueue || direction == models.DirectionOutboundQueue

	var waitSum, waitN int
	var waitAnsweredSum, waitAnsN int
	var durationSum, durationN int
	var queueTimeSum, queueTimeN int

	for _, c := range calls {
		stats.TotalCalls++
		missed := IsMissed(c)

		hour := -1
		if !c.StartTime.IsZero() {
			hour = c.StartTime.Hour()
			stats.Hourly[hour].Total++
		}

		if missed {
			stats.AbandonedCalls++
			switch c.CallbackStatus {
			case models.CallbackByCaller:
				stats.ClientCallbacks++
			case models.CallbackByAgent:
				stats.AgentCallbacks++
			default:
				stats.Unhandled++
			}
			if hour >= 0 {
				stats.Hourly[hour].Abandoned++
				if c.CallbackStatus == models.CallbackUnhandled || c.CallbackStatus == models.CallbackUnset {
					stats.Hourly[hour].Unhandled++
				}
			}
		} else {
			stats.AnsweredCalls++
			if hour >= 0 {
				stats.Hourly[hour].Answered++
			}
		}

		if c.WaitSeconds != nil && saneSeconds(*c.WaitSeconds) {
			waitSum += *c.WaitSeconds
			waitN++
			if !missed {
				waitAnsweredSum += *c.WaitSeconds
				waitAnsN++
				if slaApplies && *c.WaitSeconds <= slaThresholdSeconds {
					stats.SLACount++
				}
			}
		}

		if !missed && c.DurationSeconds != nil && saneSeconds(*c.DurationSeconds) {
			durationSum += *c.DurationSeconds
			durationN++
		}

		if c.EndTime != nil && !c.StartTime.IsZero() {
			secs := int(c.EndTime.Sub(c.StartTime).Seconds())
			if saneSeconds(secs) {
				queueTimeSum += secs
				queueTimeN++
			}
		}
	}

	if stats.TotalCalls > 0 {
		stats.AnswerRate = int(math.Round(float64(stats.AnsweredCalls) / float64(stats.TotalCalls) * 100))
		stats.AbandonRate = math.Round(float64(stats.AbandonedCalls)/float64(stats.TotalCalls)*1000) / 10
		if slaApplies {
			stats.SLARate = int(math.Round(float64(stats.SLACount) / float64(stats.TotalCalls) * 100))
		}
	}

	stats.AvgWaitSeconds = clampedAverage(waitSum, waitN)
	stats.AvgWaitSecondsAnswered = clampedAverage(waitAnsweredSum, waitAnsN)
	stats.AvgDurationSeconds = clampedAverage(durationSum, durationN)
	stats.AvgQueueSeconds = clampedAverage(queueTimeSum, queueTimeN)

	for h := 0; h < 24; h++ {
		if stats.Hourly[h].Total > stats.PeakHourCount {
			stats.PeakHour = h
			stats.PeakHourCount = stats.Hourly[h].Total
		}
	}

	return stats
}

func saneSeconds(n int) bool {
	return n >= 0 && n <= maxSaneSeconds
}

// clampedAverage returns the integer mean, or 0 when there are no
// samples or the mean falls outside sane bounds.
func clampedAverage(sum, n int) int {
	if n == 0 {
		return 0
	}
	avg := sum / n
	if !saneSeconds(avg) {
		return 0
	}
	return avg
}
