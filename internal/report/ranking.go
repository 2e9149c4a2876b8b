package report

import (
	"math"
	"sort"
	"strings"

	"github.com/maerty1/asterisk-stats-sub000/internal/models"
)

// SortKey selects the ordering of a queue ranking.
type SortKey string

const (
	SortComposite   SortKey = "composite"
	SortAnswerRate  SortKey = "answer_rate"
	SortSLARate     SortKey = "sla_rate"
	SortVolume      SortKey = "volume"
	SortAbandonRate SortKey = "abandon_rate" // ascending: fewer abandons is better
	SortASA         SortKey = "asa"          // ascending: faster answer is better
)

// departmentKeywords maps a department bucket to the substrings its
// queues carry in the trailing segment of their display name.
var departmentKeywords = map[string][]string{
	"sales":     {"sales", "продаж"},
	"support":   {"support", "поддерж"},
	"billing":   {"billing", "бухгалт"},
	"reception": {"reception", "регистрат"},
}

// CompositeScore combines a queue's quality metrics with a call-volume
// bonus into a single 0-100 value.
//
// The bonus is sqrt-scaled and capped so a queue handling many more
// calls outranks a marginally cleaner low-volume queue. The constants
// (multiplier 4.0, cap 60.0) are a product decision and must not be
// retuned without one.
func CompositeScore(s *models.QueueStats) float64 {
	var unhandledRate float64
	if s.TotalCalls > 0 {
		unhandledRate = float64(s.Unhandled) / float64(s.TotalCalls) * 100
	}

	callbackRate := 100.0
	if s.AbandonedCalls > 0 {
		callbackRate = float64(s.ClientCallbacks+s.AgentCallbacks) / float64(s.AbandonedCalls) * 100
	}

	quality := float64(s.AnswerRate)*0.30 +
		float64(s.SLARate)*0.25 +
		(100-unhandledRate)*0.20 +
		callbackRate*0.10

	volumeBonus := math.Min(math.Sqrt(float64(s.TotalCalls))*4.0, 60.0)

	score := quality + volumeBonus
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// DepartmentOf derives the department bucket from a queue display name:
// the segment after the last dash, matched case- and
// substring-insensitively against the bucket keywords. Empty when the
// name maps to no known department.
func DepartmentOf(displayName string) string {
	name := displayName
	if idx := strings.LastIndex(name, "-"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}

	for bucket, keywords := range departmentKeywords {
		for _, kw := range keywords {
			if strings.Contains(name, kw) {
				return bucket
			}
		}
	}
	return ""
}

// RankQueues orders per-queue stats by the chosen sort key and assigns
// dense 1-based ranks. A department filter excludes non-matching queues
// before ranking, so ranks reflect only the filtered set. Ties break by
// call volume descending.
func RankQueues(statsByQueue map[string]*models.QueueStats, key SortKey, department string) []*models.QueueRanking {
	department = strings.ToLower(strings.TrimSpace(department))

	rankings := make([]*models.QueueRanking, 0, len(statsByQueue))
	for name, stats := range statsByQueue {
		if stats == nil {
			continue
		}
		if stats.QueueName == "" {
			stats.QueueName = name
		}
		if department != "" {
			label := stats.DisplayName
			if label == "" {
				label = stats.QueueName
			}
			if DepartmentOf(label) != department {
				continue
			}
		}
		rankings = append(rankings, &models.QueueRanking{
			QueueStats:     stats,
			CompositeScore: CompositeScore(stats),
		})
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		a, b := rankings[i], rankings[j]
		if less, decided := compareByKey(a, b, key); decided {
			return less
		}
		if a.TotalCalls != b.TotalCalls {
			return a.TotalCalls > b.TotalCalls
		}
		return a.QueueName < b.QueueName
	})

	for i, r := range rankings {
		r.Rank = i + 1
	}
	return rankings
}

// compareByKey orders two entries by the sort key; the second return is
// false when the key values tie and the caller's tie-break applies.
func compareByKey(a, b *models.QueueRanking, key SortKey) (bool, bool) {
	switch key {
	case SortAnswerRate:
		if a.AnswerRate != b.AnswerRate {
			return a.AnswerRate > b.AnswerRate, true
		}
	case SortSLARate:
		if a.SLARate != b.SLARate {
			return a.SLARate > b.SLARate, true
		}
	case SortVolume:
		if a.TotalCalls != b.TotalCalls {
			return a.TotalCalls > b.TotalCalls, true
		}
	case SortAbandonRate:
		if a.AbandonRate != b.AbandonRate {
			return a.AbandonRate < b.AbandonRate, true
		}
	case SortASA:
		if a.AvgWaitSecondsAnswered != b.AvgWaitSecondsAnswered {
			return a.AvgWaitSecondsAnswered < b.AvgWaitSecondsAnswered, true
		}
	default:
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore, true
		}
	}
	return false, false
}
