package emotion

import "github.com/zhouzirui/life-coach/backend/internal/model/chat"

// Trend labels for the short-window heuristic.
const (
	TrendPositive = "positive"
	TrendNegative = "negative"
	TrendStable   = "stable"
)

// RecentEmotion pairs a turn's timestamp with its emotion label.
type RecentEmotion struct {
	Timestamp string `json:"timestamp"`
	Emotion   string `json:"emotion"`
}

// Report 汇总整个对话记录的情绪统计结果。
type Report struct {
	EmotionCounts   map[Label]int   `json:"emotionCounts"`
	RecentEmotions  []RecentEmotion `json:"recentEmotions"`
	TotalMessages   int             `json:"totalMessages"`
	Dominant        Label           `json:"dominantEmotion"`
	DominantPercent float64         `json:"dominantPercent"`
	Trend           string          `json:"trend"`
}

// Aggregate scans the full history log and produces emotion counts, the last
// ten emotions in chronological order, the dominant label with its share, and
// a naive trend over the three most recent turns.
func Aggregate(log []chat.Turn) Report {
	counts := make(map[Label]int, len(Labels))
	for _, label := range Labels {
		counts[label] = 0
	}

	for _, turn := range log {
		if Valid(turn.Emotion) {
			counts[Label(turn.Emotion)]++
		}
	}

	start := 0
	if len(log) > 10 {
		start = len(log) - 10
	}
	recent := make([]RecentEmotion, 0, len(log)-start)
	for _, turn := range log[start:] {
		recent = append(recent, RecentEmotion{Timestamp: turn.Timestamp, Emotion: turn.Emotion})
	}

	dominant, percent := dominantEmotion(counts, len(log))

	return Report{
		EmotionCounts:   counts,
		RecentEmotions:  recent,
		TotalMessages:   len(log),
		Dominant:        dominant,
		DominantPercent: percent,
		Trend:           trend(recent),
	}
}

func dominantEmotion(counts map[Label]int, total int) (Label, float64) {
	if total == 0 {
		return Calm, 0
	}

	best := Calm
	bestCount := 0
	for _, label := range Labels {
		if counts[label] > bestCount {
			bestCount = counts[label]
			best = label
		}
	}

	return best, float64(bestCount) / float64(total) * 100
}

// trend 对最近三条情绪做一个朴素的正负向判断，平局视为 stable。
func trend(recent []RecentEmotion) string {
	start := 0
	if len(recent) > 3 {
		start = len(recent) - 3
	}

	positive, negative := 0, 0
	for _, entry := range recent[start:] {
		switch Label(entry.Emotion) {
		case Happy, Calm:
			positive++
		case Sad, Angry, Anxious:
			negative++
		}
	}

	switch {
	case positive > negative:
		return TrendPositive
	case negative > positive:
		return TrendNegative
	default:
		return TrendStable
	}
}
