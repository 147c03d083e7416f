package emotion

import "strings"

// Label 表示对话记录使用的情绪标签。
type Label string

const (
	Happy   Label = "happy"
	Sad     Label = "sad"
	Angry   Label = "angry"
	Anxious Label = "anxious"
	Calm    Label = "calm"
)

// Labels lists the full vocabulary in scoring order. Earlier labels win ties.
var Labels = []Label{Happy, Sad, Angry, Anxious, Calm}

// Valid reports whether the given string is one of the known labels.
func Valid(label string) bool {
	for _, l := range Labels {
		if string(l) == label {
			return true
		}
	}
	return false
}

var keywordBuckets = map[Label][]string{
	Happy: {
		"开心", "高兴", "快乐", "兴奋", "满足", "幸福", "喜悦", "欣喜", "太好了", "太棒了",
		"happy", "glad", "joyful", "excited", "great", "wonderful", "thrilled", "delighted",
	},
	Sad: {
		"难过", "伤心", "悲伤", "痛苦", "失落", "沮丧", "忧郁", "哀伤",
		"sad", "tearful", "depressed", "miserable", "heartbroken", "hopeless", "lonely", "grief",
	},
	Angry: {
		"生气", "愤怒", "恼火", "烦躁", "不满", "恼怒", "气愤", "暴怒",
		"angry", "furious", "annoyed", "irritated", "frustrated", "fed up", "outraged", "resent",
	},
	Anxious: {
		"焦虑", "担心", "紧张", "不安", "忧虑", "恐惧", "害怕", "慌张",
		"anxious", "worried", "nervous", "afraid", "scared", "stressed", "uneasy", "panick",
	},
	Calm: {
		"平静", "平和", "安宁", "放松", "舒适", "安心", "镇定", "淡定",
		"calm", "peaceful", "relaxed", "settled", "at ease", "comfortable", "serene", "content",
	},
}

// Classify 根据关键词匹配推断文本的情绪标签，无明显信号时返回 calm。
func Classify(text string) Label {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Calm
	}

	best := Calm
	bestCount := 0
	for _, label := range Labels {
		count := 0
		for _, word := range keywordBuckets[label] {
			count += strings.Count(normalized, word)
		}
		if count > bestCount {
			bestCount = count
			best = label
		}
	}

	return best
}
