package engine

import (
	"strings"

	"github.com/forPelevin/gomoji"
)

// DefaultTopic is returned when no topic keyword matches.
const DefaultTopic = "general"

const (
	maxTitleEmoji   = 3
	maxFallbackKeys = 10
)

// Keyword families matched against title+description (case-folded substring match).
var (
	techKeywords      = []string{"ai", "claude", "gpt", "mcp", "인공지능", "개발", "프로그래밍", "코딩", "투자", "분석", "자동화"}
	educationKeywords = []string{"강의", "튜토리얼", "배우기", "학습", "공부", "강좌", "교육"}
	actionKeywords    = []string{"만들기", "구현", "생성", "활용", "방법", "실습", "실전"}
)

// topicRule maps a topic label to the keywords that select it.
type topicRule struct {
	Topic    string
	Keywords []string
}

// topicRules is ordered; the first match is the primary topic.
var topicRules = []topicRule{
	{"AI/기술", []string{"ai", "claude", "gpt", "mcp", "인공지능", "자동화", "프로그래밍"}},
	{"투자/경제", []string{"투자", "주식", "경제", "분석", "리포트", "시장"}},
	{"교육/학습", []string{"강의", "튜토리얼", "배우기", "학습", "공부", "교육"}},
	{"개발/코딩", []string{"개발", "코딩", "프로그래밍", "구현", "코드"}},
	{"생산성/도구", []string{"자동화", "효율", "생산성", "도구", "활용"}},
	{"콘텐츠 제작", []string{"영상", "제작", "콘텐츠", "크리에이터"}},
}

// DeriveFallback builds FallbackMetadata from title and description.
// Channel and duration are filled in by the caller.
func DeriveFallback(title, description string) FallbackMetadata {
	return FallbackMetadata{
		Title:       title,
		Description: description,
		Keywords:    ExtractKeywords(title, description),
		Topics:      EstimateTopics(title, description),
	}
}

// ExtractKeywords returns the fixed-family keywords found in title+description,
// followed by up to three emoji from the title, capped at ten entries.
func ExtractKeywords(title, description string) []string {
	text := strings.ToLower(title + " " + description)
	var keywords []string
	for _, family := range [][]string{techKeywords, educationKeywords, actionKeywords} {
		for _, kw := range family {
			if strings.Contains(text, kw) {
				keywords = append(keywords, kw)
			}
		}
	}

	emoji := gomoji.FindAll(title)
	for i := 0; i < len(emoji) && i < maxTitleEmoji; i++ {
		keywords = append(keywords, emoji[i].Character)
	}

	if len(keywords) > maxFallbackKeys {
		keywords = keywords[:maxFallbackKeys]
	}
	return keywords
}

// EstimateTopics returns every topic with at least one matching keyword, in rule order.
// Returns []string{DefaultTopic} when nothing matches.
func EstimateTopics(title, description string) []string {
	text := strings.ToLower(title + " " + description)
	var topics []string
	for _, rule := range topicRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				topics = append(topics, rule.Topic)
				break
			}
		}
	}
	if len(topics) == 0 {
		return []string{DefaultTopic}
	}
	return topics
}
