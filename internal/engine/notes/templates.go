package notes

import (
	"math"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_note/internal/engine"
)

// Position labels for a window within the video.
const (
	PositionIntro   = "intro"
	PositionMiddle  = "middle"
	PositionClosing = "closing"
)

const excerptLen = 100

// topicTemplate is the substitute narrative for one topic. Placeholders:
// {topic} {title} {excerpt} {position} {percent}.
type topicTemplate struct {
	Paragraph string
	Summary   string
	Title     string
	Action    string
}

var topicTemplates = map[string]topicTemplate{
	"AI/기술": {
		Paragraph: "이 구간({position}, {percent}%)에서는 「{title}」의 AI 기술 내용을 다룹니다. {excerpt} AI 도구와 핵심 개념이 실제 작업에 어떻게 적용되는지 살펴봅니다.",
		Summary:   "「{title}」에서 소개하는 AI 도구와 활용 원리를 정리합니다.",
		Title:     "AI 기술 핵심 정리 ({position})",
		Action:    "소개된 AI 도구를 직접 설치하고 작은 작업에 적용해 보기",
	},
	"투자/경제": {
		Paragraph: "이 구간({position}, {percent}%)에서는 「{title}」의 투자와 경제 흐름을 설명합니다. {excerpt} 시장을 읽는 관점과 판단 기준을 정리합니다.",
		Summary:   "「{title}」에서 다루는 시장 분석 관점과 투자 판단 기준을 요약합니다.",
		Title:     "투자/경제 인사이트 ({position})",
		Action:    "언급된 지표를 직접 찾아보고 나만의 투자 기준을 기록해 보기",
	},
	"교육/학습": {
		Paragraph: "이 구간({position}, {percent}%)에서는 「{title}」의 학습 내용을 단계별로 안내합니다. {excerpt} 핵심 개념을 이해하고 복습하는 방법을 제시합니다.",
		Summary:   "「{title}」의 주요 학습 개념과 공부 방법을 정리합니다.",
		Title:     "학습 포인트 정리 ({position})",
		Action:    "배운 개념을 자신의 말로 요약하고 예제로 복습하기",
	},
	"개발/코딩": {
		Paragraph: "이 구간({position}, {percent}%)에서는 「{title}」의 개발 과정과 코드 구현을 다룹니다. {excerpt} 구현 순서와 주의할 점을 짚어 봅니다.",
		Summary:   "「{title}」에서 설명하는 구현 방법과 코드 구조를 요약합니다.",
		Title:     "개발/코딩 실습 ({position})",
		Action:    "예제 코드를 직접 작성하고 실행 결과를 확인해 보기",
	},
	"생산성/도구": {
		Paragraph: "이 구간({position}, {percent}%)에서는 「{title}」에서 소개하는 생산성 도구와 자동화 방법을 다룹니다. {excerpt} 반복 작업을 줄이는 활용 팁을 정리합니다.",
		Summary:   "「{title}」의 도구 활용법과 업무 효율을 높이는 방법을 정리합니다.",
		Title:     "생산성 도구 활용 ({position})",
		Action:    "소개된 도구로 자주 하는 작업 하나를 자동화해 보기",
	},
	"콘텐츠 제작": {
		Paragraph: "이 구간({position}, {percent}%)에서는 「{title}」의 콘텐츠 기획과 제작 과정을 다룹니다. {excerpt} 제작 흐름과 크리에이터의 노하우를 정리합니다.",
		Summary:   "「{title}」에서 공유하는 콘텐츠 제작 과정과 노하우를 요약합니다.",
		Title:     "콘텐츠 제작 노하우 ({position})",
		Action:    "소개된 제작 흐름에 맞춰 짧은 콘텐츠 하나를 기획해 보기",
	},
}

// genericTemplate serves every topic without its own entry, DefaultTopic included.
var genericTemplate = topicTemplate{
	Paragraph: "이 구간({position}, {percent}%)에서는 「{title}」의 {topic} 관련 주요 내용을 다룹니다. {excerpt} 핵심 메시지와 참고할 점을 정리합니다.",
	Summary:   "「{title}」의 주요 내용과 핵심 메시지를 정리합니다.",
	Title:     "주요 내용 정리 ({position})",
	Action:    "영상의 핵심 메시지를 한 문장으로 정리해 보기",
}

// Last-resort content when there is neither a transcript nor metadata.
const (
	placeholderText    = "자막을 사용할 수 없습니다. 영상의 주요 내용을 요약해 주세요."
	placeholderTitle   = "전체 내용 요약"
	placeholderSummary = "이 영상의 주요 내용을 분석하여 정리했습니다."
)

var placeholderKeyPoints = []string{
	"영상의 주요 내용을 정리한 구간입니다",
	"핵심 내용은 영상을 직접 시청하며 확인해 보세요",
}

// templateParams are the values substituted into a topic template.
type templateParams struct {
	Topic    string
	Title    string
	Excerpt  string
	Position string
	Percent  int
}

// positionOf labels window index of total and computes its rounded percentage.
func positionOf(index, total int) (label string, percent int) {
	if total <= 0 {
		total = 1
	}
	percent = int(math.Round(float64(index+1) / float64(total) * 100))
	switch {
	case index == 0:
		label = PositionIntro
	case index == total-1:
		label = PositionClosing
	default:
		label = PositionMiddle
	}
	return label, percent
}

func templateFor(topic string) topicTemplate {
	if t, ok := topicTemplates[topic]; ok {
		return t
	}
	return genericTemplate
}

func (p templateParams) render(tmpl string) string {
	r := strings.NewReplacer(
		"{topic}", p.Topic,
		"{title}", p.Title,
		"{excerpt}", p.Excerpt,
		"{position}", p.Position,
		"{percent}", strconv.Itoa(p.Percent),
	)
	return engine.CollapseWhitespace(r.Replace(tmpl))
}

// descriptionExcerpt returns the first line-collapsed 100 characters of a description.
func descriptionExcerpt(desc string) string {
	return engine.TruncateRunes(engine.CollapseWhitespace(desc), excerptLen, "...")
}
