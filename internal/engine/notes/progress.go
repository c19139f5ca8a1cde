package notes

import (
	"context"
	"time"
)

// ProgressEvent is one milestone of a run.
type ProgressEvent struct {
	Label      string `json:"label"`
	Percentage int    `json:"percentage"`
	Detail     string `json:"detail,omitempty"`
}

// ProgressSink receives progress events in order. Report is called synchronously
// from the run and must return promptly.
type ProgressSink interface {
	Report(ev ProgressEvent)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(ev ProgressEvent)

// Report calls f.
func (f ProgressFunc) Report(ev ProgressEvent) { f(ev) }

type nopSink struct{}

func (nopSink) Report(ProgressEvent) {}

// ChanSink forwards events to a channel. A send that cannot complete within
// the wait bound, or after ctx is done, drops the event.
type ChanSink struct {
	ctx  context.Context
	ch   chan<- ProgressEvent
	wait time.Duration
}

// NewChanSink creates a channel sink. wait <= 0 means drop whenever the channel is full.
func NewChanSink(ctx context.Context, ch chan<- ProgressEvent, wait time.Duration) *ChanSink {
	return &ChanSink{ctx: ctx, ch: ch, wait: wait}
}

// Report sends ev or drops it.
func (s *ChanSink) Report(ev ProgressEvent) {
	if s.wait <= 0 {
		select {
		case s.ch <- ev:
		default:
		}
		return
	}
	t := time.NewTimer(s.wait)
	defer t.Stop()
	select {
	case s.ch <- ev:
	case <-s.ctx.Done():
	case <-t.C:
	}
}

// Milestones of a run, in order.
var (
	stepResolve    = milestone{"📹 영상 정보 수집 중...", 10, "YouTube API 호출"}
	stepCaptions   = milestone{"📝 자막 다운로드 중...", 20, "자막 파일 추출"}
	stepPreprocess = milestone{"🔧 자막 전처리 중...", 30, "노이즈 제거 및 문장 정리"}
	stepSegment    = milestone{"✂️ 구간별 분할 중...", 40, "의미 단위로 구간 분할"}
	stepKeyPoints  = milestone{"🎯 핵심 내용 추출 중...", 50, "각 구간의 주요 포인트 식별"}
	stepAnalyze    = milestone{"🤖 AI 1차 분석 중...", 60, "구간별 요약 생성"}
	stepSynthesize = milestone{"🧠 AI 2차 분석 중...", 70, "전체 구조화 및 연결점 찾기"}
	stepStructure  = milestone{"📚 노트 구조화 중...", 80, "최종 노트 형태로 조합"}
	stepValidate   = milestone{"✅ 품질 검증 중...", 90, "생성된 노트의 완성도 검사"}
	stepDone       = milestone{"🎉 노트 생성 완료!", 100, ""}
)

type milestone struct {
	label   string
	percent int
	detail  string
}

func (m milestone) event(detail string) ProgressEvent {
	if detail == "" {
		detail = m.detail
	}
	return ProgressEvent{Label: m.label, Percentage: m.percent, Detail: detail}
}
