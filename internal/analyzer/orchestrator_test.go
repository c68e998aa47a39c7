package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/fachebot/oneonone-mirror/internal/calculator"
	"github.com/fachebot/oneonone-mirror/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTiming struct {
	result *calculator.TimingResult
	err    error
	called bool
}

func (f *fakeTiming) Calculate(t *transcript.Transcript) (*calculator.TimingResult, error) {
	f.called = true
	return f.result, f.err
}

type fakeAlignment struct {
	result *calculator.AlignmentResult
	err    error
	called bool
	gotGC  *calculator.GoalContext
}

func (f *fakeAlignment) Calculate(gc *calculator.GoalContext) (*calculator.AlignmentResult, error) {
	f.called = true
	f.gotGC = gc
	return f.result, f.err
}

type fakeStyle struct {
	result  *calculator.StyleResult
	err     error
	called  bool
	gotConv string
}

func (f *fakeStyle) Calculate(ctx context.Context, conversation string) (*calculator.StyleResult, error) {
	f.called = true
	f.gotConv = conversation
	return f.result, f.err
}

type fakeSafety struct {
	result *calculator.SafetyResult
	err    error
	called bool
}

func (f *fakeSafety) Calculate(ctx context.Context, conversation string) (*calculator.SafetyResult, error) {
	f.called = true
	return f.result, f.err
}

func testTranscript() *transcript.Transcript {
	return transcript.New([]transcript.SpeechSegment{
		{Speaker: "member", Text: "잘 진행되고 있습니다", StartTime: 4.0, EndTime: 8.0},
		{Speaker: "manager", Text: "업무는 어떤가요?", StartTime: 0.0, EndTime: 3.0},
	}, "manager", "member", nil)
}

func TestOrchestrator_Run(t *testing.T) {
	timing := &fakeTiming{result: &calculator.TimingResult{TotalTurns: 2}}
	alignment := &fakeAlignment{result: &calculator.AlignmentResult{AlignmentScore: 0.5}}
	style := &fakeStyle{result: &calculator.StyleResult{CoachingScore: 40}}
	safety := &fakeSafety{result: &calculator.SafetyResult{SafetyScore: 80}}
	o := &Orchestrator{timing: timing, alignment: alignment, style: style, safety: safety}

	tr := testTranscript()
	agg, err := o.Run(context.Background(), tr, "성장 목표")
	require.NoError(t, err)
	require.NotNil(t, agg)

	assert.Same(t, timing.result, agg.Timing)
	assert.Same(t, alignment.result, agg.Alignment)
	assert.Same(t, style.result, agg.Style)
	assert.Same(t, safety.result, agg.Safety)

	// 聚合中的段已按开始时间排序
	require.Len(t, agg.Segments, 2)
	assert.Equal(t, "manager", agg.Segments[0].Speaker)
	assert.Equal(t, "member", agg.Segments[1].Speaker)

	// 目标上下文与对话文本正确下发
	require.NotNil(t, alignment.gotGC)
	assert.Equal(t, "성장 목표", alignment.gotGC.GoalText)
	assert.Equal(t, tr.PlainText(), alignment.gotGC.ConversationText)
	assert.Equal(t, "ko", alignment.gotGC.Language)
	assert.Equal(t, tr.PlainText(), style.gotConv)
}

func TestOrchestrator_Run_SingleFailureIsAtomic(t *testing.T) {
	// 任一计算器失败时整批失败，且其余计算器仍被执行
	styleErr := errors.New("style analysis failed")
	timing := &fakeTiming{result: &calculator.TimingResult{}}
	alignment := &fakeAlignment{result: &calculator.AlignmentResult{}}
	style := &fakeStyle{err: styleErr}
	safety := &fakeSafety{result: &calculator.SafetyResult{}}
	o := &Orchestrator{timing: timing, alignment: alignment, style: style, safety: safety}

	agg, err := o.Run(context.Background(), testTranscript(), "goal")
	assert.Nil(t, agg)
	assert.ErrorIs(t, err, styleErr)

	assert.True(t, timing.called)
	assert.True(t, alignment.called)
	assert.True(t, style.called)
	assert.True(t, safety.called)
}

func TestOrchestrator_Run_FirstErrorInFixedOrder(t *testing.T) {
	// 多个计算器同时失败时，报告的错误按固定顺序取第一个
	timingErr := errors.New("timing failed")
	safetyErr := errors.New("safety failed")
	o := &Orchestrator{
		timing:    &fakeTiming{err: timingErr},
		alignment: &fakeAlignment{result: &calculator.AlignmentResult{}},
		style:     &fakeStyle{result: &calculator.StyleResult{}},
		safety:    &fakeSafety{err: safetyErr},
	}

	agg, err := o.Run(context.Background(), testTranscript(), "goal")
	assert.Nil(t, agg)
	assert.ErrorIs(t, err, timingErr)
	assert.NotErrorIs(t, err, safetyErr)
}
