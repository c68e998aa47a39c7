package analyzer

import (
	"context"
	"sync"

	"github.com/fachebot/oneonone-mirror/internal/calculator"
	"github.com/fachebot/oneonone-mirror/internal/llm"
	"github.com/fachebot/oneonone-mirror/internal/logger"
	"github.com/fachebot/oneonone-mirror/internal/transcript"
)

// 各计算器接口（便于测试注入 mock）
type timingCalculator interface {
	Calculate(t *transcript.Transcript) (*calculator.TimingResult, error)
}

type alignmentCalculator interface {
	Calculate(gc *calculator.GoalContext) (*calculator.AlignmentResult, error)
}

type styleCalculator interface {
	Calculate(ctx context.Context, conversation string) (*calculator.StyleResult, error)
}

type safetyCalculator interface {
	Calculate(ctx context.Context, conversation string) (*calculator.SafetyResult, error)
}

// Aggregate 一次分析运行中四个计算器的合并结果
// 仅在编排调用内部短暂存在：要么完整交给投影层，要么整体丢弃，
// 不存在部分聚合。Segments 携带排序后的发言段供时间线投影使用
type Aggregate struct {
	Timing    *calculator.TimingResult
	Alignment *calculator.AlignmentResult
	Style     *calculator.StyleResult
	Safety    *calculator.SafetyResult
	Segments  []transcript.SpeechSegment
}

// Orchestrator 将一份转写和目标上下文分发给四个计算器并发执行，
// 全部完成后按固定顺序聚合。整批是原子的：任何一个计算器失败，
// 编排器抛出该失败并丢弃其余结果
type Orchestrator struct {
	timing    timingCalculator
	alignment alignmentCalculator
	style     styleCalculator
	safety    safetyCalculator
}

func NewOrchestrator(llmClient *llm.Client) *Orchestrator {
	return &Orchestrator{
		timing:    calculator.NewTimingAnalyzer(),
		alignment: calculator.NewAlignmentScorer(),
		style:     calculator.NewStyleAnalyzer(llmClient),
		safety:    calculator.NewSafetyAnalyzer(llmClient),
	}
}

// Run 对一次会谈执行全部四项分析
// 四个计算器之间无数据依赖，可按任意顺序完成；聚合顺序固定为
// (timing, alignment, style, safety)，与完成顺序无关
func (o *Orchestrator) Run(ctx context.Context, t *transcript.Transcript, goalText string) (*Aggregate, error) {
	conversation := t.PlainText()
	goalContext := &calculator.GoalContext{
		GoalText:         goalText,
		ConversationText: conversation,
		Language:         "ko",
	}

	var (
		wg        sync.WaitGroup
		timing    *calculator.TimingResult
		alignment *calculator.AlignmentResult
		style     *calculator.StyleResult
		safety    *calculator.SafetyResult
	)
	errs := make([]error, 4)

	wg.Add(4)
	go func() {
		defer wg.Done()
		timing, errs[0] = o.timing.Calculate(t)
	}()
	go func() {
		defer wg.Done()
		alignment, errs[1] = o.alignment.Calculate(goalContext)
	}()
	go func() {
		defer wg.Done()
		style, errs[2] = o.style.Calculate(ctx, conversation)
	}()
	go func() {
		defer wg.Done()
		safety, errs[3] = o.safety.Calculate(ctx, conversation)
	}()
	wg.Wait()

	// 收齐全部结果后再裁决：任一失败即整批失败，成功的结果一并丢弃
	for _, err := range errs {
		if err != nil {
			logger.Errorf("[Analyzer] 计算器执行失败: %v", err)
			return nil, err
		}
	}

	return &Aggregate{
		Timing:    timing,
		Alignment: alignment,
		Style:     style,
		Safety:    safety,
		Segments:  t.SortedSegments(),
	}, nil
}
