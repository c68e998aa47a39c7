package calculator

import (
	"github.com/fachebot/oneonone-mirror/internal/transcript"
)

// TimingResult 发言时间分布、停顿与轮次统计结果，所有字段非负
type TimingResult struct {
	// 发言时长（秒）
	ManagerSpeakingTime float64 `json:"manager_speaking_time"`
	MemberSpeakingTime  float64 `json:"member_speaking_time"`
	TotalSpeakingTime   float64 `json:"total_speaking_time"`

	// 停顿
	TotalSilenceTime  float64 `json:"total_silence_time"`
	SilencePercentage float64 `json:"silence_percentage"`

	// 发言占比（以总发言时长为分母，和 <= 1）
	ManagerSpeakingRatio float64 `json:"manager_speaking_ratio"`
	MemberSpeakingRatio  float64 `json:"member_speaking_ratio"`

	// 发言轮次
	ManagerTurnCount int `json:"manager_turn_count"`
	MemberTurnCount  int `json:"member_turn_count"`
	TotalTurns       int `json:"total_turns"`

	// 平均单段时长（秒）
	ManagerAvgSegmentDuration float64 `json:"manager_avg_segment_duration"`
	MemberAvgSegmentDuration  float64 `json:"member_avg_segment_duration"`

	// 会议总时长（秒）
	MeetingDuration float64 `json:"meeting_duration"`
}

// TimingAnalyzer 从带时间戳的转写段计算对话动态指标
// 纯确定性计算，不依赖外部服务
type TimingAnalyzer struct{}

func NewTimingAnalyzer() *TimingAnalyzer {
	return &TimingAnalyzer{}
}

// Calculate 分析发言时间分布、停顿和轮次
func (a *TimingAnalyzer) Calculate(t *transcript.Transcript) (*TimingResult, error) {
	if err := a.validate(t); err != nil {
		return nil, err
	}

	sorted := t.SortedSegments()

	var managerTime, memberTime float64
	var managerTurns, memberTurns int
	for _, seg := range sorted {
		switch seg.Speaker {
		case t.ManagerID:
			managerTime += seg.Duration()
			managerTurns++
		case t.MemberID:
			memberTime += seg.Duration()
			memberTurns++
		}
	}
	totalSpeaking := managerTime + memberTime

	// 相邻段之间的正向间隔计为停顿，重叠不产生负停顿
	var totalSilence float64
	for i := 0; i+1 < len(sorted); i++ {
		gap := sorted[i+1].StartTime - sorted[i].EndTime
		if gap > 0 {
			totalSilence += gap
		}
	}

	// 会议时长：优先使用外部提供的总时长，否则取最后一段的结束时间
	var meetingDuration float64
	if t.TotalDuration != nil && *t.TotalDuration > 0 {
		meetingDuration = *t.TotalDuration
	} else {
		meetingDuration = sorted[len(sorted)-1].EndTime
	}

	return &TimingResult{
		ManagerSpeakingTime:       managerTime,
		MemberSpeakingTime:        memberTime,
		TotalSpeakingTime:         totalSpeaking,
		TotalSilenceTime:          totalSilence,
		SilencePercentage:         safeDiv(totalSilence, meetingDuration) * 100,
		ManagerSpeakingRatio:      safeDiv(managerTime, totalSpeaking),
		MemberSpeakingRatio:       safeDiv(memberTime, totalSpeaking),
		ManagerTurnCount:          managerTurns,
		MemberTurnCount:           memberTurns,
		TotalTurns:                managerTurns + memberTurns,
		ManagerAvgSegmentDuration: safeDiv(managerTime, float64(managerTurns)),
		MemberAvgSegmentDuration:  safeDiv(memberTime, float64(memberTurns)),
		MeetingDuration:           meetingDuration,
	}, nil
}

// validate 在计算前校验转写数据
func (a *TimingAnalyzer) validate(t *transcript.Transcript) error {
	if len(t.Segments) == 0 {
		return newValidationError("转写段列表不能为空")
	}
	for i, seg := range t.Segments {
		if seg.StartTime < 0 {
			return newValidationError("第 %d 段的开始时间为负: %v", i, seg.StartTime)
		}
		if seg.EndTime < seg.StartTime {
			return newValidationError("第 %d 段的结束时间 (%v) 早于开始时间 (%v)", i, seg.EndTime, seg.StartTime)
		}
		if seg.Speaker != t.ManagerID && seg.Speaker != t.MemberID {
			return newValidationError("第 %d 段的说话人 '%s' 无效，应为 '%s' 或 '%s'", i, seg.Speaker, t.ManagerID, t.MemberID)
		}
	}
	return nil
}

// safeDiv 分母为 0 时返回 0
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
