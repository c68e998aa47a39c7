package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fachebot/oneonone-mirror/internal/analyzer"
)

// RadarChartPoint 雷达图数据点
type RadarChartPoint struct {
	Subject  string  `json:"subject"`  // 指标名，如 "경청(Listening)"
	Value    float64 `json:"A"`        // 0-100
	FullMark int     `json:"fullMark"` // 满分值
}

// TimelinePoint 对话时间线数据点
type TimelinePoint struct {
	Time    string  `json:"time"`    // 时间标签，如 "00:00"
	Value   float64 `json:"value"`   // 该段发言时长（秒）
	Speaker string  `json:"speaker"` // 说话人
}

// WordCloudItem 词云数据项
type WordCloudItem struct {
	Text  string `json:"text"`
	Value int    `json:"value"` // 权重
}

// ManagerReport 管理者视图（Coaching Mirror）
type ManagerReport struct {
	RadarChart   []RadarChartPoint `json:"radar_chart"`
	TimelineData []TimelinePoint   `json:"timeline_data"`

	CoachingScore float64 `json:"coaching_score"` // 教练式沟通占比
	SafetyScore   int     `json:"safety_score"`   // 心理安全感评分
	TalkRatio     float64 `json:"talk_ratio"`     // 管理者发言占比 (0-1)

	Feedback string `json:"feedback"` // 风格分析器的改进建议原文
}

// MemberReport 成员视图（Growth Mirror）
type MemberReport struct {
	WordCloud []WordCloudItem `json:"word_cloud"`

	AlignmentScore    float64 `json:"alignment_score"`    // 0-1
	AlignmentCategory string  `json:"alignment_category"` // HIGH / MEDIUM / LOW / NONE

	ActionItems []string `json:"action_items"`

	MeetingDuration float64 `json:"meeting_duration"`
	TotalTurns      int     `json:"total_turns"`
}

// SessionReport 一次会谈的完整报告（两个视图合并）
type SessionReport struct {
	Manager     ManagerReport `json:"manager"`
	Member      MemberReport  `json:"member"`
	PerformedAt time.Time     `json:"performed_at"`
}

// ProjectManager 从聚合结果派生管理者视图
// 纯函数：无副作用、无外部调用，同一聚合总是产出相同视图
func ProjectManager(agg *analyzer.Aggregate) ManagerReport {
	// 雷达图五维：
	// - 倾听：成员发言占比（理想约 50-60%），略作放大
	// - 提问：教练式沟通得分
	// - 安全感：心理安全感评分
	// - 目标对齐：对齐分换算为百分制
	// - 对话均衡：单方占比超过 50% 时开始扣分
	listening := minF(100, agg.Timing.MemberSpeakingRatio*100*1.5)

	dominant := maxF(agg.Timing.ManagerSpeakingRatio, agg.Timing.MemberSpeakingRatio)
	stability := 100 - maxF(0, dominant-0.5)*200
	stability = maxF(0, minF(100, stability))

	radar := []RadarChartPoint{
		{Subject: "경청(Listening)", Value: float64(int(listening)), FullMark: 100},
		{Subject: "질문(Questioning)", Value: float64(int(agg.Style.CoachingScore)), FullMark: 100},
		{Subject: "심리적 안전감", Value: float64(agg.Safety.SafetyScore), FullMark: 100},
		{Subject: "목표 정렬", Value: float64(int(agg.Alignment.AlignmentScore * 100)), FullMark: 100},
		{Subject: "대화 균형", Value: float64(int(stability)), FullMark: 100},
	}

	timeline := make([]TimelinePoint, len(agg.Segments))
	for i, seg := range agg.Segments {
		timeline[i] = TimelinePoint{
			Time:    formatClock(seg.StartTime),
			Value:   seg.Duration(),
			Speaker: seg.Speaker,
		}
	}

	return ManagerReport{
		RadarChart:    radar,
		TimelineData:  timeline,
		CoachingScore: agg.Style.CoachingScore,
		SafetyScore:   agg.Safety.SafetyScore,
		TalkRatio:     agg.Timing.ManagerSpeakingRatio,
		Feedback:      agg.Style.ImprovementFeedback,
	}
}

// ProjectMember 从聚合结果派生成员视图，同样为纯函数
func ProjectMember(agg *analyzer.Aggregate) MemberReport {
	// 词云：对话关键词以基础权重铺底，匹配到目标的话题加权突出
	wordCloud := make([]WordCloudItem, 0, len(agg.Alignment.ConversationKeywords))
	index := make(map[string]int)
	for _, kw := range agg.Alignment.ConversationKeywords {
		index[kw] = len(wordCloud)
		wordCloud = append(wordCloud, WordCloudItem{Text: kw, Value: 30})
	}
	for _, topic := range agg.Alignment.MatchedTopics {
		if i, ok := index[topic.Keyword]; ok {
			wordCloud[i].Value += 50
		} else {
			wordCloud = append(wordCloud, WordCloudItem{Text: topic.Keyword, Value: 60})
		}
	}
	sort.SliceStable(wordCloud, func(i, j int) bool {
		return wordCloud[i].Value > wordCloud[j].Value
	})
	if len(wordCloud) > 20 {
		wordCloud = wordCloud[:20]
	}

	// 行动项：未覆盖的目标话题逐条生成建议，末尾附固定的反馈准备建议
	actionItems := make([]string, 0, len(agg.Alignment.MissingTopics)+1)
	for _, topic := range agg.Alignment.MissingTopics {
		actionItems = append(actionItems, fmt.Sprintf("'%s'에 대해 더 논의해보기", topic))
	}
	if agg.Style.ImprovementFeedback != "" {
		actionItems = append(actionItems, "매니저와의 피드백 세션 준비하기")
	}

	return MemberReport{
		WordCloud:         wordCloud,
		AlignmentScore:    agg.Alignment.AlignmentScore,
		AlignmentCategory: strings.ToUpper(agg.Alignment.AlignmentCategory),
		ActionItems:       actionItems,
		MeetingDuration:   agg.Timing.MeetingDuration,
		TotalTurns:        agg.Timing.TotalTurns,
	}
}

// formatClock 将秒数格式化为 "MM:SS" 时间标签
func formatClock(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
