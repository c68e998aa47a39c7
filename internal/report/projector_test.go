package report

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/fachebot/oneonone-mirror/internal/analyzer"
	"github.com/fachebot/oneonone-mirror/internal/calculator"
	"github.com/fachebot/oneonone-mirror/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAggregate() *analyzer.Aggregate {
	return &analyzer.Aggregate{
		Timing: &calculator.TimingResult{
			ManagerSpeakingRatio: 0.45,
			MemberSpeakingRatio:  0.55,
			MeetingDuration:      30.0,
			TotalTurns:           6,
		},
		Alignment: &calculator.AlignmentResult{
			AlignmentScore:       0.433,
			AlignmentCategory:    "medium",
			ConversationKeywords: []string{"alpha", "beta", "gamma"},
			MatchedTopics: []calculator.TopicMatch{
				{Keyword: "beta", GoalFrequency: 1, ConversationFrequency: 2, RelevanceScore: 0.3},
				{Keyword: "delta", GoalFrequency: 1, ConversationFrequency: 1, RelevanceScore: 0.2},
			},
			MissingTopics: []string{"epsilon", "zeta"},
		},
		Style: &calculator.StyleResult{
			DirectiveScore:      65,
			CoachingScore:       35,
			BalanceAssessment:   "Directive Dominant",
			ImprovementFeedback: "열린 질문의 비중을 늘려보세요.",
		},
		Safety: &calculator.SafetyResult{
			SafetyScore:    78,
			ScoreRationale: "근거",
		},
		Segments: []transcript.SpeechSegment{
			{Speaker: "manager", Text: "시작하겠습니다", StartTime: 0.0, EndTime: 3.5},
			{Speaker: "member", Text: "네", StartTime: 65.0, EndTime: 66.2},
		},
	}
}

func TestProjectManager(t *testing.T) {
	view := ProjectManager(sampleAggregate())

	require.Len(t, view.RadarChart, 5)
	subjects := make([]string, 0, 5)
	for _, point := range view.RadarChart {
		subjects = append(subjects, point.Subject)
		assert.Equal(t, 100, point.FullMark)
		assert.GreaterOrEqual(t, point.Value, 0.0)
		assert.LessOrEqual(t, point.Value, 100.0)
	}
	assert.Equal(t, []string{
		"경청(Listening)", "질문(Questioning)", "심리적 안전감", "목표 정렬", "대화 균형",
	}, subjects)

	// min(100, 0.55*100*1.5) = 82.5 -> 82
	assert.Equal(t, 82.0, view.RadarChart[0].Value)
	assert.Equal(t, 35.0, view.RadarChart[1].Value)
	assert.Equal(t, 78.0, view.RadarChart[2].Value)
	assert.Equal(t, 43.0, view.RadarChart[3].Value)
	// 100 - (0.55-0.5)*200 = 90
	assert.Equal(t, 90.0, view.RadarChart[4].Value)

	require.Len(t, view.TimelineData, 2)
	assert.Equal(t, "00:00", view.TimelineData[0].Time)
	assert.InDelta(t, 3.5, view.TimelineData[0].Value, 1e-9)
	assert.Equal(t, "manager", view.TimelineData[0].Speaker)
	assert.Equal(t, "01:05", view.TimelineData[1].Time)

	assert.Equal(t, 35.0, view.CoachingScore)
	assert.Equal(t, 78, view.SafetyScore)
	assert.Equal(t, 0.45, view.TalkRatio)
	assert.Equal(t, "열린 질문의 비중을 늘려보세요.", view.Feedback)
}

func TestProjectManager_BalancedTalkRatio(t *testing.T) {
	// 双方各占一半时对话均衡满分
	agg := sampleAggregate()
	agg.Timing.ManagerSpeakingRatio = 0.5
	agg.Timing.MemberSpeakingRatio = 0.5

	view := ProjectManager(agg)
	assert.Equal(t, 100.0, view.RadarChart[4].Value)
}

func TestProjectMember(t *testing.T) {
	view := ProjectMember(sampleAggregate())

	// 词云：匹配到目标的关键词加权后排前，未出现在对话关键词中的
	// 匹配话题以中等权重补入
	require.Len(t, view.WordCloud, 4)
	assert.Equal(t, WordCloudItem{Text: "beta", Value: 80}, view.WordCloud[0])
	assert.Equal(t, WordCloudItem{Text: "delta", Value: 60}, view.WordCloud[1])
	assert.Equal(t, WordCloudItem{Text: "alpha", Value: 30}, view.WordCloud[2])
	assert.Equal(t, WordCloudItem{Text: "gamma", Value: 30}, view.WordCloud[3])

	assert.Equal(t, 0.433, view.AlignmentScore)
	assert.Equal(t, "MEDIUM", view.AlignmentCategory)

	assert.Equal(t, []string{
		"'epsilon'에 대해 더 논의해보기",
		"'zeta'에 대해 더 논의해보기",
		"매니저와의 피드백 세션 준비하기",
	}, view.ActionItems)

	assert.Equal(t, 30.0, view.MeetingDuration)
	assert.Equal(t, 6, view.TotalTurns)
}

func TestProjectMember_NoFeedbackNoSession(t *testing.T) {
	agg := sampleAggregate()
	agg.Style.ImprovementFeedback = ""

	view := ProjectMember(agg)
	assert.Equal(t, []string{
		"'epsilon'에 대해 더 논의해보기",
		"'zeta'에 대해 더 논의해보기",
	}, view.ActionItems)
}

func TestProjectMember_WordCloudCap(t *testing.T) {
	agg := sampleAggregate()
	keywords := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		keywords = append(keywords, fmt.Sprintf("word%02d", i))
	}
	agg.Alignment.ConversationKeywords = keywords
	agg.Alignment.MatchedTopics = nil

	view := ProjectMember(agg)
	assert.Len(t, view.WordCloud, 20)
	// 同权重时维持原有顺序
	assert.Equal(t, "word00", view.WordCloud[0].Text)
	assert.Equal(t, "word19", view.WordCloud[19].Text)
}

func TestProjections_Deterministic(t *testing.T) {
	// 投影是纯函数：同一聚合两次投影的序列化结果逐字节一致
	agg := sampleAggregate()

	first, err := json.Marshal(ProjectManager(agg))
	require.NoError(t, err)
	second, err := json.Marshal(ProjectManager(agg))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	firstMember, err := json.Marshal(ProjectMember(agg))
	require.NoError(t, err)
	secondMember, err := json.Marshal(ProjectMember(agg))
	require.NoError(t, err)
	assert.Equal(t, firstMember, secondMember)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", formatClock(0))
	assert.Equal(t, "00:59", formatClock(59.9))
	assert.Equal(t, "01:00", formatClock(60))
	assert.Equal(t, "12:34", formatClock(754))
}
