package calculator

import (
	"regexp"
	"sort"
	"strings"
)

// 关键词提取参数
const (
	minKeywordLength = 2
	maxKeywords      = 30
)

// wordPattern 词的定义：连续的韩文音节或连续的拉丁小写字母，其余字符视为分隔符
var wordPattern = regexp.MustCompile(`[가-힣]+|[a-z]+`)

// stopWords 韩文与英文的基础停用词表
var stopWords = map[string]struct{}{}

func init() {
	ko := []string{
		"이", "그", "저", "것", "수", "등", "들", "및", "에", "을", "를", "이를",
		"위해", "통해", "대한", "있는", "하는", "되는", "같은", "있다", "한다",
		"많은", "다른", "새로운", "그리고", "하지만", "그러나", "또한",
	}
	en := []string{
		"the", "is", "at", "which", "on", "a", "an", "as", "are", "was", "were",
		"be", "been", "being", "have", "has", "had", "do", "does", "did",
		"will", "would", "should", "could", "may", "might", "must", "can",
		"and", "or", "but", "if", "then", "else", "when", "where", "how", "why",
	}
	for _, w := range ko {
		stopWords[w] = struct{}{}
	}
	for _, w := range en {
		stopWords[w] = struct{}{}
	}
}

// GoalContext 目标对齐分析的输入
type GoalContext struct {
	GoalText         string `json:"goal_text"`         // 成员的目标文本
	ConversationText string `json:"conversation_text"` // 会谈的完整转写文本
	Language         string `json:"language"`          // 语言提示，如 "ko"
}

// TopicMatch 同时出现在目标与对话中的关键词
type TopicMatch struct {
	Keyword               string  `json:"keyword"`
	GoalFrequency         int     `json:"goal_frequency"`
	ConversationFrequency int     `json:"conversation_frequency"`
	RelevanceScore        float64 `json:"relevance_score"` // 0-1
}

// AlignmentResult 目标对齐分析结果
type AlignmentResult struct {
	AlignmentScore float64 `json:"alignment_score"` // 0-1

	MatchedTopics     []TopicMatch `json:"matched_topics"` // 按相关度降序
	MatchedTopicCount int          `json:"matched_topic_count"`

	GoalKeywords         []string `json:"goal_keywords"`
	ConversationKeywords []string `json:"conversation_keywords"`

	GoalCoverage float64 `json:"goal_coverage"` // 0-1

	IsAligned         bool   `json:"is_aligned"`         // alignment_score >= 0.3
	AlignmentCategory string `json:"alignment_category"` // high / medium / low / none

	MissingTopics []string `json:"missing_topics"` // 未被讨论的目标关键词，最多 5 个
}

// AlignmentScorer 通过关键词提取与频率分析计算会谈内容与成员目标的匹配程度
//
// 算法流程：
// 1. 分别从目标文本和对话文本提取关键词
// 2. 求交集得到共同话题
// 3. 按词频与列表位置计算每个话题的相关度
// 4. 综合质量与覆盖率得到整体对齐分
// 5. 找出目标中未被讨论的话题
type AlignmentScorer struct{}

func NewAlignmentScorer() *AlignmentScorer {
	return &AlignmentScorer{}
}

// Calculate 分析目标与对话的话题对齐程度
func (s *AlignmentScorer) Calculate(gc *GoalContext) (*AlignmentResult, error) {
	if err := s.validate(gc); err != nil {
		return nil, err
	}

	goalKeywords := extractKeywords(gc.GoalText)
	convKeywords := extractKeywords(gc.ConversationText)

	matched := findMatchedTopics(goalKeywords, convKeywords, gc.GoalText, gc.ConversationText)

	score := alignmentScore(matched, goalKeywords)
	coverage := goalCoverage(goalKeywords, convKeywords)

	return &AlignmentResult{
		AlignmentScore:       score,
		MatchedTopics:        matched,
		MatchedTopicCount:    len(matched),
		GoalKeywords:         goalKeywords,
		ConversationKeywords: convKeywords,
		GoalCoverage:         coverage,
		IsAligned:            score >= 0.3,
		AlignmentCategory:    categorize(score),
		MissingTopics:        missingTopics(goalKeywords, convKeywords),
	}, nil
}

func (s *AlignmentScorer) validate(gc *GoalContext) error {
	if strings.TrimSpace(gc.GoalText) == "" {
		return newValidationError("目标文本不能为空")
	}
	if strings.TrimSpace(gc.ConversationText) == "" {
		return newValidationError("对话文本不能为空")
	}
	if len([]rune(gc.GoalText)) < 10 {
		return newValidationError("目标文本过短（至少 10 个字符）")
	}
	if len([]rune(gc.ConversationText)) < 20 {
		return newValidationError("对话文本过短（至少 20 个字符）")
	}
	return nil
}

// extractKeywords 提取关键词，按词频降序排列，同频按首次出现顺序
func extractKeywords(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)

	freq := make(map[string]int)
	firstSeen := make(map[string]int)
	order := make([]string, 0)
	for _, w := range words {
		if len([]rune(w)) < minKeywordLength {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, ok := freq[w]; !ok {
			firstSeen[w] = len(order)
			order = append(order, w)
		}
		freq[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if freq[order[i]] != freq[order[j]] {
			return freq[order[i]] > freq[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}

// findMatchedTopics 找出同时出现在两份关键词列表中的话题并计算相关度
// 词频取关键词在原始全文（小写）中的子串出现次数，而非仅 top-30 统计
func findMatchedTopics(goalKeywords, convKeywords []string, goalText, convText string) []TopicMatch {
	convIndex := make(map[string]int, len(convKeywords))
	for i, kw := range convKeywords {
		convIndex[kw] = i
	}

	goalLower := strings.ToLower(goalText)
	convLower := strings.ToLower(convText)

	matched := make([]TopicMatch, 0)
	for i, kw := range goalKeywords {
		j, ok := convIndex[kw]
		if !ok {
			continue
		}

		goalFreq := strings.Count(goalLower, kw)
		convFreq := strings.Count(convLower, kw)

		// 位置越靠前相关度越高，频率作为上限为 1 的加权因子
		goalPos := 1.0 - float64(i)/float64(len(goalKeywords))
		convPos := 1.0 - float64(j)/float64(len(convKeywords))
		relevance := (goalPos + convPos) / 2.0 * minFloat(1.0, float64(goalFreq+convFreq)/10.0)

		matched = append(matched, TopicMatch{
			Keyword:               kw,
			GoalFrequency:         goalFreq,
			ConversationFrequency: convFreq,
			RelevanceScore:        relevance,
		})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].RelevanceScore > matched[j].RelevanceScore
	})
	return matched
}

// alignmentScore 综合匹配质量（0.6）与覆盖率（0.4）计算整体对齐分，钳位到 [0,1]
func alignmentScore(matched []TopicMatch, goalKeywords []string) float64 {
	if len(goalKeywords) == 0 || len(matched) == 0 {
		return 0.0
	}

	var totalRelevance float64
	for _, m := range matched {
		totalRelevance += m.RelevanceScore
	}
	quality := totalRelevance / float64(len(matched))
	coverage := float64(len(matched)) / float64(len(goalKeywords))

	score := 0.6*quality + 0.4*coverage
	return minFloat(1.0, maxFloat(0.0, score))
}

// goalCoverage 目标关键词被对话覆盖的比例
func goalCoverage(goalKeywords, convKeywords []string) float64 {
	if len(goalKeywords) == 0 {
		return 0.0
	}
	convSet := make(map[string]struct{}, len(convKeywords))
	for _, kw := range convKeywords {
		convSet[kw] = struct{}{}
	}
	matched := 0
	for _, kw := range goalKeywords {
		if _, ok := convSet[kw]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(goalKeywords))
}

// categorize 将对齐分映射为类别
func categorize(score float64) string {
	switch {
	case score >= 0.7:
		return "high"
	case score >= 0.4:
		return "medium"
	case score >= 0.15:
		return "low"
	default:
		return "none"
	}
}

// missingTopics 目标中未被讨论的关键词，按重要度取前 5 个
func missingTopics(goalKeywords, convKeywords []string) []string {
	convSet := make(map[string]struct{}, len(convKeywords))
	for _, kw := range convKeywords {
		convSet[kw] = struct{}{}
	}
	missing := make([]string, 0)
	for _, kw := range goalKeywords {
		if _, ok := convSet[kw]; !ok {
			missing = append(missing, kw)
		}
	}
	if len(missing) > 5 {
		missing = missing[:5]
	}
	return missing
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
