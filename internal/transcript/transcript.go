package transcript

import (
	"fmt"
	"sort"
	"strings"
)

// SpeechSegment 一段连续的单人发言，带起止时间戳（秒）
type SpeechSegment struct {
	Speaker   string  `json:"speaker"`
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// Duration 该段发言的时长（秒）
func (s SpeechSegment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// Transcript 一次 1on1 会谈的完整转写
// 每个 Segment 的 Speaker 必须等于 ManagerID 或 MemberID 之一
type Transcript struct {
	Segments      []SpeechSegment `json:"segments"`
	ManagerID     string          `json:"manager_identifier"`
	MemberID      string          `json:"member_identifier"`
	TotalDuration *float64        `json:"total_duration,omitempty"` // 会议总时长（秒），为空时以最后一段的结束时间为准
}

// New 创建 Transcript，说话人标识为空时使用默认值
func New(segments []SpeechSegment, managerID, memberID string, totalDuration *float64) *Transcript {
	if managerID == "" {
		managerID = "manager"
	}
	if memberID == "" {
		memberID = "member"
	}
	return &Transcript{
		Segments:      segments,
		ManagerID:     managerID,
		MemberID:      memberID,
		TotalDuration: totalDuration,
	}
}

// SortedSegments 返回按开始时间稳定排序的发言段副本，不修改原始数据
func (t *Transcript) SortedSegments() []SpeechSegment {
	sorted := make([]SpeechSegment, len(t.Segments))
	copy(sorted, t.Segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})
	return sorted
}

// PlainText 将发言段按时间顺序拼接为 "speaker: text" 形式的纯文本，
// 供 LLM 分析器作为完整对话输入
func (t *Transcript) PlainText() string {
	sorted := t.SortedSegments()
	parts := make([]string, len(sorted))
	for i, seg := range sorted {
		parts[i] = fmt.Sprintf("%s: %s", seg.Speaker, seg.Text)
	}
	return strings.Join(parts, " ")
}
