package transcript

import (
	"encoding/json"
	"fmt"
	"os"
)

// whisperSegment Whisper verbose_json 中的单个转写段（无说话人标签）
type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// whisperResponse Whisper verbose_json 响应中本服务关心的字段
type whisperResponse struct {
	Duration float64          `json:"duration"`
	Segments []whisperSegment `json:"segments"`
}

// LoadWhisperFile 从 Whisper verbose_json 文件加载转写并打上说话人标签
// Whisper 不输出说话人信息，这里沿用上游的占位策略：按段交替分配
// manager/member，真实的说话人分离由上游替换该步骤
func LoadWhisperFile(path, managerID, memberID string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取转写文件失败: %w", err)
	}

	var resp whisperResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("解析 Whisper verbose_json 失败: %w", err)
	}

	segments := labelAlternating(resp.Segments, managerID, memberID)

	var total *float64
	if resp.Duration > 0 {
		total = &resp.Duration
	}
	return New(segments, managerID, memberID, total), nil
}

// labelAlternating 占位的说话人标注：偶数段记为管理者，奇数段记为成员
func labelAlternating(raw []whisperSegment, managerID, memberID string) []SpeechSegment {
	if managerID == "" {
		managerID = "manager"
	}
	if memberID == "" {
		memberID = "member"
	}

	segments := make([]SpeechSegment, len(raw))
	for i, seg := range raw {
		speaker := managerID
		if i%2 == 1 {
			speaker = memberID
		}
		segments[i] = SpeechSegment{
			Speaker:   speaker,
			Text:      seg.Text,
			StartTime: seg.Start,
			EndTime:   seg.End,
		}
	}
	return segments
}
