package calculator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fachebot/oneonone-mirror/internal/llm"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// StyleExample 某种沟通风格的典型例句
type StyleExample struct {
	Text   string `json:"text"`   // 转写中的原句
	Style  string `json:"style"`  // "coaching" 或 "directive"
	Reason string `json:"reason"` // 归类理由
}

// StyleResult 沟通风格（教练式 vs 指令式）分析结果
type StyleResult struct {
	DirectiveScore      float64        `json:"directive_score"`      // 0-100
	CoachingScore       float64        `json:"coaching_score"`       // 0-100，与 DirectiveScore 之和约为 100（不做数值强制）
	BalanceAssessment   string         `json:"balance_assessment"`   // 如 "Coaching Dominant" / "Balanced" / "Directive Dominant"
	KeyExamples         []StyleExample `json:"key_examples"`
	ImprovementFeedback string         `json:"improvement_feedback"` // 面向管理者的改进建议
}

const styleSystemPrompt = `You are an expert Executive Coach Analyzer.
Your task is to analyze a 1-on-1 meeting transcript between a Manager and a Team Member.

Focus ONLY on the Manager's speech.

Classify the Manager's communication into two styles:
1. **Directive Style**: Giving solutions, instructions, teaching, advice-giving, stating facts, controlling the agenda.
   (e.g., "You should do X", "I want you to...", "Here is the answer.")
2. **Coaching Style**: Asking open-ended questions, active listening, reflecting back, facilitating self-discovery, empowering.
   (e.g., "What do you think?", "How would you approach this?", "What did you learn?")

Analyze the 'Manager's' lines specifically.

Output Requirements:
- Estimate the percentage ratio of Directive vs Coaching (should sum to approx 100%).
- Provide concrete examples from the text.
- Provide constructive feedback.`

// styleSchema StyleResult 的结构化输出 schema
var styleSchema = &jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"directive_score": {
			Type:        jsonschema.Number,
			Description: "Percentage of directive communication (0-100)",
		},
		"coaching_score": {
			Type:        jsonschema.Number,
			Description: "Percentage of coaching communication (0-100)",
		},
		"balance_assessment": {
			Type:        jsonschema.String,
			Description: "Short assessment of the balance (e.g. 'Coaching Dominant', 'Balanced', 'Directive Dominant')",
		},
		"key_examples": {
			Type:        jsonschema.Array,
			Description: "Key examples of each style from the conversation",
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"text":   {Type: jsonschema.String, Description: "The quoted sentence from the transcript"},
					"style":  {Type: jsonschema.String, Enum: []string{"coaching", "directive"}},
					"reason": {Type: jsonschema.String, Description: "Why this was classified as such"},
				},
				Required: []string{"text", "style", "reason"},
			},
		},
		"improvement_feedback": {
			Type:        jsonschema.String,
			Description: "Actionable feedback to improve coaching style",
		},
	},
	Required: []string{"directive_score", "coaching_score", "balance_assessment", "improvement_feedback"},
}

// StyleAnalyzer 分析管理者的沟通风格（教练式 vs 指令式）
// 分类由 LLM 完成，本地只做 schema 校验，不再对结果做后处理
type StyleAnalyzer struct {
	extractor structuredExtractor
}

func NewStyleAnalyzer(client *llm.Client) *StyleAnalyzer {
	return &StyleAnalyzer{extractor: client}
}

// Calculate 从完整对话文本分析沟通风格
func (a *StyleAnalyzer) Calculate(ctx context.Context, conversation string) (*StyleResult, error) {
	if strings.TrimSpace(conversation) == "" {
		return nil, newValidationError("对话文本不能为空")
	}

	raw, err := a.extractor.Extract(
		ctx,
		styleSystemPrompt,
		"Analyze the following transcript:\n\n"+conversation,
		styleSchema,
	)
	if err != nil {
		return nil, err
	}
	return parseStyleResult(raw)
}

// styleResultPayload 解析中间结构，指针字段用于检查必填项
type styleResultPayload struct {
	DirectiveScore      *float64       `json:"directive_score"`
	CoachingScore       *float64       `json:"coaching_score"`
	BalanceAssessment   *string        `json:"balance_assessment"`
	KeyExamples         []StyleExample `json:"key_examples"`
	ImprovementFeedback *string        `json:"improvement_feedback"`
}

// parseStyleResult 在服务边界做一次完整校验，边界之内只流转类型化结果
func parseStyleResult(raw json.RawMessage) (*StyleResult, error) {
	var p styleResultPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &llm.SchemaViolationError{Reason: "无法解析工具参数: " + err.Error()}
	}

	if p.DirectiveScore == nil {
		return nil, &llm.SchemaViolationError{Reason: "缺少 directive_score"}
	}
	if p.CoachingScore == nil {
		return nil, &llm.SchemaViolationError{Reason: "缺少 coaching_score"}
	}
	if p.BalanceAssessment == nil {
		return nil, &llm.SchemaViolationError{Reason: "缺少 balance_assessment"}
	}
	if p.ImprovementFeedback == nil {
		return nil, &llm.SchemaViolationError{Reason: "缺少 improvement_feedback"}
	}
	if *p.DirectiveScore < 0 || *p.DirectiveScore > 100 {
		return nil, &llm.SchemaViolationError{Reason: "directive_score 超出 [0,100] 范围"}
	}
	if *p.CoachingScore < 0 || *p.CoachingScore > 100 {
		return nil, &llm.SchemaViolationError{Reason: "coaching_score 超出 [0,100] 范围"}
	}
	for i, ex := range p.KeyExamples {
		if ex.Style != "coaching" && ex.Style != "directive" {
			return nil, &llm.SchemaViolationError{Reason: fmt.Sprintf("key_examples[%d].style 不是 coaching/directive", i)}
		}
	}

	return &StyleResult{
		DirectiveScore:      *p.DirectiveScore,
		CoachingScore:       *p.CoachingScore,
		BalanceAssessment:   *p.BalanceAssessment,
		KeyExamples:         p.KeyExamples,
		ImprovementFeedback: *p.ImprovementFeedback,
	}, nil
}
