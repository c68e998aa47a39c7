package calculator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fachebot/oneonone-mirror/internal/llm"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// SafetyIndicator 影响心理安全感的单个观察项
type SafetyIndicator struct {
	Category    string  `json:"category"`        // 如 "Empathy" / "Blame" / "Listening"
	Description string  `json:"description"`     // 观察描述
	Quote       *string `json:"quote,omitempty"` // 转写原文引用，可为空
	Impact      string  `json:"impact"`          // "Positive" 或 "Negative"
}

// SafetyResult 心理安全感分析结果
type SafetyResult struct {
	SafetyScore             int               `json:"safety_score"` // 0-100 整数
	ScoreRationale          string            `json:"score_rationale"`
	PositiveFactors         []SafetyIndicator `json:"positive_factors"`
	RiskFactors             []SafetyIndicator `json:"risk_factors"`
	ManagerBehaviorAnalysis string            `json:"manager_behavior_analysis"`
}

const safetySystemPrompt = `You are an expert in Organizational Psychology, specifically focusing on **Psychological Safety**.

Your task is to analyze a 1-on-1 meeting transcript and assess the level of psychological safety present.

**Definition of Psychological Safety (Amy Edmondson):**
"A belief that one will not be punished or humiliated for speaking up with ideas, questions, concerns, or mistakes."

**Analysis Framework:**

1. **Psychological Safety Enhancers (+):**
   - **Curiosity:** Asking genuine questions to understand.
   - **Vulnerability:** Admitting mistakes or "I don't know".
   - **Active Listening:** Validating feelings, paraphrasing.
   - **Empathy:** Acknowledging emotions.
   - **Feedback Solicitation:** Asking for feedback.

2. **Psychological Safety Inhibitors (-):**
   - **Blame/Judgment:** Focusing on "Who did it?" rather than "What happened?".
   - **Dismissiveness:** Ignoring or minimizing concerns.
   - **Interruption:** Cutting off the other person.
   - **Defensiveness:** Reacting negatively to feedback.
   - **Fear Instillation:** Threats or aggressive tone (textual evidence).

Assess the interaction dynamics between the Manager and Member.
Assign a score 0-100 (where 100 is perfectly safe).`

// indicatorSchema SafetyIndicator 的结构化输出 schema
var indicatorSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"category":    {Type: jsonschema.String, Description: "Category (e.g., 'Empathy', 'Blame', 'Listening')"},
		"description": {Type: jsonschema.String, Description: "Description of the observation"},
		"quote":       {Type: jsonschema.String, Description: "Relevant quote from transcript if applicable"},
		"impact":      {Type: jsonschema.String, Enum: []string{"Positive", "Negative"}},
	},
	Required: []string{"category", "description", "impact"},
}

// safetySchema SafetyResult 的结构化输出 schema
var safetySchema = &jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"safety_score": {
			Type:        jsonschema.Integer,
			Description: "Psychological Safety Score (0-100)",
		},
		"score_rationale": {
			Type:        jsonschema.String,
			Description: "Explanation of why this score was given",
		},
		"positive_factors": {
			Type:        jsonschema.Array,
			Description: "Factors that enhanced safety",
			Items:       &indicatorSchema,
		},
		"risk_factors": {
			Type:        jsonschema.Array,
			Description: "Factors that diminished safety",
			Items:       &indicatorSchema,
		},
		"manager_behavior_analysis": {
			Type:        jsonschema.String,
			Description: "Specific analysis of manager's behavior regarding safety",
		},
	},
	Required: []string{"safety_score", "score_rationale", "manager_behavior_analysis"},
}

// SafetyAnalyzer 基于 Edmondson 的心理安全感定义评估会谈氛围
type SafetyAnalyzer struct {
	extractor structuredExtractor
}

func NewSafetyAnalyzer(client *llm.Client) *SafetyAnalyzer {
	return &SafetyAnalyzer{extractor: client}
}

// Calculate 从完整对话文本计算心理安全感评分
func (a *SafetyAnalyzer) Calculate(ctx context.Context, conversation string) (*SafetyResult, error) {
	if strings.TrimSpace(conversation) == "" {
		return nil, newValidationError("对话文本不能为空")
	}

	raw, err := a.extractor.Extract(
		ctx,
		safetySystemPrompt,
		"Analyze the psychological safety of this interaction:\n\n"+conversation,
		safetySchema,
	)
	if err != nil {
		return nil, err
	}
	return parseSafetyResult(raw)
}

// safetyResultPayload 解析中间结构，指针字段用于检查必填项
type safetyResultPayload struct {
	SafetyScore             *int              `json:"safety_score"`
	ScoreRationale          *string           `json:"score_rationale"`
	PositiveFactors         []SafetyIndicator `json:"positive_factors"`
	RiskFactors             []SafetyIndicator `json:"risk_factors"`
	ManagerBehaviorAnalysis *string           `json:"manager_behavior_analysis"`
}

// parseSafetyResult 在服务边界做一次完整校验，边界之内只流转类型化结果
func parseSafetyResult(raw json.RawMessage) (*SafetyResult, error) {
	var p safetyResultPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &llm.SchemaViolationError{Reason: "无法解析工具参数: " + err.Error()}
	}

	if p.SafetyScore == nil {
		return nil, &llm.SchemaViolationError{Reason: "缺少 safety_score"}
	}
	if p.ScoreRationale == nil {
		return nil, &llm.SchemaViolationError{Reason: "缺少 score_rationale"}
	}
	if p.ManagerBehaviorAnalysis == nil {
		return nil, &llm.SchemaViolationError{Reason: "缺少 manager_behavior_analysis"}
	}
	if *p.SafetyScore < 0 || *p.SafetyScore > 100 {
		return nil, &llm.SchemaViolationError{Reason: "safety_score 超出 [0,100] 范围"}
	}
	if err := validateIndicators("positive_factors", p.PositiveFactors); err != nil {
		return nil, err
	}
	if err := validateIndicators("risk_factors", p.RiskFactors); err != nil {
		return nil, err
	}

	return &SafetyResult{
		SafetyScore:             *p.SafetyScore,
		ScoreRationale:          *p.ScoreRationale,
		PositiveFactors:         p.PositiveFactors,
		RiskFactors:             p.RiskFactors,
		ManagerBehaviorAnalysis: *p.ManagerBehaviorAnalysis,
	}, nil
}

func validateIndicators(field string, indicators []SafetyIndicator) error {
	for i, ind := range indicators {
		if ind.Category == "" {
			return &llm.SchemaViolationError{Reason: fmt.Sprintf("%s[%d] 缺少 category", field, i)}
		}
		if ind.Description == "" {
			return &llm.SchemaViolationError{Reason: fmt.Sprintf("%s[%d] 缺少 description", field, i)}
		}
		if ind.Impact != "Positive" && ind.Impact != "Negative" {
			return &llm.SchemaViolationError{Reason: fmt.Sprintf("%s[%d].impact 不是 Positive/Negative", field, i)}
		}
	}
	return nil
}
