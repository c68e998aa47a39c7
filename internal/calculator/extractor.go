package calculator

import (
	"context"
	"encoding/json"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// structuredExtractor 结构化洞察提取能力（便于测试注入 mock）
// 生产实现为 llm.Client
type structuredExtractor interface {
	Extract(ctx context.Context, systemPrompt, userMessage string, schema *jsonschema.Definition) (json.RawMessage, error)
}
