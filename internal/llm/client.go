package llm

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fachebot/oneonone-mirror/internal/config"
	"github.com/fachebot/oneonone-mirror/internal/logger"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// recordResultTool 强制 LLM 调用的工具名，分析结果只接受该工具的结构化参数
const recordResultTool = "record_analysis_result"

// openAIClientInterface 定义 OpenAI 客户端接口，便于测试
type openAIClientInterface interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client 面向结构化输出的 LLM 客户端
// 每次请求强制模型发起一次 record_analysis_result 工具调用，
// 不接受自由文本回答，返回原始工具参数由调用方做类型化解析
type Client struct {
	config       *config.LLM
	openaiClient openAIClientInterface
}

// NewClient 创建 LLM 客户端，transport 不为空时经由其访问服务（如 SOCKS5 代理）
func NewClient(cfg *config.LLM, transport *http.Transport) *Client {
	openaiConfig := openai.DefaultConfig(cfg.APIKey)
	openaiConfig.BaseURL = cfg.BaseURL
	if transport != nil {
		openaiConfig.HTTPClient = &http.Client{Transport: transport}
	}

	return &Client{
		config:       cfg,
		openaiClient: openai.NewClientWithConfig(openaiConfig),
	}
}

// Extract 发起一次结构化分析请求，返回工具调用的原始 JSON 参数
//
// 失败语义：
//   - ConfigurationError: 未配置 APIKey，调用前快速失败
//   - ExternalServiceError: 网络或服务端错误
//   - SchemaViolationError: 响应中不包含匹配的工具调用
func (c *Client) Extract(ctx context.Context, systemPrompt, userMessage string, schema *jsonschema.Definition) (json.RawMessage, error) {
	if c.config.APIKey == "" {
		return nil, &ConfigurationError{Reason: "LLM APIKey 未配置"}
	}

	req := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        recordResultTool,
					Description: "Record the analysis result in the specified structure.",
					Parameters:  schema,
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: recordResultTool},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	logger.Debugf("[LLM] 发起结构化分析请求, model=%s", c.config.Model)
	resp, err := c.openaiClient.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, &ExternalServiceError{Err: err}
	}

	if len(resp.Choices) == 0 {
		return nil, &SchemaViolationError{Reason: "响应中没有候选结果"}
	}

	for _, call := range resp.Choices[0].Message.ToolCalls {
		if call.Type == openai.ToolTypeFunction && call.Function.Name == recordResultTool {
			return json.RawMessage(call.Function.Arguments), nil
		}
	}
	return nil, &SchemaViolationError{Reason: "响应中没有 " + recordResultTool + " 工具调用"}
}
