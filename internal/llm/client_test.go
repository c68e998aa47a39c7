package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/fachebot/oneonone-mirror/internal/config"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockOpenAIClient 模拟 OpenAI 客户端
type mockOpenAIClient struct {
	mock.Mock
}

func (m *mockOpenAIClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func testLLMConfig() *config.LLM {
	return &config.LLM{
		BaseURL:     "https://api.openai.com/v1",
		APIKey:      "test-key",
		Model:       "gpt-4o",
		MaxTokens:   1024,
		Temperature: 0.2,
	}
}

func testSchema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"score": {Type: jsonschema.Number},
		},
		Required: []string{"score"},
	}
}

func toolCallResponse(name, arguments string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					ToolCalls: []openai.ToolCall{
						{
							Type:     openai.ToolTypeFunction,
							Function: openai.FunctionCall{Name: name, Arguments: arguments},
						},
					},
				},
			},
		},
	}
}

func TestExtract(t *testing.T) {
	mockClient := new(mockOpenAIClient)
	client := &Client{config: testLLMConfig(), openaiClient: mockClient}

	var gotReq openai.ChatCompletionRequest
	mockClient.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotReq = args.Get(1).(openai.ChatCompletionRequest)
		}).
		Return(toolCallResponse(recordResultTool, `{"score": 42}`), nil)

	raw, err := client.Extract(context.Background(), "system prompt", "user message", testSchema())
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 42}`, string(raw))

	// 请求应强制指定工具调用
	assert.Equal(t, "gpt-4o", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, gotReq.Messages[0].Role)
	assert.Equal(t, "system prompt", gotReq.Messages[0].Content)
	assert.Equal(t, "user message", gotReq.Messages[1].Content)
	require.Len(t, gotReq.Tools, 1)
	assert.Equal(t, recordResultTool, gotReq.Tools[0].Function.Name)
	toolChoice, ok := gotReq.ToolChoice.(openai.ToolChoice)
	require.True(t, ok)
	assert.Equal(t, recordResultTool, toolChoice.Function.Name)

	mockClient.AssertExpectations(t)
}

func TestExtract_MissingAPIKey(t *testing.T) {
	// 未配置 APIKey 时不应发起外部请求
	cfg := testLLMConfig()
	cfg.APIKey = ""
	mockClient := new(mockOpenAIClient)
	client := &Client{config: cfg, openaiClient: mockClient}

	raw, err := client.Extract(context.Background(), "system", "user", testSchema())
	assert.Nil(t, raw)

	var configErr *ConfigurationError
	assert.ErrorAs(t, err, &configErr)
	mockClient.AssertNotCalled(t, "CreateChatCompletion", mock.Anything, mock.Anything)
}

func TestExtract_APIError(t *testing.T) {
	mockClient := new(mockOpenAIClient)
	client := &Client{config: testLLMConfig(), openaiClient: mockClient}

	apiErr := errors.New("api error: rate limited")
	mockClient.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, apiErr)

	raw, err := client.Extract(context.Background(), "system", "user", testSchema())
	assert.Nil(t, raw)

	var serviceErr *ExternalServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.ErrorIs(t, err, apiErr)
}

func TestExtract_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		resp openai.ChatCompletionResponse
	}{
		{
			name: "响应没有候选结果",
			resp: openai.ChatCompletionResponse{},
		},
		{
			name: "响应没有工具调用",
			resp: openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{
					{Message: openai.ChatCompletionMessage{Content: "a free-form answer"}},
				},
			},
		},
		{
			name: "工具名不匹配",
			resp: toolCallResponse("some_other_tool", `{}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := new(mockOpenAIClient)
			client := &Client{config: testLLMConfig(), openaiClient: mockClient}
			mockClient.On("CreateChatCompletion", mock.Anything, mock.Anything).
				Return(tt.resp, nil)

			raw, err := client.Extract(context.Background(), "system", "user", testSchema())
			assert.Nil(t, raw)

			var schemaErr *SchemaViolationError
			assert.ErrorAs(t, err, &schemaErr)
		})
	}
}
