package llm

import "fmt"

// ConfigurationError 外部服务凭证缺失等配置问题，发起请求前快速失败
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("配置错误: %s", e.Reason)
}

// ExternalServiceError 调用外部 LLM 服务时的网络或服务端失败
type ExternalServiceError struct {
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("调用 LLM 服务失败: %v", e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// SchemaViolationError LLM 返回内容不包含匹配的结构化调用，或字段校验失败
type SchemaViolationError struct {
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("LLM 返回结构不符合要求: %s", e.Reason)
}
