package calculator

import "fmt"

// ValidationError 输入数据不合法（空段列表、时间戳倒序、未知说话人、文本过短等）
// 在任何计算或外部调用之前抛出，避免浪费网络请求
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("输入验证失败: %s", e.Reason)
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
