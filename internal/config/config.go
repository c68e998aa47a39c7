package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Sock5Proxy struct {
	Host   string `yaml:"Host"`
	Port   int32  `yaml:"Port"`
	Enable bool   `yaml:"Enable"`
}

type LLM struct {
	BaseURL     string  `yaml:"BaseURL"` // 兼容 OpenAI API 的端点
	APIKey      string  `yaml:"APIKey"`
	Model       string  `yaml:"Model"`       // 如 gpt-4o, deepseek-chat, qwen-plus
	MaxTokens   int     `yaml:"MaxTokens"`   // 单次结构化输出的最大 token 数
	Temperature float32 `yaml:"Temperature"` // 采样温度，分析任务建议 0
}

type Storage struct {
	Path string `yaml:"Path"` // SQLite 数据库文件路径
}

type Report struct {
	RetentionDays int    `yaml:"RetentionDays"` // 报告保留天数，0=不清理
	CleanupCron   string `yaml:"CleanupCron"`   // 清理任务 cron 表达式，如 "0 3 * * *"
}

type Speakers struct {
	ManagerID string `yaml:"ManagerID"` // 转写中标记管理者的说话人标识
	MemberID  string `yaml:"MemberID"`  // 转写中标记成员的说话人标识
}

type Config struct {
	Sock5Proxy Sock5Proxy `yaml:"Sock5Proxy"`
	LLM        LLM        `yaml:"LLM"`
	Storage    Storage    `yaml:"Storage"`
	Report     Report     `yaml:"Report"`
	Speakers   Speakers   `yaml:"Speakers"`
}

func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var c Config
	err = yaml.Unmarshal([]byte(data), &c)
	if err != nil {
		return nil, err
	}

	c.applyDefaults()

	// 验证配置
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// applyDefaults 填充可省略字段的默认值
func (c *Config) applyDefaults() {
	if c.Speakers.ManagerID == "" {
		c.Speakers.ManagerID = "manager"
	}
	if c.Speakers.MemberID == "" {
		c.Speakers.MemberID = "member"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/oneonone.db"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 4096
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	// 验证 LLM
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM.APIKey 不能为空")
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("LLM.BaseURL 不能为空")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("LLM.Model 不能为空")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM.MaxTokens 必须大于 0")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("LLM.Temperature 必须在 [0, 2] 范围内")
	}

	// 验证 Report
	if c.Report.RetentionDays < 0 {
		return fmt.Errorf("Report.RetentionDays 必须 >= 0")
	}
	if c.Report.RetentionDays > 0 && c.Report.CleanupCron == "" {
		return fmt.Errorf("Report.CleanupCron 不能为空（当 RetentionDays > 0 时）")
	}

	// 验证 Speakers
	if c.Speakers.ManagerID == c.Speakers.MemberID {
		return fmt.Errorf("Speakers.ManagerID 和 Speakers.MemberID 不能相同")
	}

	return nil
}
