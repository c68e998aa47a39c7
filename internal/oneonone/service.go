package oneonone

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fachebot/oneonone-mirror/internal/analyzer"
	"github.com/fachebot/oneonone-mirror/internal/logger"
	"github.com/fachebot/oneonone-mirror/internal/report"
	"github.com/fachebot/oneonone-mirror/internal/storage"
	"github.com/fachebot/oneonone-mirror/internal/transcript"
	"github.com/google/uuid"
)

// defaultGoalText 成员未登记目标时使用的占位文本，不视为错误
const defaultGoalText = "No specific goal provided."

// goalProvider 获取成员目标（便于测试注入 mock）
type goalProvider interface {
	GetByMember(ctx context.Context, memberID string) (string, error)
}

// reportStore 报告读写（便于测试注入 mock）
type reportStore interface {
	Save(ctx context.Context, rec *storage.ReportRecord) error
	Get(ctx context.Context, sessionID string) (*storage.ReportRecord, error)
}

// analysisRunner 对一份转写执行全量分析（便于测试注入 mock）
type analysisRunner interface {
	Run(ctx context.Context, t *transcript.Transcript, goalText string) (*analyzer.Aggregate, error)
}

// Service 一次 1on1 会谈分析的完整用例：
// 解析目标 → 并发分析 → 投影两个视图 → 覆盖式持久化
type Service struct {
	orchestrator analysisRunner
	goals        goalProvider
	reports      reportStore
}

func NewService(orchestrator *analyzer.Orchestrator, goals *storage.GoalStore, reports *storage.ReportStore) *Service {
	return &Service{
		orchestrator: orchestrator,
		goals:        goals,
		reports:      reports,
	}
}

// Analyze 对一次会谈执行分析并持久化合并报告
// 同一 session 重复分析时新报告整体覆盖旧报告
func (s *Service) Analyze(ctx context.Context, sessionID, memberID string, t *transcript.Transcript) (*report.SessionReport, error) {
	runID := uuid.NewString()
	logger.Infof("[OneOnOne] 开始分析会谈, session=%s, run=%s", sessionID, runID)

	goalText, err := s.goals.GetByMember(ctx, memberID)
	if errors.Is(err, storage.ErrNotFound) {
		logger.Warnf("[OneOnOne] 成员 %s 未登记目标，使用占位文本", memberID)
		goalText = defaultGoalText
	} else if err != nil {
		return nil, fmt.Errorf("获取成员目标失败: %w", err)
	}

	agg, err := s.orchestrator.Run(ctx, t, goalText)
	if err != nil {
		return nil, err
	}

	sessionReport := &report.SessionReport{
		Manager:     report.ProjectManager(agg),
		Member:      report.ProjectMember(agg),
		PerformedAt: time.Now(),
	}

	managerJSON, err := json.Marshal(sessionReport.Manager)
	if err != nil {
		return nil, fmt.Errorf("序列化管理者视图失败: %w", err)
	}
	memberJSON, err := json.Marshal(sessionReport.Member)
	if err != nil {
		return nil, fmt.Errorf("序列化成员视图失败: %w", err)
	}

	rec := &storage.ReportRecord{
		SessionID:   sessionID,
		RunID:       runID,
		ManagerJSON: string(managerJSON),
		MemberJSON:  string(memberJSON),
		PerformedAt: sessionReport.PerformedAt,
	}
	if err := s.reports.Save(ctx, rec); err != nil {
		return nil, err
	}

	logger.Infof("[OneOnOne] 会谈分析完成, session=%s, 安全感=%d, 对齐分=%.2f",
		sessionID, agg.Safety.SafetyScore, agg.Alignment.AlignmentScore)
	return sessionReport, nil
}

// GetReport 查询已保存的会谈报告，从未分析过时返回 storage.ErrNotFound
func (s *Service) GetReport(ctx context.Context, sessionID string) (*report.SessionReport, error) {
	rec, err := s.reports.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var result report.SessionReport
	if err := json.Unmarshal([]byte(rec.ManagerJSON), &result.Manager); err != nil {
		return nil, fmt.Errorf("解析管理者视图失败: %w", err)
	}
	if err := json.Unmarshal([]byte(rec.MemberJSON), &result.Member); err != nil {
		return nil, fmt.Errorf("解析成员视图失败: %w", err)
	}
	result.PerformedAt = rec.PerformedAt
	return &result, nil
}
