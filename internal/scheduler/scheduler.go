package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fachebot/oneonone-mirror/internal/config"
	"github.com/fachebot/oneonone-mirror/internal/logger"
	"github.com/robfig/cron/v3"
)

// reportPruner 按时间清理报告（便于测试注入 mock）
type reportPruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler 定时清理超过保留期的历史报告
type Scheduler struct {
	cron    *cron.Cron
	reports reportPruner
	config  *config.Report
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
}

// locUTC 清理任务统一使用 UTC 时区
var locUTC = time.UTC

func NewScheduler(reports reportPruner, cfg *config.Report) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(locUTC)),
		reports: reports,
		config:  cfg,
	}
}

// Start 启动调度器，RetentionDays 为 0 时不注册任何任务
func (s *Scheduler) Start() error {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	if s.config.RetentionDays <= 0 {
		logger.Infof("[Scheduler] 未配置报告保留期，跳过清理任务")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.CleanupCron, s.runCleanup)
	if err != nil {
		return fmt.Errorf("注册报告清理任务失败: %w", err)
	}

	s.cron.Start()
	logger.Infof("[Scheduler] 调度器已启动，报告清理任务: %s", s.config.CleanupCron)
	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Infof("[Scheduler] 调度器已停止")
}

// runCleanup 执行一次报告清理（cron 触发）
func (s *Scheduler) runCleanup() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		logger.Infof("[Scheduler] 任务已取消，退出")
		return
	default:
	}

	cutoff := time.Now().In(locUTC).AddDate(0, 0, -s.config.RetentionDays)
	deleted, err := s.reports.PruneBefore(ctx, cutoff)
	if err != nil {
		logger.Errorf("[Scheduler] 报告清理失败: %v", err)
		return
	}
	if deleted > 0 {
		logger.Infof("[Scheduler] 已清理 %d 份过期报告（早于 %s）", deleted, cutoff.Format("2006-01-02"))
	}
}
