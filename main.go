package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fachebot/oneonone-mirror/internal/analyzer"
	"github.com/fachebot/oneonone-mirror/internal/config"
	"github.com/fachebot/oneonone-mirror/internal/logger"
	"github.com/fachebot/oneonone-mirror/internal/oneonone"
	"github.com/fachebot/oneonone-mirror/internal/scheduler"
	"github.com/fachebot/oneonone-mirror/internal/svc"
	"github.com/fachebot/oneonone-mirror/internal/transcript"
)

var (
	configFile     = flag.String("f", "etc/config.yaml", "the config file")
	sessionID      = flag.String("session", "", "待分析的会谈标识")
	memberID       = flag.String("member", "", "会谈对应的成员标识")
	transcriptFile = flag.String("transcript", "", "Whisper verbose_json 转写文件路径")
	goalText       = flag.String("goal", "", "可选：分析前登记成员的目标文本")
)

func main() {
	flag.Parse()

	// 读取配置文件
	c, err := config.LoadFromFile(*configFile)
	if err != nil {
		logger.Fatalf("读取配置文件失败, %s", err)
	}

	// 创建数据目录
	dataDir := filepath.Dir(c.Storage.Path)
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		err := os.MkdirAll(dataDir, 0755)
		if err != nil {
			logger.Fatalf("创建数据目录失败, %s", err)
		}
	}

	// 创建服务上下文
	svcCtx := svc.NewServiceContext(c)
	defer svcCtx.Close()

	// 指定了转写文件则执行单次分析，否则以守护模式运行定时清理
	if *transcriptFile != "" {
		runAnalysis(svcCtx)
		return
	}
	runDaemon(svcCtx)
}

// runAnalysis 对一份转写执行单次分析并输出合并报告
func runAnalysis(svcCtx *svc.ServiceContext) {
	if *sessionID == "" || *memberID == "" {
		logger.Fatalf("单次分析需要同时指定 -session 和 -member")
	}

	ctx := context.Background()
	c := svcCtx.Config

	if *goalText != "" {
		if err := svcCtx.GoalStore.Upsert(ctx, *memberID, *goalText); err != nil {
			logger.Fatalf("登记成员目标失败, %s", err)
		}
	}

	t, err := transcript.LoadWhisperFile(*transcriptFile, c.Speakers.ManagerID, c.Speakers.MemberID)
	if err != nil {
		logger.Fatalf("加载转写失败, %s", err)
	}

	service := oneonone.NewService(
		analyzer.NewOrchestrator(svcCtx.LLMClient),
		svcCtx.GoalStore,
		svcCtx.ReportStore,
	)
	result, err := service.Analyze(ctx, *sessionID, *memberID, t)
	if err != nil {
		logger.Fatalf("会谈分析失败, %s", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatalf("序列化报告失败, %s", err)
	}
	fmt.Println(string(data))
}

// runDaemon 守护模式：启动定时清理任务并等待退出信号
func runDaemon(svcCtx *svc.ServiceContext) {
	schedulerInstance := scheduler.NewScheduler(svcCtx.ReportStore, &svcCtx.Config.Report)
	if err := schedulerInstance.Start(); err != nil {
		logger.Fatalf("[Scheduler] 启动调度器失败: %s", err)
	}

	// 等待程序退出
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	// 优雅关闭
	logger.Infof("正在关闭服务...")
	schedulerInstance.Stop()
	logger.Infof("服务已停止")
}
