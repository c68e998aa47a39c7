package svc

import (
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/fachebot/oneonone-mirror/internal/config"
	"github.com/fachebot/oneonone-mirror/internal/llm"
	"github.com/fachebot/oneonone-mirror/internal/logger"
	"github.com/fachebot/oneonone-mirror/internal/storage"

	"golang.org/x/net/proxy"
)

type ServiceContext struct {
	Config         *config.Config
	DB             *storage.DB
	TransportProxy *http.Transport
	ReportStore    *storage.ReportStore
	GoalStore      *storage.GoalStore
	LLMClient      *llm.Client
}

func NewServiceContext(c *config.Config) *ServiceContext {
	// 打开数据库
	db, err := storage.Open(c.Storage.Path)
	if err != nil {
		logger.Fatalf("打开数据库失败, %v", err)
	}

	// 创建SOCKS5代理
	var transportProxy *http.Transport
	if c.Sock5Proxy.Enable {
		socks5Proxy := fmt.Sprintf("%s:%d", c.Sock5Proxy.Host, c.Sock5Proxy.Port)
		dialer, err := proxy.SOCKS5("tcp", socks5Proxy, nil, proxy.Direct)
		if err != nil {
			logger.Fatalf("创建SOCKS5代理失败, %v", err)
		}

		transportProxy = &http.Transport{
			Dial:            dialer.Dial,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	svcCtx := &ServiceContext{
		Config:         c,
		DB:             db,
		TransportProxy: transportProxy,
		ReportStore:    storage.NewReportStore(db),
		GoalStore:      storage.NewGoalStore(db),
		LLMClient:      llm.NewClient(&c.LLM, transportProxy),
	}
	return svcCtx
}

func (svcCtx *ServiceContext) Close() {
	if err := svcCtx.DB.Close(); err != nil {
		logger.Errorf("关闭数据库失败, %v", err)
	}
}
