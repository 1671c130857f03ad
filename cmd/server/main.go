package main

import (
	"log"

	"github.com/timekids/internal/config"
	"github.com/timekids/internal/db"
	"github.com/timekids/internal/router"
)

func main() {
	cfg := config.Load()

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 可选的初始家长账号（便于首次部署）
	if err := db.EnsureParent(cfg.RootParentUserName, cfg.RootParentPassword); err != nil {
		log.Fatalf("failed to ensure root parent account: %v", err)
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(&cfg)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
