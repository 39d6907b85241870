// @title Interview Marker API
// @version 1.0
// @description 面试答案人工评审服务：逐条查看答案与机器反馈，打分并写入反馈表。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"interview_marker_backend/internal/app"
	"interview_marker_backend/internal/config"
	"log"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移（及答案导入），完成后退出")
	importAnswers := flag.String("import-answers", "", "启动前从 CSV 导入答案（AnswerText, GPTFeedback 两列）")
	configDir := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.MigrateOnly = *migrateOnly
	cfg.ImportAnswers = *importAnswers

	application := app.NewApp(cfg)

	if *migrateOnly {
		application.Close()
		log.Println("数据库迁移完成，退出程序")
		return
	}

	application.Run()
}
