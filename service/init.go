/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移与全局服务装配
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/backend_requirements.md
 * @stateFlow 应用启动时执行初始化流程
 * @rules 确保所有依赖服务正常启动后才提供API服务
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs service/database/migrate.go
 */

package service

import (
	"fmt"
	"log"
	"os"

	"mne-service/client/connectors"
	"mne-service/service/database"
	"mne-service/service/distributed_lock"
	"mne-service/service/event"
	"mne-service/service/importer"
	"mne-service/service/scheduler"
	"mne-service/service/submission"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB                      *gorm.DB
	GlobalEventService      *event.EventService
	GlobalSubmissionService *submission.Service
	GlobalTemplateService   *importer.TemplateService
	GlobalImportService     *importer.Service
	GlobalGapScanScheduler  *scheduler.GapScanScheduler
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		// 使用分离的环境变量构建连接字符串
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "postgres")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=Asia/Shanghai",
			host, port, user, password, dbname, sslmode, schema)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	log.Println("数据库表结构迁移完成")
}

// initServices 初始化服务
func initServices() {
	// 事件服务，Kafka未配置时仅落库
	kafka := connectors.NewKafkaConnectorFromEnv()
	GlobalEventService = event.NewEventService(DB, kafka)

	GlobalSubmissionService = submission.NewService(DB, GlobalEventService)
	GlobalTemplateService = importer.NewTemplateService(DB)

	// 分布式锁，Redis不可用时导入提交退化为无锁
	var lock distributed_lock.DistributedLock
	if redisLock, err := distributed_lock.NewRedisLock(); err != nil {
		log.Printf("Redis分布式锁初始化失败，使用无锁模式: %v", err)
	} else {
		lock = redisLock
	}

	GlobalImportService = importer.NewService(DB, GlobalTemplateService, GlobalEventService, lock)

	// 缺报扫描调度器
	GlobalGapScanScheduler = scheduler.NewGapScanScheduler(DB, GlobalSubmissionService, GlobalEventService)
	GlobalGapScanScheduler.SetDistributedLock(lock)
	if err := GlobalGapScanScheduler.StartScheduler(); err != nil {
		log.Printf("启动缺报扫描调度器失败: %v", err)
	}

	log.Println("服务初始化完成")
}
