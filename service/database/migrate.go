/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新数据库表结构
 * @architecture 数据访问层 - 迁移管理
 * @documentReference ai_docs/model.md
 * @stateFlow 应用启动时执行数据库迁移
 * @rules 确保数据库结构与模型定义保持一致
 * @dependencies mne-service/service/models, gorm.io/gorm
 * @refs service/init.go
 */

package database

import (
	"log"

	"mne-service/service/models"

	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	log.Println("开始数据库迁移...")

	// 指标与提交相关表
	err := db.AutoMigrate(
		&models.Indicator{},
		&models.Submission{},
	)
	if err != nil {
		return err
	}

	// 导入流水线相关表
	err = db.AutoMigrate(
		&models.ImportJob{},
		&models.ImportJobRow{},
		&models.Template{},
	)
	if err != nil {
		return err
	}

	// 事件与告警相关表
	err = db.AutoMigrate(
		&models.PlatformEvent{},
		&models.ReportingGapAlert{},
	)
	if err != nil {
		return err
	}

	log.Println("数据库迁移完成")
	return nil
}
