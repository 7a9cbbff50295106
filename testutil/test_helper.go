/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference ai_docs/test_plan.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify, time
 * @refs service/models
 */

package testutil

import (
	"fmt"
	"time"

	"mne-service/service/meta"
	"mne-service/service/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.Indicator{},
		&models.Submission{},
		&models.ImportJob{},
		&models.ImportJobRow{},
		&models.Template{},
		&models.PlatformEvent{},
		&models.ReportingGapAlert{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	// 清空所有表的数据
	tables := []string{
		"indicators",
		"submissions",
		"import_jobs",
		"import_job_rows",
		"templates",
		"platform_events",
		"reporting_gap_alerts",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// IndicatorOption 指标选项函数类型
type IndicatorOption func(*models.Indicator)

// CreateIndicator 创建测试指标
func (f *TestDataFactory) CreateIndicator(opts ...IndicatorOption) *models.Indicator {
	indicator := &models.Indicator{
		Name:      "测试指标_" + generateSuffix(),
		DataType:  meta.DataTypeNumber,
		Cadence:   meta.CadenceWeekly,
		CreatedBy: "test",
	}

	// 应用选项
	for _, opt := range opts {
		opt(indicator)
	}

	err := f.DB.Create(indicator).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test indicator: %v", err))
	}

	return indicator
}

// WithDataType 设置指标数据类型
func WithDataType(dataType string) IndicatorOption {
	return func(i *models.Indicator) {
		i.DataType = dataType
	}
}

// WithBounds 设置指标上下限
func WithBounds(min, max *float64) IndicatorOption {
	return func(i *models.Indicator) {
		i.MinValue = min
		i.MaxValue = max
	}
}

// WithCategories 设置分类定义与配置
func WithCategories(categories []models.Category, config models.CategoryConfig) IndicatorOption {
	return func(i *models.Indicator) {
		i.DataType = meta.DataTypeCategorical
		i.Categories = categories
		i.CategoryConfig = config
	}
}

// WithAnomalyConfig 设置异常检测配置
func WithAnomalyConfig(config models.AnomalyConfig) IndicatorOption {
	return func(i *models.Indicator) {
		i.AnomalyConfig = config
	}
}

// SubmissionOption 提交选项函数类型
type SubmissionOption func(*models.Submission)

// CreateSubmission 创建测试提交
func (f *TestDataFactory) CreateSubmission(indicatorID string, reportedAt time.Time, value string, opts ...SubmissionOption) *models.Submission {
	sub := &models.Submission{
		IndicatorID: indicatorID,
		ReportedAt:  reportedAt,
		Value:       value,
		CreatedBy:   "test",
	}

	// 应用选项
	for _, opt := range opts {
		opt(sub)
	}

	err := f.DB.Create(sub).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test submission: %v", err))
	}

	return sub
}

// WithDisaggregationKey 设置细分键
func WithDisaggregationKey(key string) SubmissionOption {
	return func(s *models.Submission) {
		s.DisaggregationKey = key
	}
}

// WithSourceImportJob 设置来源导入任务
func WithSourceImportJob(jobID string) SubmissionOption {
	return func(s *models.Submission) {
		s.SourceImportJobID = &jobID
	}
}

// ImportJobOption 导入任务选项函数类型
type ImportJobOption func(*models.ImportJob)

// CreateImportJob 创建测试导入任务
func (f *TestDataFactory) CreateImportJob(indicatorID string, opts ...ImportJobOption) *models.ImportJob {
	job := &models.ImportJob{
		IndicatorID: indicatorID,
		Status:      meta.ImportJobStatusPending,
		ImportMode:  meta.ImportModeCreateOnly,
		FileName:    "test_" + generateSuffix() + ".csv",
		CreatedBy:   "test",
	}

	// 应用选项
	for _, opt := range opts {
		opt(job)
	}

	err := f.DB.Create(job).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test import job: %v", err))
	}

	return job
}

// WithJobStatus 设置任务状态
func WithJobStatus(status string) ImportJobOption {
	return func(j *models.ImportJob) {
		j.Status = status
	}
}

// WithImportMode 设置导入模式
func WithImportMode(mode string) ImportJobOption {
	return func(j *models.ImportJob) {
		j.ImportMode = mode
	}
}

// CreateImportJobRow 创建测试暂存行
func (f *TestDataFactory) CreateImportJobRow(jobID string, rowNumber int, rawData models.JSONB) *models.ImportJobRow {
	row := &models.ImportJobRow{
		JobID:            jobID,
		RowNumber:        rowNumber,
		RawData:          rawData,
		ValidationStatus: meta.RowStatusPending,
	}

	err := f.DB.Create(row).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test import job row: %v", err))
	}

	return row
}

// TemplateOption 模板选项函数类型
type TemplateOption func(*models.Template)

// CreateTemplate 创建测试模板
func (f *TestDataFactory) CreateTemplate(indicatorID string, opts ...TemplateOption) *models.Template {
	template := &models.Template{
		IndicatorID: indicatorID,
		Kind:        meta.TemplateKindImport,
		Name:        "测试模板_" + generateSuffix(),
		Columns: models.ColumnConfigList{
			{Header: "reported_at", Field: "reported_at", Transform: meta.TransformDate, Required: true},
			{Header: "value", Field: "value", Transform: meta.TransformNumber, Required: true},
			{Header: "disaggregation_key", Field: "disaggregation_key", Transform: meta.TransformTrim},
		},
		CreatedBy: "test",
	}

	// 应用选项
	for _, opt := range opts {
		opt(template)
	}

	err := f.DB.Create(template).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test template: %v", err))
	}

	return template
}

// 辅助函数
func generateSuffix() string {
	return fmt.Sprintf("%d", time.Now().UnixNano()%100000)
}

// FloatPtr 返回浮点指针，用于构造可选上下限
func FloatPtr(v float64) *float64 {
	return &v
}
