/*
 * @module service/importer/service
 * @description CSV导入流水线服务，实现解析暂存、行级校验、后台批量提交与回滚
 * @architecture 分层架构 - 业务服务层，三阶段流水线各自持久化状态、可按任务ID恢复
 * @documentReference ai_docs/import_pipeline.md
 * @stateFlow PENDING -> VALIDATING -> VALIDATED -> IMPORTING -> COMPLETED/FAILED/CANCELLED
 * @rules 批次内单事务保证原子性，批次间顺序执行；行级错误收集不中断；任务级错误在建行前终止
 * @dependencies gorm.io/gorm, github.com/lib/pq, encoding/csv, service/*, client/connectors
 * @refs api/controllers/import_controller.go
 */

package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"mne-service/service/categorical"
	"mne-service/service/distributed_lock"
	"mne-service/service/event"
	"mne-service/service/meta"
	"mne-service/service/models"
	"mne-service/service/monitoring"
	"mne-service/service/utils"

	"github.com/lib/pq"
	"github.com/spf13/cast"
	"gorm.io/gorm"
)

// 流水线批次与容量参数
const (
	// MaxImportRows 单个任务允许的最大数据行数
	MaxImportRows = 100000
	// StageBatchSize 暂存阶段每事务写入的行数
	StageBatchSize = 500
	// ValidateBatchSize 校验阶段每批处理的行数
	ValidateBatchSize = 100
	// CommitBatchSize 提交阶段每事务处理的行数
	CommitBatchSize = 500
	// commitLockTTL 提交阶段分布式锁的过期时间
	commitLockTTL = 10 * time.Minute
)

// Service 导入流水线服务
type Service struct {
	db           *gorm.DB
	templates    *TemplateService
	scripts      *ScriptExecutor
	eventService *event.EventService
	lock         distributed_lock.DistributedLock // 可为nil，单实例部署时退化为无锁
}

// NewService 创建导入服务
func NewService(db *gorm.DB, templates *TemplateService, eventService *event.EventService, lock distributed_lock.DistributedLock) *Service {
	return &Service{
		db:           db,
		templates:    templates,
		scripts:      NewScriptExecutor(),
		eventService: eventService,
		lock:         lock,
	}
}

// StageRequest 解析暂存请求
type StageRequest struct {
	IndicatorID string
	FileName    string
	FileSize    int64
	ImportMode  string
	TemplateID  *string
	Charset     string // 空或utf-8、gbk、gb18030
	CreatedBy   string
	Reader      io.Reader
}

// GetJob 按ID查询导入任务
func (s *Service) GetJob(ctx context.Context, jobID string) (*models.ImportJob, error) {
	var job models.ImportJob
	if err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewServiceErrorf(meta.ErrCodeNotFound, "导入任务不存在: %s", jobID)
		}
		return nil, fmt.Errorf("查询导入任务失败: %w", err)
	}
	return &job, nil
}

// ListRows 查询任务的暂存行，validationStatus为空时不过滤
func (s *Service) ListRows(ctx context.Context, jobID, validationStatus string, limit, offset int) ([]models.ImportJobRow, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	query := s.db.WithContext(ctx).Where("job_id = ?", jobID)
	if validationStatus != "" {
		query = query.Where("validation_status = ?", validationStatus)
	}
	var rows []models.ImportJobRow
	err := query.Order("row_number ASC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, err
}

// ParseAndStage 解析CSV并暂存为行级记录
//
// 超过行数上限时任务直接标记FAILED且不创建任何行；
// 暂存按固定批次写入，每批一个事务，批次失败不影响已提交批次。
func (s *Service) ParseAndStage(ctx context.Context, req StageRequest) (*models.ImportJob, error) {
	var indicator models.Indicator
	if err := s.db.WithContext(ctx).First(&indicator, "id = ?", req.IndicatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewServiceErrorf(meta.ErrCodeNotFound, "指标不存在: %s", req.IndicatorID)
		}
		return nil, fmt.Errorf("查询指标失败: %w", err)
	}

	job := &models.ImportJob{
		IndicatorID: indicator.ID,
		TemplateID:  req.TemplateID,
		Status:      meta.ImportJobStatusPending,
		ImportMode:  req.ImportMode,
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		CreatedBy:   req.CreatedBy,
	}
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, fmt.Errorf("创建导入任务失败: %w", err)
	}

	header, records, err := s.parseCSV(req.Reader, req.Charset)
	if err != nil {
		s.markFailed(ctx, job, err.Error())
		return job, err
	}
	if len(records) > MaxImportRows {
		msg := fmt.Sprintf("数据行数%d超过上限%d", len(records), MaxImportRows)
		s.markFailed(ctx, job, msg)
		return job, models.NewServiceError(meta.ErrCodeRowLimitExceeded, msg)
	}

	job.TotalRows = len(records)
	job.Status = meta.ImportJobStatusValidating
	if err := s.db.WithContext(ctx).Model(job).Updates(map[string]interface{}{
		"total_rows": job.TotalRows,
		"status":     job.Status,
	}).Error; err != nil {
		return nil, fmt.Errorf("更新任务状态失败: %w", err)
	}

	// 行号从2开始：表头占第1行
	for start := 0; start < len(records); start += StageBatchSize {
		end := start + StageBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := make([]models.ImportJobRow, 0, end-start)
		for i := start; i < end; i++ {
			raw := make(models.JSONB, len(header))
			for col, name := range header {
				if col < len(records[i]) {
					raw[name] = records[i][col]
				}
			}
			batch = append(batch, models.ImportJobRow{
				JobID:            job.ID,
				RowNumber:        i + 2,
				RawData:          raw,
				ValidationStatus: meta.RowStatusPending,
			})
		}
		if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(&batch).Error
		}); err != nil {
			s.markFailed(ctx, job, fmt.Sprintf("暂存批次写入失败: %v", err))
			return job, fmt.Errorf("暂存批次写入失败: %w", err)
		}
		monitoring.ImportRowsProcessed.WithLabelValues("stage", "staged").Add(float64(end - start))
	}

	return job, nil
}

// parseCSV 解析CSV内容，要求必须有表头行
func (s *Service) parseCSV(r io.Reader, charset string) ([]string, [][]string, error) {
	decoded, err := utils.DecodeReader(r, charset)
	if err != nil {
		return nil, nil, err
	}

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("CSV缺少表头行: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF"))
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("CSV解析失败: %w", err)
		}
		records = append(records, record)
	}
	return header, records, nil
}

// ValidateStagingRows 对暂存行应用模板转换并校验指标规则
//
// 允许重复校验：相同数据再次校验产出相同的行状态。
func (s *Service) ValidateStagingRows(ctx context.Context, jobID string) (*models.ImportJob, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.CanValidate() {
		return nil, models.NewServiceErrorf(meta.ErrCodeInvalidState, "任务状态%s不允许校验", job.Status)
	}

	var indicator models.Indicator
	if err := s.db.WithContext(ctx).First(&indicator, "id = ?", job.IndicatorID).Error; err != nil {
		return nil, fmt.Errorf("查询指标失败: %w", err)
	}

	template, err := s.resolveTemplate(ctx, job, &indicator)
	if err != nil {
		return nil, err
	}
	transformer := NewColumnTransformer(&indicator, template, s.scripts)

	// 文件内重复键追踪，CREATE_ONLY下同文件的第二次出现也算重复
	seen := make(map[string]bool)
	processed, valid, warning, failed := 0, 0, 0, 0

	offset := 0
	for {
		var rows []models.ImportJobRow
		if err := s.db.WithContext(ctx).
			Where("job_id = ?", job.ID).
			Order("row_number ASC").
			Limit(ValidateBatchSize).Offset(offset).
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("读取暂存行失败: %w", err)
		}
		if len(rows) == 0 {
			break
		}
		offset += len(rows)

		start := time.Now()
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i := range rows {
				row := &rows[i]
				s.validateRow(ctx, &indicator, job, transformer, seen, row)
				if err := tx.Model(&models.ImportJobRow{}).Where("id = ?", row.ID).Updates(map[string]interface{}{
					"normalized_data":   row.NormalizedData,
					"validation_status": row.ValidationStatus,
					"errors":            row.Errors,
					"warnings":          row.Warnings,
				}).Error; err != nil {
					return err
				}
				switch row.ValidationStatus {
				case meta.RowStatusError:
					failed++
				case meta.RowStatusWarning:
					warning++
				default:
					valid++
				}
				processed++
				monitoring.ImportRowsProcessed.WithLabelValues("validate", row.ValidationStatus).Inc()
			}
			return nil
		})
		if err != nil {
			s.markFailed(ctx, job, fmt.Sprintf("校验批次失败: %v", err))
			return nil, fmt.Errorf("校验批次失败: %w", err)
		}
		monitoring.ImportBatchDuration.WithLabelValues("validate").Observe(time.Since(start).Seconds())

		// 每批更新进度计数
		if err := s.db.WithContext(ctx).Model(job).Updates(map[string]interface{}{
			"processed_rows":  processed,
			"successful_rows": valid,
			"warning_rows":    warning,
			"failed_rows":     failed,
		}).Error; err != nil {
			return nil, fmt.Errorf("更新进度失败: %w", err)
		}
	}

	job.Status = meta.ImportJobStatusValidated
	job.ProcessedRows = processed
	job.SuccessfulRows = valid
	job.WarningRows = warning
	job.FailedRows = failed
	if err := s.db.WithContext(ctx).Model(job).Update("status", job.Status).Error; err != nil {
		return nil, fmt.Errorf("更新任务状态失败: %w", err)
	}
	return job, nil
}

// resolveTemplate 取任务指定模板，未指定时取（或创建）默认导入模板
func (s *Service) resolveTemplate(ctx context.Context, job *models.ImportJob, indicator *models.Indicator) (*models.Template, error) {
	if job.TemplateID != nil && *job.TemplateID != "" {
		return s.templates.GetTemplate(ctx, *job.TemplateID)
	}
	return s.templates.GetOrCreateDefault(ctx, indicator, meta.TemplateKindImport)
}

// validateRow 校验单行：模板转换 -> 必填检查 -> 类型规则 -> 重复检查
func (s *Service) validateRow(ctx context.Context, indicator *models.Indicator, job *models.ImportJob, transformer *ColumnTransformer, seen map[string]bool, row *models.ImportJobRow) {
	row.Errors = models.RowIssueList{}
	row.Warnings = models.RowIssueList{}
	row.NormalizedData = transformer.Apply(row.RawData)

	reportedAt, ok := s.checkReportedAt(row)
	s.checkValue(indicator, row)

	if ok && job.ImportMode == meta.ImportModeCreateOnly {
		disagg := cast.ToString(row.NormalizedData["disaggregation_key"])
		key := utils.FormatDateISO(reportedAt) + "|" + disagg
		if seen[key] || s.submissionExists(ctx, indicator.ID, reportedAt, disagg) {
			row.Errors = append(row.Errors, models.RowIssue{
				Field:      "reported_at",
				Message:    fmt.Sprintf("该日期已存在提交(细分键=%q)", disagg),
				Severity:   meta.IssueSeverityError,
				Suggestion: "改用UPSERT模式或调整日期",
			})
		}
		seen[key] = true
	}

	row.ValidationStatus = row.ResolveStatus()
}

// checkReportedAt 校验日期字段，返回解析结果
func (s *Service) checkReportedAt(row *models.ImportJobRow) (time.Time, bool) {
	raw := row.NormalizedData["reported_at"]
	if raw == nil || strings.TrimSpace(cast.ToString(raw)) == "" {
		row.Errors = append(row.Errors, models.RowIssue{
			Field:    "reported_at",
			Message:  "缺少必填字段reported_at",
			Severity: meta.IssueSeverityError,
		})
		return time.Time{}, false
	}
	parsed, err := utils.ParseDate(cast.ToString(raw), "")
	if err != nil {
		row.Errors = append(row.Errors, models.RowIssue{
			Field:    "reported_at",
			Message:  fmt.Sprintf("无效的日期: %v", raw),
			Severity: meta.IssueSeverityError,
		})
		return time.Time{}, false
	}
	row.NormalizedData["reported_at"] = utils.FormatDateISO(parsed)
	return parsed, true
}

// checkValue 按指标数据类型校验值字段，越界降级为警告，其余为错误
func (s *Service) checkValue(indicator *models.Indicator, row *models.ImportJobRow) {
	raw := row.NormalizedData["value"]
	if raw == nil || strings.TrimSpace(cast.ToString(raw)) == "" {
		row.Errors = append(row.Errors, models.RowIssue{
			Field:    "value",
			Message:  "缺少必填字段value",
			Severity: meta.IssueSeverityError,
		})
		return
	}

	switch indicator.DataType {
	case meta.DataTypeNumber, meta.DataTypePercent:
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			row.Errors = append(row.Errors, models.RowIssue{
				Field:    "value",
				Message:  fmt.Sprintf("无法解析为数值: %v", raw),
				Severity: meta.IssueSeverityError,
			})
			return
		}
		row.NormalizedData["value"] = strconv.FormatFloat(v, 'f', -1, 64)
		min, max := indicator.EffectiveBounds()
		if min != nil && v < *min {
			row.Warnings = append(row.Warnings, models.RowIssue{
				Field:    "value",
				Message:  fmt.Sprintf("数值%v低于下限%v", v, *min),
				Severity: meta.IssueSeverityWarning,
			})
		}
		if max != nil && v > *max {
			row.Warnings = append(row.Warnings, models.RowIssue{
				Field:    "value",
				Message:  fmt.Sprintf("数值%v高于上限%v", v, *max),
				Severity: meta.IssueSeverityWarning,
			})
		}
	case meta.DataTypeBoolean:
		switch strings.ToLower(strings.TrimSpace(cast.ToString(raw))) {
		case "true", "false":
			row.NormalizedData["value"] = strings.ToLower(strings.TrimSpace(cast.ToString(raw)))
		default:
			row.Errors = append(row.Errors, models.RowIssue{
				Field:    "value",
				Message:  "布尔值仅接受true/false",
				Severity: meta.IssueSeverityError,
			})
		}
	case meta.DataTypeCategorical:
		selections, err := categorical.ValidateCategoricalValue(cast.ToString(raw), indicator.Categories, indicator.CategoryConfig)
		if err != nil {
			issue := models.RowIssue{Field: "value", Message: err.Error(), Severity: meta.IssueSeverityError}
			if se, ok := models.AsServiceError(err); ok {
				issue.Message = se.Message
			}
			row.Errors = append(row.Errors, issue)
			return
		}
		row.NormalizedData["value"] = categorical.FormatCategoricalValue(selections)
	}
}

// submissionExists 精确匹配(指标, 日期, 细分键)的已有提交
func (s *Service) submissionExists(ctx context.Context, indicatorID string, reportedAt time.Time, disaggregationKey string) bool {
	var count int64
	s.db.WithContext(ctx).Model(&models.Submission{}).
		Where("indicator_id = ? AND reported_at = ? AND disaggregation_key = ?", indicatorID, reportedAt, disaggregationKey).
		Count(&count)
	return count > 0
}

// StartCommit 启动后台提交，立即返回，调用方轮询任务状态
func (s *Service) StartCommit(ctx context.Context, jobID string) error {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if !job.CanCommit() {
		return models.NewServiceErrorf(meta.ErrCodeInvalidState, "任务状态%s不允许提交", job.Status)
	}

	if s.lock != nil {
		acquired, err := s.lock.TryLock(ctx, job.ID, commitLockTTL)
		if err != nil {
			return fmt.Errorf("获取提交锁失败: %w", err)
		}
		if !acquired {
			return models.NewServiceError(meta.ErrCodeInvalidState, "该任务正在提交中")
		}
	}

	if err := s.db.WithContext(ctx).Model(job).Update("status", meta.ImportJobStatusImporting).Error; err != nil {
		if s.lock != nil {
			_ = s.lock.Unlock(ctx, job.ID)
		}
		return fmt.Errorf("更新任务状态失败: %w", err)
	}

	go s.commitToDatabase(job.ID)
	return nil
}

// commitToDatabase 后台批量提交，panic或错误都将任务标记FAILED而非让其卡在IMPORTING
func (s *Service) commitToDatabase(jobID string) {
	ctx := context.Background()
	defer func() {
		if s.lock != nil {
			_ = s.lock.Unlock(ctx, jobID)
		}
		if r := recover(); r != nil {
			log.Printf("导入提交发生panic: job=%s err=%v", jobID, r)
			if job, err := s.GetJob(ctx, jobID); err == nil {
				s.markFailed(ctx, job, fmt.Sprintf("提交阶段异常: %v", r))
			}
		}
	}()

	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		log.Printf("导入提交读取任务失败: %v", err)
		return
	}
	var indicator models.Indicator
	if err := s.db.First(&indicator, "id = ?", job.IndicatorID).Error; err != nil {
		s.markFailed(ctx, job, fmt.Sprintf("查询指标失败: %v", err))
		return
	}

	imported := 0
	for {
		// 已提交的行状态变为IMPORTED，始终取最前面的一批待提交行
		var rows []models.ImportJobRow
		if err := s.db.
			Where("job_id = ? AND validation_status IN ?", job.ID, []string{meta.RowStatusValid, meta.RowStatusWarning}).
			Order("row_number ASC").
			Limit(CommitBatchSize).
			Find(&rows).Error; err != nil {
			s.markFailed(ctx, job, fmt.Sprintf("读取待提交行失败: %v", err))
			return
		}
		if len(rows) == 0 {
			break
		}

		start := time.Now()
		err := s.db.Transaction(func(tx *gorm.DB) error {
			for i := range rows {
				if err := s.commitRow(tx, job, &indicator, &rows[i]); err != nil {
					return fmt.Errorf("第%d行提交失败: %w", rows[i].RowNumber, err)
				}
			}
			return nil
		})
		if err != nil {
			// 本批次整体回滚，之前已完成的批次保持生效
			s.markFailed(ctx, job, err.Error())
			return
		}
		monitoring.ImportBatchDuration.WithLabelValues("commit").Observe(time.Since(start).Seconds())
		monitoring.ImportRowsProcessed.WithLabelValues("commit", "imported").Add(float64(len(rows)))

		imported += len(rows)
		if err := s.db.Model(job).Update("successful_rows", imported).Error; err != nil {
			log.Printf("更新提交进度失败: job=%s err=%v", job.ID, err)
		}
	}

	now := time.Now()
	if err := s.db.Model(job).Updates(map[string]interface{}{
		"status":       meta.ImportJobStatusCompleted,
		"completed_at": now,
	}).Error; err != nil {
		log.Printf("更新任务完成状态失败: %v", err)
		return
	}
	monitoring.ImportJobsTotal.WithLabelValues(meta.ImportJobStatusCompleted).Inc()
	if s.eventService != nil {
		_ = s.eventService.Emit(ctx, models.EventTypeImportCompleted, "import_job", job.ID, models.JSONB{
			"indicator_id": job.IndicatorID,
			"imported":     imported,
		})
	}
}

// commitRow 在事务内提交单行：写提交记录并将行标记为IMPORTED
func (s *Service) commitRow(tx *gorm.DB, job *models.ImportJob, indicator *models.Indicator, row *models.ImportJobRow) error {
	reportedAt, err := utils.ParseDate(cast.ToString(row.NormalizedData["reported_at"]), "")
	if err != nil {
		return fmt.Errorf("规范化日期损坏: %w", err)
	}
	disagg := cast.ToString(row.NormalizedData["disaggregation_key"])
	value := cast.ToString(row.NormalizedData["value"])
	evidence := cast.ToString(row.NormalizedData["evidence"])

	if job.ImportMode == meta.ImportModeUpsert {
		var existing models.Submission
		err := tx.Where("indicator_id = ? AND reported_at = ? AND disaggregation_key = ?", indicator.ID, reportedAt, disagg).
			First(&existing).Error
		if err == nil {
			if err := tx.Model(&existing).Updates(map[string]interface{}{
				"value":                value,
				"evidence":             evidence,
				"source_import_job_id": job.ID,
			}).Error; err != nil {
				return err
			}
			return s.markRowImported(tx, row)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	sub := &models.Submission{
		IndicatorID:       indicator.ID,
		ReportedAt:        reportedAt,
		Value:             value,
		DisaggregationKey: disagg,
		Evidence:          evidence,
		SourceImportJobID: &job.ID,
		CreatedBy:         job.CreatedBy,
	}
	if err := tx.Create(sub).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewServiceErrorf(meta.ErrCodeDuplicateSubmission,
				"提交冲突: 指标%s在%s已存在记录", indicator.ID, utils.FormatDateISO(reportedAt))
		}
		return err
	}
	monitoring.SubmissionsCreated.WithLabelValues(indicator.DataType, "import").Inc()
	return s.markRowImported(tx, row)
}

func (s *Service) markRowImported(tx *gorm.DB, row *models.ImportJobRow) error {
	return tx.Model(&models.ImportJobRow{}).Where("id = ?", row.ID).
		Update("validation_status", meta.RowStatusImported).Error
}

// RollbackImport 删除该任务写入的全部提交并将任务置为CANCELLED，返回删除数量
//
// 不论任务当前状态如何都允许回滚。
func (s *Service) RollbackImport(ctx context.Context, jobID string) (int64, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return 0, err
	}

	var deleted int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("source_import_job_id = ?", job.ID).Delete(&models.Submission{})
		if result.Error != nil {
			return fmt.Errorf("删除导入提交失败: %w", result.Error)
		}
		deleted = result.RowsAffected
		return tx.Model(job).Update("status", meta.ImportJobStatusCancelled).Error
	})
	if err != nil {
		return 0, err
	}
	monitoring.ImportJobsTotal.WithLabelValues(meta.ImportJobStatusCancelled).Inc()
	return deleted, nil
}

// markFailed 将任务标记为失败并记录原因
func (s *Service) markFailed(ctx context.Context, job *models.ImportJob, message string) {
	if err := s.db.WithContext(ctx).Model(job).Updates(map[string]interface{}{
		"status":        meta.ImportJobStatusFailed,
		"error_message": message,
	}).Error; err != nil {
		log.Printf("标记任务失败时出错: job=%s err=%v", job.ID, err)
		return
	}
	job.Status = meta.ImportJobStatusFailed
	job.ErrorMessage = message
	monitoring.ImportJobsTotal.WithLabelValues(meta.ImportJobStatusFailed).Inc()
	if s.eventService != nil {
		_ = s.eventService.Emit(ctx, models.EventTypeImportFailed, "import_job", job.ID, models.JSONB{
			"error": message,
		})
	}
}

// isUniqueViolation 判断是否为唯一约束冲突，Postgres错误码23505，sqlite按消息匹配
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
