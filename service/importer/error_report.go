/*
 * @module service/importer/error_report
 * @description 导入错误报告与提交数据的CSV导出
 * @architecture 分层架构 - 业务服务层，流式写出避免整文件驻留内存
 * @documentReference ai_docs/import_pipeline.md
 * @stateFlow 错误报告仅读取ERROR状态的暂存行；导出按导出模板列序生成表头与数据
 * @rules 错误报告每个问题一行，原始数据以JSON形式附在末列
 * @dependencies encoding/csv, encoding/json, gorm.io/gorm
 * @refs api/controllers/import_controller.go
 */

package importer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"mne-service/service/meta"
	"mne-service/service/models"
	"mne-service/service/utils"

	"github.com/spf13/cast"
	"gorm.io/gorm"
)

// WriteErrorReport 将任务的校验错误写为CSV报告
//
// 每个行级问题占一行，同一数据行的多个错误展开为多行。
func (s *Service) WriteErrorReport(ctx context.Context, jobID string, w io.Writer) error {
	if _, err := s.GetJob(ctx, jobID); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Row Number", "Error Field", "Error Message", "Original Data"}); err != nil {
		return fmt.Errorf("写入报告表头失败: %w", err)
	}

	offset := 0
	for {
		var rows []models.ImportJobRow
		if err := s.db.WithContext(ctx).
			Where("job_id = ? AND validation_status = ?", jobID, meta.RowStatusError).
			Order("row_number ASC").
			Limit(ValidateBatchSize).Offset(offset).
			Find(&rows).Error; err != nil {
			return fmt.Errorf("读取错误行失败: %w", err)
		}
		if len(rows) == 0 {
			break
		}
		offset += len(rows)

		for _, row := range rows {
			raw, err := json.Marshal(row.RawData)
			if err != nil {
				raw = []byte("{}")
			}
			for _, issue := range row.Errors {
				record := []string{
					strconv.Itoa(row.RowNumber),
					issue.Field,
					issue.Message,
					string(raw),
				}
				if err := writer.Write(record); err != nil {
					return fmt.Errorf("写入报告行失败: %w", err)
				}
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportRequest 提交数据导出请求
type ExportRequest struct {
	IndicatorID string
	TemplateID  *string
	From        *time.Time
	To          *time.Time
}

// ExportSubmissions 按导出模板将指标的提交数据写为CSV
func (s *Service) ExportSubmissions(ctx context.Context, req ExportRequest, w io.Writer) error {
	var indicator models.Indicator
	if err := s.db.WithContext(ctx).First(&indicator, "id = ?", req.IndicatorID).Error; err != nil {
		return models.NewServiceErrorf(meta.ErrCodeNotFound, "指标不存在: %s", req.IndicatorID)
	}

	var template *models.Template
	var err error
	if req.TemplateID != nil && *req.TemplateID != "" {
		template, err = s.templates.GetTemplate(ctx, *req.TemplateID)
	} else {
		template, err = s.templates.GetOrCreateDefault(ctx, &indicator, meta.TemplateKindExport)
	}
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	headers := make([]string, 0, len(template.Columns))
	for _, col := range template.Columns {
		headers = append(headers, col.Header)
	}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("写入导出表头失败: %w", err)
	}

	query := s.db.WithContext(ctx).Where("indicator_id = ?", indicator.ID)
	if req.From != nil {
		query = query.Where("reported_at >= ?", *req.From)
	}
	if req.To != nil {
		query = query.Where("reported_at <= ?", *req.To)
	}

	offset := 0
	for {
		var submissions []models.Submission
		if err := query.Session(&gorm.Session{}).
			Order("reported_at ASC").
			Limit(CommitBatchSize).Offset(offset).
			Find(&submissions).Error; err != nil {
			return fmt.Errorf("读取提交数据失败: %w", err)
		}
		if len(submissions) == 0 {
			break
		}
		offset += len(submissions)

		for _, sub := range submissions {
			record := make([]string, 0, len(template.Columns))
			for _, col := range template.Columns {
				record = append(record, exportField(&sub, col.Field))
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("写入导出行失败: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// exportField 按模板字段名取提交记录的导出值
func exportField(sub *models.Submission, field string) string {
	switch field {
	case "reported_at":
		return utils.FormatDateISO(sub.ReportedAt)
	case "value":
		return sub.Value
	case "disaggregation_key":
		return sub.DisaggregationKey
	case "evidence":
		return sub.Evidence
	case "is_anomaly":
		return cast.ToString(sub.IsAnomaly)
	default:
		return ""
	}
}
