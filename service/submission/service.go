/*
 * @module service/submission/service
 * @description 提交服务，负责提交创建（规范化+异常检测+落库）、查询与异常状态流转
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/submission_design.md
 * @stateFlow 提交请求 -> 值规范化 -> 异常检测 -> 落库 -> 事件发布
 * @rules 异常字段在创建时计算并持久化，读取时不重算；状态流转仅对异常提交开放
 * @dependencies gorm.io/gorm, service/anomaly, service/categorical, service/event, service/monitoring
 * @refs api/controllers/submission_controller.go, service/importer
 */

package submission

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"mne-service/service/anomaly"
	"mne-service/service/categorical"
	"mne-service/service/event"
	"mne-service/service/meta"
	"mne-service/service/models"
	"mne-service/service/monitoring"

	"gorm.io/gorm"
)

// Service 提交服务
type Service struct {
	db           *gorm.DB
	eventService *event.EventService
}

// NewService 创建提交服务
func NewService(db *gorm.DB, eventService *event.EventService) *Service {
	return &Service{db: db, eventService: eventService}
}

// CreateSubmissionRequest 创建提交请求
type CreateSubmissionRequest struct {
	ReportedAt        time.Time
	Value             interface{}
	Evidence          string
	DisaggregationKey string
}

// GetIndicator 按ID查询指标
func (s *Service) GetIndicator(ctx context.Context, indicatorID string) (*models.Indicator, error) {
	var indicator models.Indicator
	if err := s.db.WithContext(ctx).First(&indicator, "id = ?", indicatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewServiceErrorf(meta.ErrCodeNotFound, "指标不存在: %s", indicatorID)
		}
		return nil, fmt.Errorf("查询指标失败: %w", err)
	}
	return &indicator, nil
}

// CreateSubmission 创建一条提交：规范化、异常检测、落库、事件发布
func (s *Service) CreateSubmission(ctx context.Context, indicatorID string, req CreateSubmissionRequest, userID string) (*models.Submission, error) {
	indicator, err := s.GetIndicator(ctx, indicatorID)
	if err != nil {
		return nil, err
	}

	value, err := NormalizeValue(indicator, req.Value)
	if err != nil {
		return nil, err
	}

	sub := &models.Submission{
		IndicatorID:       indicator.ID,
		ReportedAt:        req.ReportedAt,
		Value:             value,
		DisaggregationKey: req.DisaggregationKey,
		Evidence:          req.Evidence,
		CreatedBy:         userID,
	}

	assessment, mode := s.detect(ctx, indicator, value)
	if assessment.IsAnomaly {
		sub.MarkAnomaly(assessment.Reason())
	}

	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, fmt.Errorf("提交落库失败: %w", err)
	}

	monitoring.SubmissionsCreated.WithLabelValues(indicator.DataType, "direct").Inc()
	if sub.IsAnomaly {
		monitoring.AnomaliesDetected.WithLabelValues(mode).Inc()
		if s.eventService != nil {
			_ = s.eventService.Emit(ctx, models.EventTypeAnomalyDetected, "submission", sub.ID, models.JSONB{
				"indicator_id": indicator.ID,
				"value":        sub.Value,
				"reason":       assessment.Reason(),
			})
		}
	}
	return sub, nil
}

// detect 对规范化后的值执行异常检测，返回检测结果和模式标签
//
// 历史窗口读取不在事务内，并发提交可能基于略旧的窗口计算，可接受。
func (s *Service) detect(ctx context.Context, indicator *models.Indicator, value string) (anomaly.Assessment, string) {
	numeric, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return anomaly.Assessment{}, "range"
	}

	cfg := anomaly.MergeConfig(indicator.AnomalyConfig)
	if !cfg.Enabled {
		return anomaly.CheckRange(indicator, numeric), "range"
	}

	recent := s.recentValues(ctx, indicator.ID, cfg.WindowDemand())
	return anomaly.DetectForNewValue(indicator, recent, numeric), "series"
}

// recentValues 读取最近limit条提交的数值，按时间升序返回，跳过非数值
func (s *Service) recentValues(ctx context.Context, indicatorID string, limit int) []float64 {
	var rows []models.Submission
	if err := s.db.WithContext(ctx).
		Where("indicator_id = ?", indicatorID).
		Order("reported_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil
	}

	values := make([]float64, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		if v, err := strconv.ParseFloat(rows[i].Value, 64); err == nil {
			values = append(values, v)
		}
	}
	return values
}

// ListSubmissions 按时间范围查询提交，reportedAt升序
func (s *Service) ListSubmissions(ctx context.Context, indicatorID string, from, to *time.Time) ([]models.Submission, error) {
	query := s.db.WithContext(ctx).Where("indicator_id = ?", indicatorID)
	if from != nil {
		query = query.Where("reported_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("reported_at <= ?", *to)
	}

	var submissions []models.Submission
	if err := query.Order("reported_at ASC").Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("查询提交失败: %w", err)
	}
	return submissions, nil
}

// UpdateAnomalyStatus 异常状态流转，仅对被标记为异常的提交开放
func (s *Service) UpdateAnomalyStatus(ctx context.Context, submissionID, status, userID, notes string) (*models.Submission, error) {
	if !meta.IsValidAnomalyStatus(status) {
		return nil, models.NewServiceErrorf(meta.ErrCodeInvalidState, "无效的异常状态: %s", status)
	}

	var sub models.Submission
	if err := s.db.WithContext(ctx).First(&sub, "id = ?", submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewServiceErrorf(meta.ErrCodeNotFound, "提交不存在: %s", submissionID)
		}
		return nil, fmt.Errorf("查询提交失败: %w", err)
	}
	if !sub.CanTransitionAnomalyStatus() {
		return nil, models.NewServiceError(meta.ErrCodeNotAnomaly, "该提交未被标记为异常")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"anomaly_status":      status,
		"anomaly_reviewed_by": userID,
		"anomaly_reviewed_at": now,
	}
	if notes != "" {
		updates["anomaly_notes"] = notes
	}
	if err := s.db.WithContext(ctx).Model(&sub).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新异常状态失败: %w", err)
	}

	sub.AnomalyStatus = &status
	sub.AnomalyReviewedBy = &userID
	sub.AnomalyReviewedAt = &now
	if notes != "" {
		sub.AnomalyNotes = &notes
	}
	return &sub, nil
}

// AcknowledgeAnomaly 确认异常
func (s *Service) AcknowledgeAnomaly(ctx context.Context, submissionID, userID, notes string) (*models.Submission, error) {
	return s.UpdateAnomalyStatus(ctx, submissionID, meta.AnomalyStatusAcknowledged, userID, notes)
}

// ResolveAnomaly 处理异常
func (s *Service) ResolveAnomaly(ctx context.Context, submissionID, userID, notes string) (*models.Submission, error) {
	return s.UpdateAnomalyStatus(ctx, submissionID, meta.AnomalyStatusResolved, userID, notes)
}

// MarkFalsePositive 标记误报
func (s *Service) MarkFalsePositive(ctx context.Context, submissionID, userID, notes string) (*models.Submission, error) {
	return s.UpdateAnomalyStatus(ctx, submissionID, meta.AnomalyStatusFalsePositive, userID, notes)
}

// CategoryDistribution 查询分类指标的分布统计
func (s *Service) CategoryDistribution(ctx context.Context, indicatorID string) ([]categorical.CategoryCount, error) {
	indicator, err := s.GetIndicator(ctx, indicatorID)
	if err != nil {
		return nil, err
	}
	if !indicator.IsCategorical() {
		return nil, models.NewServiceError(meta.ErrCodeInvalidValue, "仅分类指标支持分布统计")
	}

	submissions, err := s.ListSubmissions(ctx, indicatorID, nil, nil)
	if err != nil {
		return nil, err
	}
	return categorical.GetCategoryDistribution(submissions, indicator.Categories), nil
}

// CategoryTrend 查询分类指标的趋势比较
func (s *Service) CategoryTrend(ctx context.Context, indicatorID string, windowDays int) (*categorical.CategoryTrendResult, error) {
	indicator, err := s.GetIndicator(ctx, indicatorID)
	if err != nil {
		return nil, err
	}
	if !indicator.IsCategorical() {
		return nil, models.NewServiceError(meta.ErrCodeInvalidValue, "仅分类指标支持趋势比较")
	}

	submissions, err := s.ListSubmissions(ctx, indicatorID, nil, nil)
	if err != nil {
		return nil, err
	}
	result := categorical.GetCategoryTrend(submissions, indicator.Categories, windowDays)
	return &result, nil
}

// ReportingGaps 检测指标的缺报区间，cadence为空时取指标配置的报告频率
func (s *Service) ReportingGaps(ctx context.Context, indicatorID, cadence string) ([]ReportingGap, error) {
	indicator, err := s.GetIndicator(ctx, indicatorID)
	if err != nil {
		return nil, err
	}
	if cadence == "" {
		cadence = indicator.Cadence
	}
	if !meta.IsValidCadence(cadence) {
		return nil, models.NewServiceErrorf(meta.ErrCodeInvalidValue, "无效的报告频率: %s", cadence)
	}

	submissions, err := s.ListSubmissions(ctx, indicatorID, nil, nil)
	if err != nil {
		return nil, err
	}
	return DetectReportingGaps(submissions, cadence), nil
}
