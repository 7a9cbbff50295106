/*
 * @module service/scheduler/gap_scan_service
 * @description 缺报扫描调度器，定时扫描全部指标的提交序列并记录缺报告警
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/gap_scan_req.md
 * @stateFlow 启动调度器 -> 定时触发 -> 逐指标检测 -> 幂等落库告警 -> 发布事件
 * @rules 同一(指标,起止日期)的告警只记录一次；多实例部署时由分布式锁保证单实例执行
 * @dependencies github.com/robfig/cron/v3, service/submission, service/distributed_lock
 * @refs service/submission/gap_detector.go
 */

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mne-service/service/distributed_lock"
	"mne-service/service/event"
	"mne-service/service/models"
	"mne-service/service/submission"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	// defaultGapScanCron 默认每天凌晨两点执行，表达式含秒位
	defaultGapScanCron = "0 0 2 * * *"
	gapScanLockKey     = "gap_scan"
	gapScanLockTTL     = 30 * time.Minute
)

// GapScanScheduler 缺报扫描调度器
type GapScanScheduler struct {
	db                *gorm.DB
	submissionService *submission.Service
	eventService      *event.EventService
	cron              *cron.Cron
	cronSpec          string
	ctx               context.Context
	cancel            context.CancelFunc
	schedulerStarted  bool
	distributedLock   distributed_lock.DistributedLock
}

// NewGapScanScheduler 创建缺报扫描调度器，表达式可由GAP_SCAN_CRON覆盖
func NewGapScanScheduler(db *gorm.DB, submissionService *submission.Service, eventService *event.EventService) *GapScanScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	spec := os.Getenv("GAP_SCAN_CRON")
	if spec == "" {
		spec = defaultGapScanCron
	}

	return &GapScanScheduler{
		db:                db,
		submissionService: submissionService,
		eventService:      eventService,
		cron:              cron.New(cron.WithSeconds()),
		cronSpec:          spec,
		ctx:               ctx,
		cancel:            cancel,
	}
}

// SetDistributedLock 设置分布式锁
func (gs *GapScanScheduler) SetDistributedLock(lock distributed_lock.DistributedLock) {
	gs.distributedLock = lock
	if lock != nil {
		slog.Info("缺报扫描调度器已启用分布式锁")
	}
}

// StartScheduler 启动调度器
func (gs *GapScanScheduler) StartScheduler() error {
	if gs.schedulerStarted {
		return fmt.Errorf("调度器已经启动")
	}

	if _, err := gs.cron.AddFunc(gs.cronSpec, func() {
		if err := gs.RunScan(gs.ctx); err != nil {
			slog.Error("缺报扫描执行失败", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("注册缺报扫描任务失败: %w", err)
	}

	gs.cron.Start()
	gs.schedulerStarted = true
	slog.Info("缺报扫描调度器启动完成", "cron_expression", gs.cronSpec)
	return nil
}

// StopScheduler 停止调度器
func (gs *GapScanScheduler) StopScheduler() {
	if !gs.schedulerStarted {
		return
	}
	gs.cancel()
	gs.cron.Stop()
	gs.schedulerStarted = false
	slog.Info("缺报扫描调度器已停止")
}

// RunScan 对全部指标执行一次缺报扫描
func (gs *GapScanScheduler) RunScan(ctx context.Context) error {
	if gs.distributedLock != nil {
		acquired, err := gs.distributedLock.TryLock(ctx, gapScanLockKey, gapScanLockTTL)
		if err != nil {
			return fmt.Errorf("获取扫描锁失败: %w", err)
		}
		if !acquired {
			slog.Info("缺报扫描已在其他实例执行，本次跳过")
			return nil
		}
		defer func() {
			_ = gs.distributedLock.Unlock(ctx, gapScanLockKey)
		}()
	}

	var indicators []models.Indicator
	if err := gs.db.WithContext(ctx).Find(&indicators).Error; err != nil {
		return fmt.Errorf("查询指标列表失败: %w", err)
	}

	scanned, alerted := 0, 0
	for i := range indicators {
		newAlerts, err := gs.scanIndicator(ctx, &indicators[i])
		if err != nil {
			slog.Error("指标缺报扫描失败", "indicator_id", indicators[i].ID, "error", err)
			continue
		}
		scanned++
		alerted += newAlerts
	}

	slog.Info("缺报扫描完成", "indicators", scanned, "new_alerts", alerted)
	return nil
}

// scanIndicator 扫描单个指标，返回本次新增的告警数
func (gs *GapScanScheduler) scanIndicator(ctx context.Context, indicator *models.Indicator) (int, error) {
	gaps, err := gs.submissionService.ReportingGaps(ctx, indicator.ID, "")
	if err != nil {
		return 0, err
	}

	created := 0
	for _, gap := range gaps {
		alert := models.ReportingGapAlert{
			IndicatorID:         indicator.ID,
			GapFrom:             gap.From,
			GapTo:               gap.To,
			DaysMissing:         gap.DaysMissing,
			ExpectedSubmissions: gap.ExpectedSubmissions,
			Cadence:             indicator.Cadence,
		}
		result := gs.db.WithContext(ctx).
			Where("indicator_id = ? AND gap_from = ? AND gap_to = ?", alert.IndicatorID, alert.GapFrom, alert.GapTo).
			FirstOrCreate(&alert)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				continue
			}
			return created, fmt.Errorf("记录缺报告警失败: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			continue
		}

		created++
		if gs.eventService != nil {
			_ = gs.eventService.Emit(ctx, models.EventTypeGapDetected, "indicator", indicator.ID, models.JSONB{
				"gap_from":     gap.From.Format("2006-01-02"),
				"gap_to":       gap.To.Format("2006-01-02"),
				"days_missing": gap.DaysMissing,
			})
		}
	}
	return created, nil
}
