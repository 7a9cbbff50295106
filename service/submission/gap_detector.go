/*
 * @module service/submission/gap_detector
 * @description 缺报检测器，按期望报告频率在已排序的提交时间线中查找超期间隔
 * @architecture 分层架构 - 统计分析层
 * @documentReference ai_docs/submission_design.md
 * @stateFlow 提交时间线 -> 相邻间隔计算 -> 超期判定 -> 缺口输出
 * @rules 少于2条提交视为数据不足而非错误；超期判定带容差倍数
 * @dependencies service/models, service/meta
 * @refs service/scheduler/gap_scan_service.go
 */

package submission

import (
	"math"
	"time"

	"mne-service/service/meta"
	"mne-service/service/models"
)

// GapToleranceMultiplier 超期判定容差倍数，间隔超过期望的1.5倍才算缺口
const GapToleranceMultiplier = 1.5

// ReportingGap 一个检出的缺报区间
type ReportingGap struct {
	From                time.Time `json:"from"`
	To                  time.Time `json:"to"`
	DaysMissing         int       `json:"days_missing"`
	ExpectedSubmissions int       `json:"expected_submissions"`
}

// DetectReportingGaps 在按reportedAt升序排列的提交中查找缺报区间
//
// 相邻提交间隔超过 期望间隔×容差 时记一个缺口，
// daysMissing = 实际间隔 − 期望间隔，expectedSubmissions = floor(实际间隔/期望间隔) − 1。
func DetectReportingGaps(submissions []models.Submission, cadence string) []ReportingGap {
	gaps := []ReportingGap{}
	if len(submissions) < 2 {
		return gaps
	}

	expected, ok := meta.CadenceIntervalDays[cadence]
	if !ok || expected <= 0 {
		return gaps
	}

	for i := 1; i < len(submissions); i++ {
		prev := submissions[i-1].ReportedAt
		next := submissions[i].ReportedAt
		elapsedDays := next.Sub(prev).Hours() / 24
		if elapsedDays <= float64(expected)*GapToleranceMultiplier {
			continue
		}
		gaps = append(gaps, ReportingGap{
			From:                prev,
			To:                  next,
			DaysMissing:         int(math.Round(elapsedDays)) - expected,
			ExpectedSubmissions: int(math.Floor(elapsedDays/float64(expected))) - 1,
		})
	}
	return gaps
}
