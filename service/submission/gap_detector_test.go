/*
 * @module service/submission/gap_detector_test
 * @description 缺报检测器单元测试
 * @architecture 测试层
 * @documentReference ai_docs/submission_design.md
 * @stateFlow 构造提交时间线 -> 执行缺口检测 -> 断言缺口区间与统计值
 * @rules 覆盖超期缺口、按时序列、数据不足与未知频率
 * @dependencies testing, github.com/stretchr/testify
 */

package submission

import (
	"testing"
	"time"

	"mne-service/service/meta"
	"mne-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submissionsAt(times ...time.Time) []models.Submission {
	subs := make([]models.Submission, 0, len(times))
	for _, ts := range times {
		subs = append(subs, models.Submission{ReportedAt: ts})
	}
	return subs
}

func TestDetectReportingGapsMonthly(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	subs := submissionsAt(base, base.AddDate(0, 0, 90))

	gaps := DetectReportingGaps(subs, meta.CadenceMonthly)
	require.Len(t, gaps, 1)

	gap := gaps[0]
	assert.Equal(t, base, gap.From)
	assert.Equal(t, base.AddDate(0, 0, 90), gap.To)
	// 90天间隔，期望30天：缺失60天，漏报2期
	assert.Equal(t, 60, gap.DaysMissing)
	assert.Equal(t, 2, gap.ExpectedSubmissions)
}

func TestDetectReportingGapsOnTimeWeekly(t *testing.T) {
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 0, 8)
	for i := 0; i < 8; i++ {
		times = append(times, base.AddDate(0, 0, 7*i))
	}

	gaps := DetectReportingGaps(submissionsAt(times...), meta.CadenceWeekly)
	assert.Empty(t, gaps)
}

func TestDetectReportingGapsToleranceBoundary(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// 10天间隔在周报的1.5倍容差内
	gaps := DetectReportingGaps(submissionsAt(base, base.AddDate(0, 0, 10)), meta.CadenceWeekly)
	assert.Empty(t, gaps)

	// 11天超出容差
	gaps = DetectReportingGaps(submissionsAt(base, base.AddDate(0, 0, 11)), meta.CadenceWeekly)
	require.Len(t, gaps, 1)
	assert.Equal(t, 4, gaps[0].DaysMissing)
}

func TestDetectReportingGapsInsufficientData(t *testing.T) {
	base := time.Now()
	assert.Empty(t, DetectReportingGaps(nil, meta.CadenceWeekly))
	assert.Empty(t, DetectReportingGaps(submissionsAt(base), meta.CadenceWeekly))
}

func TestDetectReportingGapsUnknownCadence(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	subs := submissionsAt(base, base.AddDate(0, 0, 365))
	assert.Empty(t, DetectReportingGaps(subs, ""))
	assert.Empty(t, DetectReportingGaps(subs, "FORTNIGHTLY"))
}

func TestDetectReportingGapsMultipleGaps(t *testing.T) {
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	subs := submissionsAt(
		base,
		base.AddDate(0, 0, 7),
		base.AddDate(0, 0, 35), // 28天缺口
		base.AddDate(0, 0, 42),
		base.AddDate(0, 0, 63), // 21天缺口
	)

	gaps := DetectReportingGaps(subs, meta.CadenceWeekly)
	require.Len(t, gaps, 2)
	assert.Equal(t, 21, gaps[0].DaysMissing)
	assert.Equal(t, 3, gaps[0].ExpectedSubmissions)
	assert.Equal(t, 14, gaps[1].DaysMissing)
	assert.Equal(t, 2, gaps[1].ExpectedSubmissions)
}
