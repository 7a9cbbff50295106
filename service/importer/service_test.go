/*
 * @module service/importer/service_test
 * @description 导入流水线集成测试，使用内存SQLite覆盖暂存、校验、提交与回滚
 * @architecture 测试层
 * @documentReference ai_docs/import_pipeline.md
 * @stateFlow 构造CSV -> 暂存 -> 校验 -> 提交 -> 断言任务状态与落库数据
 * @rules 提交阶段测试直接同步调用以避免后台goroutine的时序依赖
 * @dependencies testing, github.com/stretchr/testify, testutil
 */

package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"mne-service/service/event"
	"mne-service/service/meta"
	"mne-service/service/models"
	"mne-service/testutil"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"gorm.io/gorm"
)

func newImportService(t *testing.T) (*Service, *testutil.TestDB, *testutil.TestDataFactory) {
	t.Helper()
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	svc := NewService(tdb.DB, NewTemplateService(tdb.DB), event.NewEventService(tdb.DB, nil), nil)
	return svc, tdb, testutil.NewTestDataFactory(tdb.DB)
}

func stageCSV(t *testing.T, svc *Service, indicatorID, mode, content string) *models.ImportJob {
	t.Helper()
	job, err := svc.ParseAndStage(context.Background(), StageRequest{
		IndicatorID: indicatorID,
		FileName:    "upload.csv",
		FileSize:    int64(len(content)),
		ImportMode:  mode,
		CreatedBy:   "tester",
		Reader:      strings.NewReader(content),
	})
	require.NoError(t, err)
	return job
}

func TestParseAndStage(t *testing.T) {
	svc, tdb, factory := newImportService(t)
	indicator := factory.CreateIndicator()

	content := "reported_at,value,evidence\n2026-01-05,10,一月报表\n2026-01-12,20,二月报表\n"
	job := stageCSV(t, svc, indicator.ID, meta.ImportModeCreateOnly, content)

	assert.Equal(t, meta.ImportJobStatusValidating, job.Status)
	assert.Equal(t, 2, job.TotalRows)

	var rows []models.ImportJobRow
	require.NoError(t, tdb.DB.Where("job_id = ?", job.ID).Order("row_number ASC").Find(&rows).Error)
	require.Len(t, rows, 2)
	// 表头占第1行，数据行号从2开始
	assert.Equal(t, 2, rows[0].RowNumber)
	assert.Equal(t, 3, rows[1].RowNumber)
	assert.Equal(t, "10", rows[0].RawData["value"])
	assert.Equal(t, "一月报表", rows[0].RawData["evidence"])
	assert.Equal(t, meta.RowStatusPending, rows[0].ValidationStatus)

	t.Run("同一文件再次上传产生独立任务", func(t *testing.T) {
		second := stageCSV(t, svc, indicator.ID, meta.ImportModeCreateOnly, content)
		assert.NotEqual(t, job.ID, second.ID)
		assert.Equal(t, job.TotalRows, second.TotalRows)
	})
}

func TestParseAndStageEmptyFile(t *testing.T) {
	svc, _, factory := newImportService(t)
	indicator := factory.CreateIndicator()

	job, err := svc.ParseAndStage(context.Background(), StageRequest{
		IndicatorID: indicator.ID,
		FileName:    "empty.csv",
		ImportMode:  meta.ImportModeCreateOnly,
		Reader:      strings.NewReader(""),
	})
	require.Error(t, err)
	assert.Equal(t, meta.ImportJobStatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "表头")
}

func TestParseAndStageIndicatorNotFound(t *testing.T) {
	svc, _, _ := newImportService(t)
	_, err := svc.ParseAndStage(context.Background(), StageRequest{
		IndicatorID: "missing-id",
		Reader:      strings.NewReader("reported_at,value\n"),
	})
	se, ok := models.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, meta.ErrCodeNotFound, se.Code)
}

func TestParseAndStageRowLimit(t *testing.T) {
	svc, tdb, factory := newImportService(t)
	indicator := factory.CreateIndicator()

	var b strings.Builder
	b.WriteString("reported_at,value\n")
	for i := 0; i <= MaxImportRows; i++ {
		fmt.Fprintf(&b, "2026-01-01,%d\n", i)
	}

	job, err := svc.ParseAndStage(context.Background(), StageRequest{
		IndicatorID: indicator.ID,
		FileName:    "huge.csv",
		ImportMode:  meta.ImportModeCreateOnly,
		Reader:      strings.NewReader(b.String()),
	})
	require.Error(t, err)
	se, ok := models.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, meta.ErrCodeRowLimitExceeded, se.Code)
	assert.Equal(t, meta.ImportJobStatusFailed, job.Status)

	// 超限时不应创建任何暂存行
	var count int64
	tdb.DB.Model(&models.ImportJobRow{}).Where("job_id = ?", job.ID).Count(&count)
	assert.Zero(t, count)
}

func TestParseAndStageGBK(t *testing.T) {
	svc, tdb, factory := newImportService(t)
	indicator := factory.CreateIndicator()

	encoded, err := simplifiedchinese.GBK.NewEncoder().String("reported_at,value,evidence\n2026-01-05,10,现场走访记录\n")
	require.NoError(t, err)

	job, err := svc.ParseAndStage(context.Background(), StageRequest{
		IndicatorID: indicator.ID,
		FileName:    "gbk.csv",
		ImportMode:  meta.ImportModeCreateOnly,
		Charset:     "gbk",
		Reader:      strings.NewReader(encoded),
	})
	require.NoError(t, err)

	var row models.ImportJobRow
	require.NoError(t, tdb.DB.First(&row, "job_id = ?", job.ID).Error)
	assert.Equal(t, "现场走访记录", row.RawData["evidence"])
}

func TestValidateStagingRows(t *testing.T) {
	svc, tdb, factory := newImportService(t)
	indicator := factory.CreateIndicator(testutil.WithBounds(testutil.FloatPtr(10), testutil.FloatPtr(100)))
	ctx := context.Background()

	content := "reported_at,value,evidence\n" +
		"2026-01-05,50,正常\n" +
		"2026-01-12,5,越界\n" +
		"下周三,30,坏日期\n" +
		"2026-01-26,,缺值\n" +
		"2026-02-02,abc,坏数值\n"
	job := stageCSV(t, svc, indicator.ID, meta.ImportModeCreateOnly, content)

	validated, err := svc.ValidateStagingRows(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, meta.ImportJobStatusValidated, validated.Status)
	assert.Equal(t, 5, validated.ProcessedRows)
	assert.Equal(t, 1, validated.SuccessfulRows)
	assert.Equal(t, 1, validated.WarningRows)
	assert.Equal(t, 3, validated.FailedRows)

	var rows []models.ImportJobRow
	require.NoError(t, tdb.DB.Where("job_id = ?", job.ID).Order("row_number ASC").Find(&rows).Error)

	assert.Equal(t, meta.RowStatusValid, rows[0].ValidationStatus)
	assert.Equal(t, "2026-01-05", rows[0].NormalizedData["reported_at"])
	assert.Equal(t, "50", rows[0].NormalizedData["value"])

	// 越界降级为警告，仍可提交
	assert.Equal(t, meta.RowStatusWarning, rows[1].ValidationStatus)
	require.Len(t, rows[1].Warnings, 1)
	assert.Contains(t, rows[1].Warnings[0].Message, "低于下限")

	assert.Equal(t, meta.RowStatusError, rows[2].ValidationStatus)
	assert.Contains(t, rows[2].Errors[0].Message, "无效的日期")

	assert.Equal(t, meta.RowStatusError, rows[3].ValidationStatus)
	assert.Contains(t, rows[3].Errors[0].Message, "缺少必填字段value")

	assert.Equal(t, meta.RowStatusError, rows[4].ValidationStatus)
	assert.Contains(t, rows[4].Errors[0].Message, "无法解析为数值")

	t.Run("重复校验产出相同结果", func(t *testing.T) {
		again, err := svc.ValidateStagingRows(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, validated.SuccessfulRows, again.SuccessfulRows)
		assert.Equal(t, validated.WarningRows, again.WarningRows)
		assert.Equal(t, validated.FailedRows, again.FailedRows)
	})
}

func TestValidateRejectsWrongState(t *testing.T) {
	svc, _, factory := newImportService(t)
	indicator := factory.CreateIndicator()
	job := factory.CreateImportJob(indicator.ID, testutil.WithJobStatus(meta.ImportJobStatusCompleted))

	_, err := svc.ValidateStagingRows(context.Background(), job.ID)
	se, ok := models.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, meta.ErrCodeInvalidState, se.Code)
}

func TestValidateCreateOnlyDuplicates(t *testing.T) {
	svc, tdb, factory := newImportService(t)
	indicator := factory.CreateIndicator()
	ctx := context.Background()

	// 库内已存在2026-01-05的提交
	factory.CreateSubmission(indicator.ID, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), "10")

	content := "reported_at,value\n" +
		"2026-01-05,11\n" +
		"2026-02-01,12\n" +
		"2026-02-01,13\n"

	t.Run("CREATE_ONLY下库内与文件内重复都报错", func(t *testing.T) {
		job := stageCSV(t, svc, indicator.ID, meta.ImportModeCreateOnly, content)
		validated, err := svc.ValidateStagingRows(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, validated.SuccessfulRows)
		assert.Equal(t, 2, validated.FailedRows)

		var rows []models.ImportJobRow
		require.NoError(t, tdb.DB.Where("job_id = ?", job.ID).Order("row_number ASC").Find(&rows).Error)
		assert.Equal(t, meta.RowStatusError, rows[0].ValidationStatus)
		assert.Equal(t, "改用UPSERT模式或调整日期", rows[0].Errors[0].Suggestion)
		assert.Equal(t, meta.RowStatusValid, rows[1].ValidationStatus)
		assert.Equal(t, meta.RowStatusError, rows[2].ValidationStatus)
	})

	t.Run("UPSERT下重复不报错", func(t *testing.T) {
		job := stageCSV(t, svc, indicator.ID, meta.ImportModeUpsert, content)
		validated, err := svc.ValidateStagingRows(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, validated.SuccessfulRows)
		assert.Zero(t, validated.FailedRows)
	})
}

func TestCommitCreateOnly(t *testing.T) {
	svc, tdb, factory := newImportService(t)
	indicator := factory.CreateIndicator(testutil.WithBounds(testutil.FloatPtr(10), testutil.FloatPtr(100)))
	ctx := context.Background()

	content := "reported_at,value,evidence\n" +
		"2026-01-05,50,一月\n" +
		"2026-01-12,5,越界仍提交\n" +
		"下周三,30,错误行不提交\n"
	job := stageCSV(t, svc, indicator.ID, meta.ImportModeCreateOnly, content)
	_, err := svc.ValidateStagingRows(ctx, job.ID)
	require.NoError(t, err)

	// 同步执行提交，避免依赖后台goroutine时序
	svc.commitToDatabase(job.ID)

	final, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, meta.ImportJobStatusCompleted, final.Status)
	require.NotNil(t, final.CompletedAt)
	assert.Equal(t, 2, final.SuccessfulRows)

	var subs []models.Submission
	require.NoError(t, tdb.DB.Where("source_import_job_id = ?", job.ID).Order("reported_at ASC").Find(&subs).Error)
	require.Len(t, subs, 2)
	assert.Equal(t, "50", subs[0].Value)
	assert.Equal(t, "5", subs[1].Value)
	assert.Equal(t, "tester", subs[0].CreatedBy)

	// VALID/WARNING行变为IMPORTED，ERROR行保持不变
	var imported, failed int64
	tdb.DB.Model(&models.ImportJobRow{}).Where("job_id = ? AND validation_status = ?", job.ID, meta.RowStatusImported).Count(&imported)
	tdb.DB.Model(&models.ImportJobRow{}).Where("job_id = ? AND validation_status = ?", job.ID, meta.RowStatusError).Count(&failed)
	assert.EqualValues(t, 2, imported)
	assert.EqualValues(t, 1, failed)

	var events []models.PlatformEvent
	require.NoError(t, tdb.DB.Where("entity_id = ? AND event_type = ?", job.ID, models.EventTypeImportCompleted).Find(&events).Error)
	assert.Len(t, events, 1)
}

func TestCommitUpsert(t *testing.T) {
	svc, tdb, factory := newImportService(t)
	indicator := factory.CreateIndicator()
	ctx := context.Background()

	reportedAt := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	existing := factory.CreateSubmission(indicator.ID, reportedAt, "10")

	content := "reported_at,value\n2026-01-05,99\n2026-01-12,20\n"
	job := stageCSV(t, svc, indicator.ID, meta.ImportModeUpsert, content)
	_, err := svc.ValidateStagingRows(ctx, job.ID)
	require.NoError(t, err)

	svc.commitToDatabase(job.ID)

	// 同(指标,日期,细分键)的已有提交被原地更新
	var updated models.Submission
	require.NoError(t, tdb.DB.First(&updated, "id = ?", existing.ID).Error)
	assert.Equal(t, "99", updated.Value)
	require.NotNil(t, updated.SourceImportJobID)
	assert.Equal(t, job.ID, *updated.SourceImportJobID)

	var count int64
	tdb.DB.Model(&models.Submission{}).Where("indicator_id = ?", indicator.ID).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestStartCommit(t *testing.T) {
	svc, _, factory := newImportService(t)
	indicator := factory.CreateIndicator()
	ctx := context.Background()

	t.Run("未校验完成的任务拒绝提交", func(t *testing.T) {
		job := factory.CreateImportJob(indicator.ID, testutil.WithJobStatus(meta.ImportJobStatusValidating))
		err := svc.StartCommit(ctx, job.ID)
		se, ok := models.AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, meta.ErrCodeInvalidState, se.Code)
	})

	t.Run("后台提交最终完成", func(t *testing.T) {
		content := "reported_at,value\n2026-03-02,42\n"
		job := stageCSV(t, svc, indicator.ID, meta.ImportModeCreateOnly, content)
		_, err := svc.ValidateStagingRows(ctx, job.ID)
		require.NoError(t, err)

		require.NoError(t, svc.StartCommit(ctx, job.ID))
		assert.Eventually(t, func() bool {
			current, err := svc.GetJob(ctx, job.ID)
			return err == nil && current.Status == meta.ImportJobStatusCompleted
		}, 5*time.Second, 20*time.Millisecond)
	})
}

func TestRollbackImport(t *testing.T) {
	svc, tdb, factory := newImportService(t)
	indicator := factory.CreateIndicator()
	ctx := context.Background()

	content := "reported_at,value\n2026-01-05,10\n2026-01-12,20\n"
	job := stageCSV(t, svc, indicator.ID, meta.ImportModeCreateOnly, content)
	_, err := svc.ValidateStagingRows(ctx, job.ID)
	require.NoError(t, err)
	svc.commitToDatabase(job.ID)

	// 该任务之外的提交不受回滚影响
	factory.CreateSubmission(indicator.ID, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), "30")

	deleted, err := svc.RollbackImport(ctx, job.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	final, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, meta.ImportJobStatusCancelled, final.Status)

	var count int64
	tdb.DB.Model(&models.Submission{}).Where("indicator_id = ?", indicator.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	t.Run("再次回滚删除数为0", func(t *testing.T) {
		deleted, err := svc.RollbackImport(ctx, job.ID)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}

func TestWriteErrorReport(t *testing.T) {
	svc, _, factory := newImportService(t)
	indicator := factory.CreateIndicator()
	ctx := context.Background()

	content := "reported_at,value\n下周三,10\n2026-01-12,20\n"
	job := stageCSV(t, svc, indicator.ID, meta.ImportModeCreateOnly, content)
	_, err := svc.ValidateStagingRows(ctx, job.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteErrorReport(ctx, job.ID, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Row Number", "Error Field", "Error Message", "Original Data"}, records[0])
	assert.Equal(t, "2", records[1][0])
	assert.Equal(t, "reported_at", records[1][1])
	assert.Contains(t, records[1][2], "无效的日期")
	assert.Contains(t, records[1][3], "下周三")
}

func TestExportSubmissions(t *testing.T) {
	svc, _, factory := newImportService(t)
	indicator := factory.CreateIndicator()
	ctx := context.Background()

	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	factory.CreateSubmission(indicator.ID, base, "10")
	factory.CreateSubmission(indicator.ID, base.AddDate(0, 0, 7), "20", testutil.WithDisaggregationKey("region=north"))
	factory.CreateSubmission(indicator.ID, base.AddDate(0, 0, 14), "30")

	t.Run("按默认导出模板全量导出", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.ExportSubmissions(ctx, ExportRequest{IndicatorID: indicator.ID}, &buf))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 4)
		assert.Equal(t, "reported_at", records[0][0])
		assert.Equal(t, []string{"2026-01-05", "10", "", ""}, records[1])
		assert.Equal(t, "region=north", records[2][2])
	})

	t.Run("时间范围过滤", func(t *testing.T) {
		from := base.AddDate(0, 0, 7)
		var buf bytes.Buffer
		require.NoError(t, svc.ExportSubmissions(ctx, ExportRequest{IndicatorID: indicator.ID, From: &from}, &buf))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("指标不存在", func(t *testing.T) {
		var buf bytes.Buffer
		err := svc.ExportSubmissions(ctx, ExportRequest{IndicatorID: "missing-id"}, &buf)
		se, ok := models.AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, meta.ErrCodeNotFound, se.Code)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: submissions.indicator_id")))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}
