/*
 * @module service/monitoring/metrics_collector
 * @description Prometheus指标收集器，统计提交、异常与导入流水线的处理量
 * @architecture 分层架构 - 监控层
 * @documentReference ai_docs/monitoring.md
 * @stateFlow 业务操作 -> 计数器递增 -> /metrics暴露
 * @rules 指标注册一次，业务路径只做递增
 * @dependencies github.com/prometheus/client_golang/prometheus
 * @refs main.go, service/submission, service/importer
 */

package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsCreated 创建成功的提交计数
	SubmissionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mne",
		Subsystem: "submission",
		Name:      "created_total",
		Help:      "创建成功的指标提交数",
	}, []string{"data_type", "source"}) // source: direct, import

	// AnomaliesDetected 检出异常计数
	AnomaliesDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mne",
		Subsystem: "anomaly",
		Name:      "detected_total",
		Help:      "检出的异常提交数",
	}, []string{"mode"}) // mode: range, series

	// ImportRowsProcessed 导入流水线处理的行计数
	ImportRowsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mne",
		Subsystem: "import",
		Name:      "rows_processed_total",
		Help:      "各阶段处理的导入行数",
	}, []string{"phase", "status"}) // phase: stage, validate, commit

	// ImportJobsTotal 导入任务终态计数
	ImportJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mne",
		Subsystem: "import",
		Name:      "jobs_total",
		Help:      "进入终态的导入任务数",
	}, []string{"status"})

	// ImportBatchDuration 导入批次处理耗时
	ImportBatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mne",
		Subsystem: "import",
		Name:      "batch_duration_seconds",
		Help:      "导入批次处理耗时分布",
		Buckets:   prometheus.DefBuckets,
	}, []string{"phase"})
)
