/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference ai_docs/backend_requirements.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers
 */

package api

import (
	"mne-service/api/controllers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 元数据
	r.Route("/meta", func(r chi.Router) {
		metaController := controllers.NewMetaController()
		r.Get("/data-types", metaController.GetDataTypes)
		r.Get("/cadences", metaController.GetCadences)
		r.Get("/anomaly-statuses", metaController.GetAnomalyStatuses)
		r.Get("/import-job-statuses", metaController.GetImportJobStatuses)
	})

	// 指标管理
	r.Route("/indicators", func(r chi.Router) {
		indicatorController := controllers.NewIndicatorController()
		submissionController := controllers.NewSubmissionController()
		importController := controllers.NewImportController()
		templateController := controllers.NewTemplateController()

		// 基础CRUD操作
		r.Post("/", indicatorController.CreateIndicator)
		r.Get("/", indicatorController.ListIndicators)
		r.Get("/{id}", indicatorController.GetIndicator)
		r.Put("/{id}", indicatorController.UpdateIndicator)

		// 提交与统计
		r.Post("/{id}/submissions", submissionController.CreateSubmission)
		r.Get("/{id}/submissions", submissionController.ListSubmissions)
		r.Get("/{id}/category-distribution", submissionController.GetCategoryDistribution)
		r.Get("/{id}/category-trend", submissionController.GetCategoryTrend)
		r.Get("/{id}/reporting-gaps", submissionController.GetReportingGaps)

		// 导入导出
		r.Post("/{id}/import", importController.UploadImportFile)
		r.Get("/{id}/export", importController.ExportSubmissions)
		r.Get("/{id}/default-template", templateController.GetDefaultTemplate)
	})

	// 异常复核
	r.Route("/submissions", func(r chi.Router) {
		submissionController := controllers.NewSubmissionController()

		r.Put("/{id}/anomaly-status", submissionController.UpdateAnomalyStatus)
		r.Post("/{id}/acknowledge", submissionController.AcknowledgeAnomaly)
		r.Post("/{id}/resolve", submissionController.ResolveAnomaly)
		r.Post("/{id}/false-positive", submissionController.MarkFalsePositive)
	})

	// 导入任务管理
	r.Route("/import-jobs", func(r chi.Router) {
		importController := controllers.NewImportController()

		r.Get("/{id}", importController.GetImportJob)
		r.Get("/{id}/rows", importController.ListImportJobRows)
		r.Post("/{id}/validate", importController.ValidateImportJob)
		r.Post("/{id}/commit", importController.CommitImportJob)
		r.Post("/{id}/rollback", importController.RollbackImportJob)
		r.Get("/{id}/error-report", importController.DownloadErrorReport)
	})

	// 模板管理
	r.Route("/templates", func(r chi.Router) {
		templateController := controllers.NewTemplateController()

		r.Post("/", templateController.CreateTemplate)
		r.Get("/{id}", templateController.GetTemplate)
	})

	// 事件查询
	r.Route("/events", func(r chi.Router) {
		eventController := controllers.NewEventController()
		r.Get("/{entity_id}", eventController.ListEntityEvents)
	})
}
