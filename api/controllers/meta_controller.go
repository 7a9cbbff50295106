package controllers

import (
	"net/http"

	"mne-service/service/meta"

	"github.com/go-chi/render"
)

type MetaController struct {
}

func NewMetaController() *MetaController {
	return &MetaController{}
}

// @Summary 获取指标数据类型元数据
// @Description 获取所有指标数据类型元数据
// @Tags 元数据
// @Produce json
// @Success 200 {object} APIResponse{data=[]meta.MetaField}
// @Router /meta/data-types [get]
func (c *MetaController) GetDataTypes(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, SuccessResponse("获取数据类型元数据成功", meta.DataTypes))
}

// @Summary 获取上报周期元数据
// @Description 获取所有上报周期及其期望间隔天数
// @Tags 元数据
// @Produce json
// @Success 200 {object} APIResponse{data=map[string]interface{}}
// @Router /meta/cadences [get]
func (c *MetaController) GetCadences(w http.ResponseWriter, r *http.Request) {
	cadenceMeta := map[string]interface{}{
		"cadences":      meta.Cadences,
		"interval_days": meta.CadenceIntervalDays,
	}
	render.JSON(w, r, SuccessResponse("获取上报周期元数据成功", cadenceMeta))
}

// @Summary 获取异常状态元数据
// @Description 获取异常复核状态元数据
// @Tags 元数据
// @Produce json
// @Success 200 {object} APIResponse{data=[]meta.MetaField}
// @Router /meta/anomaly-statuses [get]
func (c *MetaController) GetAnomalyStatuses(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, SuccessResponse("获取异常状态元数据成功", meta.AnomalyStatuses))
}

// @Summary 获取导入任务状态元数据
// @Description 获取导入任务状态机的全部状态
// @Tags 元数据
// @Produce json
// @Success 200 {object} APIResponse{data=[]meta.MetaField}
// @Router /meta/import-job-statuses [get]
func (c *MetaController) GetImportJobStatuses(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, SuccessResponse("获取导入任务状态元数据成功", meta.ImportJobStatuses))
}
