package controllers

import (
	"net/http"
	"strconv"

	"mne-service/service"
	"mne-service/service/event"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// EventController 平台事件控制器
type EventController struct {
	eventService *event.EventService
}

// NewEventController 创建平台事件控制器
func NewEventController() *EventController {
	return &EventController{
		eventService: service.GlobalEventService,
	}
}

// ListEntityEvents 查询实体事件
// @Summary 查询实体事件
// @Description 查询某实体（提交、导入任务、指标）相关的平台事件，按时间倒序
// @Tags 事件管理
// @Produce json
// @Param entity_id path string true "实体ID"
// @Param limit query int false "返回条数" default(50)
// @Success 200 {object} APIResponse{data=[]models.PlatformEvent}
// @Router /events/{entity_id} [get]
func (c *EventController) ListEntityEvents(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "entity_id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := c.eventService.ListEvents(r.Context(), entityID, limit)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("查询事件失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("查询事件成功", events))
}
