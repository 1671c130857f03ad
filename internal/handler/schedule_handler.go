package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timekids/internal/calendar"
	"github.com/timekids/internal/db"
	"github.com/timekids/internal/service"
)

type taskPayload struct {
	UserID         uint   `json:"user_id"`
	TemplateID     *uint  `json:"template_id"`
	WeekStart      string `json:"week_start"`
	DayOfWeek      int    `json:"day_of_week"`
	Category       string `json:"category"`
	Subcategory    string `json:"subcategory"`
	TaskType       string `json:"task_type"`
	PlannedMinutes int    `json:"planned_minutes"`
}

// GetSchedule 返回目标用户某一周的预定任务
func (a *API) GetSchedule(c *gin.Context) {
	targetID, ok := a.resolveTargetUser(c, c.Query("user_id"))
	if !ok {
		return
	}

	weekRef, ok := parseDateQuery(c, "week_start")
	if !ok {
		respondError(c, http.StatusBadRequest, "無効な週開始日です")
		return
	}

	tasks, err := a.schedule.ListWeek(targetID, weekRef)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "スケジュールの取得に失敗しました")
		return
	}

	items := make([]gin.H, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, taskToPayload(task))
	}

	c.JSON(http.StatusOK, gin.H{
		"week_start": calendar.DateKey(calendar.WeekStart(weekRef)),
		"tasks":      items,
	})
}

// CreateTask 创建预定任务（可代子账号操作）
func (a *API) CreateTask(c *gin.Context) {
	var payload taskPayload
	if !bindJSON(c, &payload, "リクエストが不正です") {
		return
	}

	targetID, ok := a.resolveTarget(c, payload.UserID)
	if !ok {
		return
	}

	input, ok := a.taskInputFromPayload(c, targetID, payload)
	if !ok {
		return
	}

	task, err := a.schedule.Create(input)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": taskToPayload(*task)})
}

// UpdateTask 更新预定任务
func (a *API) UpdateTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "無効なタスクIDです")
		return
	}

	existing, err := a.schedule.Get(id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	if !a.requireActOn(c, existing.UserID) {
		return
	}

	var payload taskPayload
	if !bindJSON(c, &payload, "リクエストが不正です") {
		return
	}

	input, ok := a.taskInputFromPayload(c, existing.UserID, payload)
	if !ok {
		return
	}

	task, err := a.schedule.Update(id, input)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": taskToPayload(*task)})
}

// DeleteTask 删除预定任务
func (a *API) DeleteTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "無効なタスクIDです")
		return
	}

	existing, err := a.schedule.Get(id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	if !a.requireActOn(c, existing.UserID) {
		return
	}

	if err := a.schedule.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "タスクの削除に失敗しました")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// CopySchedule 将一周的计划复制到另一周
func (a *API) CopySchedule(c *gin.Context) {
	var payload struct {
		UserID   uint   `json:"user_id"`
		FromWeek string `json:"from_week"`
		ToWeek   string `json:"to_week"`
	}
	if !bindJSON(c, &payload, "リクエストが不正です") {
		return
	}

	targetID, ok := a.resolveTarget(c, payload.UserID)
	if !ok {
		return
	}

	fromWeek, err := calendar.ParseDate(payload.FromWeek)
	if err != nil {
		respondError(c, http.StatusBadRequest, "無効なコピー元の週です")
		return
	}
	toWeek, err := calendar.ParseDate(payload.ToWeek)
	if err != nil {
		respondError(c, http.StatusBadRequest, "無効なコピー先の週です")
		return
	}

	copied, err := a.schedule.CopyWeek(targetID, fromWeek, toWeek)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "週間スケジュールのコピーに失敗しました")
		return
	}

	c.JSON(http.StatusOK, gin.H{"copied": copied})
}

// GetCategories 返回分类配置表
func (a *API) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": db.CategoryConfigs})
}

func (a *API) taskInputFromPayload(c *gin.Context, userID uint, payload taskPayload) (service.TaskInput, bool) {
	weekStart, err := calendar.ParseDate(payload.WeekStart)
	if err != nil {
		respondError(c, http.StatusBadRequest, "無効な週開始日です")
		return service.TaskInput{}, false
	}

	return service.TaskInput{
		UserID:         userID,
		TemplateID:     payload.TemplateID,
		WeekStart:      weekStart,
		DayOfWeek:      payload.DayOfWeek,
		Category:       payload.Category,
		Subcategory:    payload.Subcategory,
		TaskType:       payload.TaskType,
		PlannedMinutes: payload.PlannedMinutes,
	}, true
}

func taskToPayload(task db.ScheduledTask) gin.H {
	item := gin.H{
		"id":              task.ID,
		"user_id":         task.UserID,
		"week_start":      calendar.DateKey(task.WeekStart),
		"day_of_week":     task.DayOfWeek,
		"category":        task.Category,
		"subcategory":     task.Subcategory,
		"task_type":       task.TaskType,
		"planned_minutes": task.PlannedMinutes,
		"created_at":      task.CreatedAt.Format(time.RFC3339),
	}
	if task.TemplateID != nil {
		item["template_id"] = *task.TemplateID
	}
	return item
}

func handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		respondError(c, http.StatusNotFound, "タスクが見つかりません")
	case errors.Is(err, service.ErrInvalidTask):
		respondError(c, http.StatusBadRequest, "タスクの内容が不正です")
	default:
		respondError(c, http.StatusInternalServerError, "操作に失敗しました")
	}
}
