package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timekids/internal/db"
	"github.com/timekids/internal/service"
)

type templatePayload struct {
	UserID         uint   `json:"user_id"`
	Category       string `json:"category"`
	Subcategory    string `json:"subcategory"`
	TaskType       string `json:"task_type"`
	DefaultMinutes int    `json:"default_minutes"`
	IsActive       *bool  `json:"is_active"`
}

// ListTemplates 返回目标用户的任务模板
func (a *API) ListTemplates(c *gin.Context) {
	targetID, ok := a.resolveTargetUser(c, c.Query("user_id"))
	if !ok {
		return
	}

	onlyActive := c.Query("active") == "true"
	templates, err := a.schedule.ListTemplates(targetID, onlyActive)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "テンプレートの取得に失敗しました")
		return
	}

	items := make([]gin.H, 0, len(templates))
	for _, template := range templates {
		items = append(items, templateToPayload(template))
	}

	c.JSON(http.StatusOK, gin.H{"templates": items})
}

// CreateTemplate 创建任务模板
func (a *API) CreateTemplate(c *gin.Context) {
	var payload templatePayload
	if !bindJSON(c, &payload, "リクエストが不正です") {
		return
	}

	targetID, ok := a.resolveTarget(c, payload.UserID)
	if !ok {
		return
	}

	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	template, err := a.schedule.CreateTemplate(service.TemplateInput{
		UserID:         targetID,
		Category:       payload.Category,
		Subcategory:    payload.Subcategory,
		TaskType:       payload.TaskType,
		DefaultMinutes: payload.DefaultMinutes,
		IsActive:       isActive,
	})
	if err != nil {
		handleTemplateError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": templateToPayload(*template)})
}

// UpdateTemplate 更新任务模板
func (a *API) UpdateTemplate(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "無効なテンプレートIDです")
		return
	}

	var existing db.TaskTemplate
	if err := a.db.First(&existing, id).Error; err != nil {
		respondError(c, http.StatusNotFound, "テンプレートが見つかりません")
		return
	}

	if !a.requireActOn(c, existing.UserID) {
		return
	}

	var payload templatePayload
	if !bindJSON(c, &payload, "リクエストが不正です") {
		return
	}

	isActive := existing.IsActive
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	template, err := a.schedule.UpdateTemplate(id, service.TemplateInput{
		Category:       payload.Category,
		Subcategory:    payload.Subcategory,
		TaskType:       payload.TaskType,
		DefaultMinutes: payload.DefaultMinutes,
		IsActive:       isActive,
	})
	if err != nil {
		handleTemplateError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": templateToPayload(*template)})
}

// DeleteTemplate 删除任务模板
func (a *API) DeleteTemplate(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "無効なテンプレートIDです")
		return
	}

	var existing db.TaskTemplate
	if err := a.db.First(&existing, id).Error; err != nil {
		respondError(c, http.StatusNotFound, "テンプレートが見つかりません")
		return
	}

	if !a.requireActOn(c, existing.UserID) {
		return
	}

	if err := a.schedule.DeleteTemplate(id); err != nil {
		respondError(c, http.StatusInternalServerError, "テンプレートの削除に失敗しました")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func templateToPayload(template db.TaskTemplate) gin.H {
	return gin.H{
		"id":              template.ID,
		"user_id":         template.UserID,
		"category":        template.Category,
		"subcategory":     template.Subcategory,
		"task_type":       template.TaskType,
		"default_minutes": template.DefaultMinutes,
		"is_active":       template.IsActive,
	}
}

func handleTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		respondError(c, http.StatusNotFound, "テンプレートが見つかりません")
	case errors.Is(err, service.ErrInvalidTask):
		respondError(c, http.StatusBadRequest, "テンプレートの内容が不正です")
	default:
		respondError(c, http.StatusInternalServerError, "操作に失敗しました")
	}
}
