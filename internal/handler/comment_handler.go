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

// UpsertWeekComment 写入（或覆盖）某孩子某一周的家长评语
func (a *API) UpsertWeekComment(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "ログインが必要です")
		return
	}

	var payload struct {
		UserID    uint   `json:"user_id"`
		WeekStart string `json:"week_start"`
		Body      string `json:"body"`
	}
	if !bindJSON(c, &payload, "リクエストが不正です") {
		return
	}

	targetID, ok := a.resolveTarget(c, payload.UserID)
	if !ok {
		return
	}

	weekStart, err := calendar.ParseDate(payload.WeekStart)
	if err != nil {
		respondError(c, http.StatusBadRequest, "無効な週開始日です")
		return
	}

	comment, err := a.comments.Upsert(service.CommentInput{
		AuthorID:  actorID,
		UserID:    targetID,
		WeekStart: weekStart,
		Body:      payload.Body,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyComment) {
			respondError(c, http.StatusBadRequest, "コメントを入力してください")
			return
		}
		respondError(c, http.StatusInternalServerError, "コメントの保存に失敗しました")
		return
	}

	a.respondComment(c, comment)
}

// GetWeekComment 返回某孩子某一周的评语（含渲染后的 HTML）
func (a *API) GetWeekComment(c *gin.Context) {
	targetID, ok := a.resolveTargetUser(c, c.Query("user_id"))
	if !ok {
		return
	}

	weekRef, ok := parseDateQuery(c, "week_start")
	if !ok {
		respondError(c, http.StatusBadRequest, "無効な週開始日です")
		return
	}

	comment, err := a.comments.Get(targetID, weekRef)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			respondError(c, http.StatusNotFound, "コメントが見つかりません")
			return
		}
		respondError(c, http.StatusInternalServerError, "コメントの取得に失敗しました")
		return
	}

	a.respondComment(c, comment)
}

func (a *API) respondComment(c *gin.Context, comment *db.WeekComment) {
	rendered, err := service.RenderBody(comment.Body)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "コメントの表示に失敗しました")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comment": gin.H{
		"id":         comment.ID,
		"author_id":  comment.AuthorID,
		"user_id":    comment.UserID,
		"week_start": calendar.DateKey(comment.WeekStart),
		"body":       comment.Body,
		"body_html":  rendered,
		"updated_at": comment.UpdatedAt.Format(time.RFC3339),
	}})
}
