package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timekids/internal/service"
)

// CreateChild 由家长创建子账号
func (a *API) CreateChild(c *gin.Context) {
	parentID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "ログインが必要です")
		return
	}

	var payload struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if !bindJSON(c, &payload, "リクエストが不正です") {
		return
	}

	child, err := a.family.CreateChild(parentID, service.ChildInput{
		Username:    payload.Username,
		Password:    payload.Password,
		DisplayName: payload.DisplayName,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotParent):
			respondError(c, http.StatusForbidden, "子アカウントを追加できるのは保護者のみです")
		case errors.Is(err, service.ErrUsernameTaken):
			respondError(c, http.StatusBadRequest, "このユーザー名は既に登録されています")
		case errors.Is(err, service.ErrInvalidAccount):
			respondError(c, http.StatusBadRequest, "アカウント情報を入力してください")
		default:
			respondError(c, http.StatusInternalServerError, "子アカウントの作成に失敗しました")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"child": userToPayload(*child)})
}

// ListChildren 返回家长名下的子账号一览
func (a *API) ListChildren(c *gin.Context) {
	parentID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "ログインが必要です")
		return
	}

	children, err := a.family.Children(parentID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "子アカウントの取得に失敗しました")
		return
	}

	items := make([]gin.H, 0, len(children))
	for _, child := range children {
		items = append(items, userToPayload(child))
	}

	c.JSON(http.StatusOK, gin.H{"children": items})
}

// resolveTargetUser 解析操作对象：
// 缺省或与本人一致时为本人；指定他人时必须通过亲子关系授权检查。
// 返回 false 时已写入响应。
func (a *API) resolveTargetUser(c *gin.Context, rawTarget string) (uint, bool) {
	actorID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "ログインが必要です")
		return 0, false
	}

	raw := strings.TrimSpace(rawTarget)
	if raw == "" {
		return actorID, true
	}

	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "無効なユーザーIDです")
		return 0, false
	}

	return a.resolveTarget(c, uint(parsed))
}

// resolveTarget 是 resolveTargetUser 的数值版本，targetID 为 0 时指本人
func (a *API) resolveTarget(c *gin.Context, targetID uint) (uint, bool) {
	actorID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "ログインが必要です")
		return 0, false
	}

	if targetID == 0 || targetID == actorID {
		return actorID, true
	}

	allowed, err := a.family.CanActOn(actorID, targetID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "権限の確認に失敗しました")
		return 0, false
	}
	if !allowed {
		respondError(c, http.StatusForbidden, "この操作を行う権限がありません")
		return 0, false
	}

	return targetID, true
}

// requireActOn 校验当前用户能否操作 ownerID 的数据，失败时已写入响应
func (a *API) requireActOn(c *gin.Context, ownerID uint) bool {
	actorID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "ログインが必要です")
		return false
	}

	allowed, err := a.family.CanActOn(actorID, ownerID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "権限の確認に失敗しました")
		return false
	}
	if !allowed {
		respondError(c, http.StatusForbidden, "この操作を行う権限がありません")
		return false
	}

	return true
}
