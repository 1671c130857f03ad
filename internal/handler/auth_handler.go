package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/timekids/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const sessionUserKey = "user_id"

type credentialsPayload struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// Signup 注册家长账号；子账号只能由家长通过 CreateChild 创建
func (a *API) Signup(c *gin.Context) {
	var payload credentialsPayload
	if !bindJSON(c, &payload, "リクエストが不正です") {
		return
	}

	username := strings.TrimSpace(payload.Username)
	password := strings.TrimSpace(payload.Password)
	displayName := strings.TrimSpace(payload.DisplayName)
	if username == "" || password == "" {
		respondError(c, http.StatusBadRequest, "ユーザー名とパスワードを入力してください")
		return
	}
	if displayName == "" {
		displayName = username
	}

	var existing db.User
	if err := a.db.Where("username = ?", username).First(&existing).Error; err == nil {
		respondError(c, http.StatusBadRequest, "このユーザー名は既に登録されています")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusInternalServerError, "登録中にエラーが発生しました")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "登録中にエラーが発生しました")
		return
	}

	user := db.User{
		Username:    username,
		Password:    string(hashed),
		DisplayName: displayName,
		Role:        db.RoleParent,
	}
	if err := a.db.Create(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "登録中にエラーが発生しました")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "セッションの保存に失敗しました")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userToPayload(user)})
}

// Login 校验用户名密码并建立会话
func (a *API) Login(c *gin.Context) {
	var payload credentialsPayload
	if !bindJSON(c, &payload, "リクエストが不正です") {
		return
	}

	var user db.User
	if err := a.db.Where("username = ?", strings.TrimSpace(payload.Username)).First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "ユーザー名またはパスワードが違います")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "ユーザー名またはパスワードが違います")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "セッションの保存に失敗しました")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userToPayload(user)})
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"logged_out": true})
}

// Me 返回当前登录用户
func (a *API) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "ログインが必要です")
		return
	}

	user, err := a.family.GetUser(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ユーザー情報の取得に失敗しました")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userToPayload(*user)})
}

// AuthRequired 是一个简单的认证中间件：未登录时返回 401 而不是静默放行
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserKey) == nil {
			respondError(c, http.StatusUnauthorized, "ログインが必要です")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) (uint, bool) {
	session := sessions.Default(c)
	value := session.Get(sessionUserKey)
	if value == nil {
		return 0, false
	}

	id, ok := value.(uint)
	if !ok {
		return 0, false
	}
	return id, true
}

func userToPayload(user db.User) gin.H {
	payload := gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"display_name": user.DisplayName,
		"role":         user.Role,
		"avatar_url":   user.AvatarURL,
	}
	if user.StartDate != nil {
		payload["start_date"] = user.StartDate.Format("2006-01-02")
	}
	return payload
}
