package service

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/timekids/internal/calendar"
	"github.com/timekids/internal/db"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCommentNotFound 在指定周评语不存在时返回
	ErrCommentNotFound = errors.New("week comment not found")
	// ErrEmptyComment 在评语内容为空时返回
	ErrEmptyComment = errors.New("comment body is required")
)

var (
	commentMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	commentSanitizer = bluemonday.UGCPolicy()
)

// CommentService 负责家长周评语的读写与 Markdown 渲染
type CommentService struct {
	db *gorm.DB
}

// CommentInput 定义写入周评语的输入
type CommentInput struct {
	AuthorID  uint
	UserID    uint
	WeekStart time.Time
	Body      string
}

// NewCommentService 构造 CommentService
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb}
}

// Upsert 写入某孩子某一周的评语：同一周已存在则覆盖内容与作者
func (s *CommentService) Upsert(input CommentInput) (*db.WeekComment, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, ErrEmptyComment
	}

	weekStart := calendar.WeekStart(input.WeekStart)
	comment := db.WeekComment{
		AuthorID:  input.AuthorID,
		UserID:    input.UserID,
		WeekStart: weekStart,
		Body:      body,
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "week_start"}},
		DoUpdates: clause.AssignmentColumns([]string{"author_id", "body", "updated_at"}),
	}).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("upsert week comment: %w", err)
	}

	if err := s.db.Where("user_id = ? AND week_start = ?", input.UserID, weekStart).
		First(&comment).Error; err != nil {
		return nil, fmt.Errorf("reload week comment: %w", err)
	}

	return &comment, nil
}

// Get 返回某孩子某一周的评语
func (s *CommentService) Get(userID uint, weekStart time.Time) (*db.WeekComment, error) {
	var comment db.WeekComment
	err := s.db.Where("user_id = ? AND week_start = ?", userID, calendar.WeekStart(weekStart)).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("get week comment: %w", err)
	}
	return &comment, nil
}

// RenderBody 将 Markdown 评语渲染为净化后的 HTML
func RenderBody(body string) (string, error) {
	var buf bytes.Buffer
	if err := commentMarkdown.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render comment: %w", err)
	}
	return commentSanitizer.Sanitize(buf.String()), nil
}
