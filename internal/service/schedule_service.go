package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/timekids/internal/calendar"
	"github.com/timekids/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound 在指定预定任务不存在时返回
	ErrTaskNotFound = errors.New("scheduled task not found")
	// ErrInvalidTask 在任务输入不合法时返回
	ErrInvalidTask = errors.New("invalid task input")
	// ErrTemplateNotFound 在任务模板不存在时返回
	ErrTemplateNotFound = errors.New("task template not found")
)

// ScheduleService 负责周计划与任务模板的增删改查
type ScheduleService struct {
	db *gorm.DB
}

// TaskInput 定义创建/更新预定任务时可配置字段
// WeekStart 会被归一到所在周的周一
type TaskInput struct {
	UserID         uint
	TemplateID     *uint
	WeekStart      time.Time
	DayOfWeek      int
	Category       string
	Subcategory    string
	TaskType       string
	PlannedMinutes int
}

// TemplateInput 定义任务模板字段
type TemplateInput struct {
	UserID         uint
	Category       string
	Subcategory    string
	TaskType       string
	DefaultMinutes int
	IsActive       bool
}

// NewScheduleService 构造 ScheduleService
func NewScheduleService(gdb *gorm.DB) *ScheduleService {
	return &ScheduleService{db: gdb}
}

// ListWeek 返回某用户某一周的全部预定任务，按星期与创建顺序排列
func (s *ScheduleService) ListWeek(userID uint, weekStart time.Time) ([]db.ScheduledTask, error) {
	var tasks []db.ScheduledTask
	monday := calendar.WeekStart(weekStart)

	if err := s.db.Where("user_id = ? AND week_start = ?", userID, monday).
		Order("day_of_week ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list week tasks: %w", err)
	}

	return tasks, nil
}

// Get 根据 ID 获取预定任务
func (s *ScheduleService) Get(id uint) (*db.ScheduledTask, error) {
	var task db.ScheduledTask
	if err := s.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// Create 新建预定任务
func (s *ScheduleService) Create(input TaskInput) (*db.ScheduledTask, error) {
	if err := validateTaskInput(input); err != nil {
		return nil, err
	}

	task := db.ScheduledTask{
		UserID:         input.UserID,
		TemplateID:     input.TemplateID,
		WeekStart:      calendar.WeekStart(input.WeekStart),
		DayOfWeek:      input.DayOfWeek,
		Category:       input.Category,
		Subcategory:    strings.TrimSpace(input.Subcategory),
		TaskType:       strings.TrimSpace(input.TaskType),
		PlannedMinutes: input.PlannedMinutes,
	}

	if err := s.db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &task, nil
}

// Update 更新预定任务，保持所属用户不变
func (s *ScheduleService) Update(id uint, input TaskInput) (*db.ScheduledTask, error) {
	var existing db.ScheduledTask
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}

	input.UserID = existing.UserID
	if err := validateTaskInput(input); err != nil {
		return nil, err
	}

	existing.WeekStart = calendar.WeekStart(input.WeekStart)
	existing.DayOfWeek = input.DayOfWeek
	existing.Category = input.Category
	existing.Subcategory = strings.TrimSpace(input.Subcategory)
	existing.TaskType = strings.TrimSpace(input.TaskType)
	existing.PlannedMinutes = input.PlannedMinutes

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &existing, nil
}

// Delete 删除预定任务
func (s *ScheduleService) Delete(id uint) error {
	if err := s.db.Delete(&db.ScheduledTask{}, id).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// CopyWeek 将 fromWeek 的计划整周复制到 toWeek，返回新建条数。
// 目标周已有任务时照常追加，不做去重。
func (s *ScheduleService) CopyWeek(userID uint, fromWeek, toWeek time.Time) (int, error) {
	source, err := s.ListWeek(userID, fromWeek)
	if err != nil {
		return 0, err
	}
	if len(source) == 0 {
		return 0, nil
	}

	target := calendar.WeekStart(toWeek)
	copies := make([]db.ScheduledTask, 0, len(source))
	for _, t := range source {
		copies = append(copies, db.ScheduledTask{
			UserID:         t.UserID,
			TemplateID:     t.TemplateID,
			WeekStart:      target,
			DayOfWeek:      t.DayOfWeek,
			Category:       t.Category,
			Subcategory:    t.Subcategory,
			TaskType:       t.TaskType,
			PlannedMinutes: t.PlannedMinutes,
		})
	}

	if err := s.db.Create(&copies).Error; err != nil {
		return 0, fmt.Errorf("copy week: %w", err)
	}
	return len(copies), nil
}

// ListTemplates 返回某用户的任务模板
func (s *ScheduleService) ListTemplates(userID uint, onlyActive bool) ([]db.TaskTemplate, error) {
	query := s.db.Where("user_id = ?", userID)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}

	var templates []db.TaskTemplate
	if err := query.Order("id ASC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

// CreateTemplate 新建任务模板
func (s *ScheduleService) CreateTemplate(input TemplateInput) (*db.TaskTemplate, error) {
	if !db.ValidCategory(input.Category) {
		return nil, fmt.Errorf("%w: unsupported category %s", ErrInvalidTask, input.Category)
	}
	if strings.TrimSpace(input.Subcategory) == "" {
		return nil, fmt.Errorf("%w: subcategory is required", ErrInvalidTask)
	}
	if input.DefaultMinutes <= 0 {
		return nil, fmt.Errorf("%w: default minutes must be positive", ErrInvalidTask)
	}

	template := db.TaskTemplate{
		UserID:         input.UserID,
		Category:       input.Category,
		Subcategory:    strings.TrimSpace(input.Subcategory),
		TaskType:       strings.TrimSpace(input.TaskType),
		DefaultMinutes: input.DefaultMinutes,
		IsActive:       input.IsActive,
	}

	if err := s.db.Create(&template).Error; err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return &template, nil
}

// UpdateTemplate 更新任务模板
func (s *ScheduleService) UpdateTemplate(id uint, input TemplateInput) (*db.TaskTemplate, error) {
	var existing db.TaskTemplate
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("find template: %w", err)
	}

	if !db.ValidCategory(input.Category) {
		return nil, fmt.Errorf("%w: unsupported category %s", ErrInvalidTask, input.Category)
	}
	if input.DefaultMinutes <= 0 {
		return nil, fmt.Errorf("%w: default minutes must be positive", ErrInvalidTask)
	}

	existing.Category = input.Category
	existing.Subcategory = strings.TrimSpace(input.Subcategory)
	existing.TaskType = strings.TrimSpace(input.TaskType)
	existing.DefaultMinutes = input.DefaultMinutes
	existing.IsActive = input.IsActive

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return &existing, nil
}

// DeleteTemplate 删除任务模板
func (s *ScheduleService) DeleteTemplate(id uint) error {
	if err := s.db.Delete(&db.TaskTemplate{}, id).Error; err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

func validateTaskInput(input TaskInput) error {
	if input.UserID == 0 {
		return fmt.Errorf("%w: user is required", ErrInvalidTask)
	}
	if !db.ValidCategory(input.Category) {
		return fmt.Errorf("%w: unsupported category %s", ErrInvalidTask, input.Category)
	}
	if strings.TrimSpace(input.Subcategory) == "" {
		return fmt.Errorf("%w: subcategory is required", ErrInvalidTask)
	}
	if input.DayOfWeek < 0 || input.DayOfWeek > 6 {
		return fmt.Errorf("%w: day of week out of range", ErrInvalidTask)
	}
	if input.PlannedMinutes <= 0 {
		return fmt.Errorf("%w: planned minutes must be positive", ErrInvalidTask)
	}
	return nil
}
