package db

import (
	"time"

	"gorm.io/gorm"
)

// TaskTemplate 是常用任务模板，创建周计划时用于带出默认配置
type TaskTemplate struct {
	gorm.Model
	UserID         uint `gorm:"index"`
	Category       string
	Subcategory    string
	TaskType       string
	DefaultMinutes int
	IsActive       bool `gorm:"default:true"`
}

// ScheduledTask 表示一周内某一天的一条预定任务
// WeekStart 恒为周一；DayOfWeek 按存储约定 0=日 1=月 ... 6=土，
// 展示层再映射为周一开头的顺序
type ScheduledTask struct {
	gorm.Model
	UserID         uint `gorm:"index;index:idx_scheduled_task_week"`
	TemplateID     *uint
	WeekStart      time.Time `gorm:"index:idx_scheduled_task_week"`
	DayOfWeek      int
	Category       string
	Subcategory    string
	TaskType       string
	PlannedMinutes int
}

// DailyRecord 记录针对某日（可选关联某条预定任务）的一次实际用时
// StartTime/EndTime 存储 HH:mm:ss 字符串；StartTime 有值而 EndTime 为空
// 表示计时进行中。同一任务同一天允许多条记录（多次开始/结束）。
type DailyRecord struct {
	gorm.Model
	UserID          uint      `gorm:"index;index:idx_daily_record_date"`
	ScheduledTaskID *uint     `gorm:"index"`
	RecordDate      time.Time `gorm:"index:idx_daily_record_date"`
	StartTime       *string
	EndTime         *string
	ActualMinutes   *int
	IsCompleted     bool
}

// WeekComment 是家长针对某个孩子某一周留下的评语（Markdown）
// UserID + WeekStart 采用唯一索引，保证每周一条、可覆盖更新
type WeekComment struct {
	gorm.Model
	AuthorID  uint
	UserID    uint      `gorm:"index;index:idx_week_comment_unique,unique"`
	WeekStart time.Time `gorm:"index:idx_week_comment_unique,unique"`
	Body      string
}
