package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/timekids/internal/calendar"
	"github.com/timekids/internal/db"
	"github.com/timekids/internal/report"
	"gorm.io/gorm"
)

var (
	// ErrRecordNotFound 在指定记录不存在时返回
	ErrRecordNotFound = errors.New("daily record not found")
	// ErrRecordNotActive 在对非进行中的记录执行结束操作时返回
	ErrRecordNotActive = errors.New("record has no active session")
	// ErrRecordNotCompleted 在对未完成记录执行手工修正时返回
	ErrRecordNotCompleted = errors.New("record is not completed")
	// ErrInvalidMinutes 在分钟数为零或负数时返回
	ErrInvalidMinutes = errors.New("minutes must be positive")
)

const timeOfDayFormat = "15:04:05"

// RecordService 负责实绩记录的计时与手工维护
// 同一任务同一天允许多次开始/结束，各自成一条记录；
// 是否允许并发进行中的会话由调用方把关，服务端不强制唯一。
type RecordService struct {
	db *gorm.DB
}

// OffScheduleInput 定义计划外实绩的输入：
// 同时补建一条预定任务，让记录始终能通过任务解析出分类
type OffScheduleInput struct {
	UserID         uint
	Date           time.Time
	Category       string
	Subcategory    string
	TaskType       string
	PlannedMinutes int
	ActualMinutes  int
}

// NewRecordService 构造 RecordService
func NewRecordService(gdb *gorm.DB) *RecordService {
	return &RecordService{db: gdb}
}

// Get 根据 ID 获取记录
func (s *RecordService) Get(id uint) (*db.DailyRecord, error) {
	var record db.DailyRecord
	if err := s.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &record, nil
}

// ListRange 返回日期区间内的记录，按日期与创建顺序排列
func (s *RecordService) ListRange(userID uint, from, to time.Time) ([]db.DailyRecord, error) {
	var records []db.DailyRecord
	if err := s.db.Where("user_id = ?", userID).
		Where("record_date BETWEEN ? AND ?", normalizeToDate(from), normalizeToDate(to)).
		Order("record_date ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// ListDay 返回某一天的全部记录
func (s *RecordService) ListDay(userID uint, date time.Time) ([]db.DailyRecord, error) {
	return s.ListRange(userID, date, date)
}

// Start 开始一次计时：新建进行中的记录（StartTime 有值、EndTime 为空）。
// 重新开始不会复用已完成的记录，而是追加新会话。
func (s *RecordService) Start(userID uint, taskID *uint, date, now time.Time) (*db.DailyRecord, error) {
	startTime := now.Format(timeOfDayFormat)

	record := db.DailyRecord{
		UserID:          userID,
		ScheduledTaskID: taskID,
		RecordDate:      normalizeToDate(date),
		StartTime:       &startTime,
	}

	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return &record, nil
}

// Stop 结束计时：写入 EndTime 并计算实际分钟数，负差值截断为 0。
// 只有进行中的记录可以结束，已完成的记录不会被改写。
func (s *RecordService) Stop(recordID uint, now time.Time) (*db.DailyRecord, error) {
	record, err := s.Get(recordID)
	if err != nil {
		return nil, err
	}

	if record.StartTime == nil || record.EndTime != nil || record.IsCompleted {
		return nil, ErrRecordNotActive
	}

	endTime := now.Format(timeOfDayFormat)
	minutes, err := report.SessionMinutes(*record.StartTime, endTime)
	if err != nil {
		return nil, fmt.Errorf("compute session minutes: %w", err)
	}

	record.EndTime = &endTime
	record.ActualMinutes = &minutes
	record.IsCompleted = true

	if err := s.db.Save(record).Error; err != nil {
		return nil, fmt.Errorf("stop session: %w", err)
	}
	return record, nil
}

// EditMinutes 手工修正已完成记录的分钟数，并按开始时间反推结束时间。
// 修正不会让记录回到进行中状态。
func (s *RecordService) EditMinutes(recordID uint, minutes int) (*db.DailyRecord, error) {
	if minutes <= 0 {
		return nil, ErrInvalidMinutes
	}

	record, err := s.Get(recordID)
	if err != nil {
		return nil, err
	}

	if !record.IsCompleted {
		return nil, ErrRecordNotCompleted
	}

	record.ActualMinutes = &minutes
	if record.StartTime != nil {
		endTime, err := report.EndTimeAfter(*record.StartTime, minutes)
		if err != nil {
			return nil, fmt.Errorf("recompute end time: %w", err)
		}
		record.EndTime = &endTime
	}

	if err := s.db.Save(record).Error; err != nil {
		return nil, fmt.Errorf("edit record: %w", err)
	}
	return record, nil
}

// AddOffSchedule 登记计划外实绩：在一个事务里补建预定任务并写入已完成记录
func (s *RecordService) AddOffSchedule(input OffScheduleInput) (*db.DailyRecord, error) {
	if input.UserID == 0 {
		return nil, fmt.Errorf("%w: user is required", ErrInvalidTask)
	}
	if !db.ValidCategory(input.Category) {
		return nil, fmt.Errorf("%w: unsupported category %s", ErrInvalidTask, input.Category)
	}
	if strings.TrimSpace(input.Subcategory) == "" {
		return nil, fmt.Errorf("%w: subcategory is required", ErrInvalidTask)
	}
	if input.PlannedMinutes <= 0 || input.ActualMinutes <= 0 {
		return nil, ErrInvalidMinutes
	}

	date := normalizeToDate(input.Date)
	actual := input.ActualMinutes

	record := db.DailyRecord{
		UserID:        input.UserID,
		RecordDate:    date,
		ActualMinutes: &actual,
		IsCompleted:   true,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		task := db.ScheduledTask{
			UserID:         input.UserID,
			WeekStart:      calendar.WeekStart(date),
			DayOfWeek:      int(date.Weekday()),
			Category:       input.Category,
			Subcategory:    strings.TrimSpace(input.Subcategory),
			TaskType:       strings.TrimSpace(input.TaskType),
			PlannedMinutes: input.PlannedMinutes,
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}

		record.ScheduledTaskID = &task.ID
		return tx.Create(&record).Error
	}); err != nil {
		return nil, fmt.Errorf("add off-schedule record: %w", err)
	}

	return &record, nil
}

// Delete 删除记录
func (s *RecordService) Delete(id uint) error {
	if err := s.db.Delete(&db.DailyRecord{}, id).Error; err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
