package service

import (
	"fmt"
	"time"

	"github.com/timekids/internal/calendar"
	"github.com/timekids/internal/db"
	"github.com/timekids/internal/report"
	"gorm.io/gorm"
)

// ReportService 负责日/周/月报表：取一次数据后在内存中聚合
type ReportService struct {
	db *gorm.DB
}

// DaySummary 是某一天的达成概要
type DaySummary struct {
	Date            time.Time
	PlannedMinutes  int
	ActualMinutes   int
	AchievementRate int
	CategoryMinutes map[string]int
}

// DayStat 是周报表中的一行（某一天的预定/实际）
type DayStat struct {
	Date           time.Time
	DayOfWeek      int
	PlannedMinutes int
	ActualMinutes  int
}

// WeekReport 汇总一周七天的预定与实际
// Days 按周一开头的顺序排列
type WeekReport struct {
	WeekStart       time.Time
	WeekEnd         time.Time
	Days            []DayStat
	TotalPlanned    int
	TotalActual     int
	AchievementRate int
}

// MonthCell 是月历网格中的一格
type MonthCell struct {
	Date          time.Time
	InMonth       bool
	ActualMinutes int
	Intensity     int
}

// MonthReport 汇总一个月的热力网格与达成情况
// Cells 覆盖从月初所在周一到月末所在周日的完整网格
type MonthReport struct {
	MonthStart      time.Time
	MonthEnd        time.Time
	Cells           []MonthCell
	TotalPlanned    int
	TotalActual     int
	AchievementRate int
	HasPrevData     bool
	HasNextData     bool
}

// NewReportService 构造 ReportService
func NewReportService(gdb *gorm.DB) *ReportService {
	return &ReportService{db: gdb}
}

// DaySummary 计算某用户某一天的达成概要。
// 预定取该日所在周计划中对应星期的任务，分类归属通过任务索引解析。
func (s *ReportService) DaySummary(userID uint, date time.Time) (*DaySummary, error) {
	day := normalizeToDate(date)
	weekStart := calendar.WeekStart(day)

	var tasks []db.ScheduledTask
	if err := s.db.Where("user_id = ? AND week_start = ? AND day_of_week = ?",
		userID, weekStart, int(day.Weekday())).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list day tasks: %w", err)
	}

	var records []db.DailyRecord
	if err := s.db.Where("user_id = ? AND record_date = ?", userID, day).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list day records: %w", err)
	}

	planned := report.TotalPlannedMinutes(tasks)
	actual := report.TotalActualMinutes(records)

	return &DaySummary{
		Date:            day,
		PlannedMinutes:  planned,
		ActualMinutes:   actual,
		AchievementRate: report.AchievementRate(actual, planned),
		CategoryMinutes: report.GroupByCategory(tasks, records),
	}, nil
}

// WeekReport 计算某用户一周的日别统计与合计
func (s *ReportService) WeekReport(userID uint, ref time.Time) (*WeekReport, error) {
	weekStart := calendar.WeekStart(ref)
	weekEnd := calendar.WeekEnd(ref)

	var tasks []db.ScheduledTask
	if err := s.db.Where("user_id = ? AND week_start = ?", userID, weekStart).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list week tasks: %w", err)
	}

	var records []db.DailyRecord
	if err := s.db.Where("user_id = ?", userID).
		Where("record_date BETWEEN ? AND ?", weekStart, weekEnd).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list week records: %w", err)
	}

	plannedByDay := make(map[int]int, 7)
	for _, t := range tasks {
		plannedByDay[t.DayOfWeek] += t.PlannedMinutes
	}
	actualByDate := report.GroupByDate(records)

	days := make([]DayStat, 0, 7)
	for i := 0; i < 7; i++ {
		// 周一开头的展示顺序映射回存储约定（0=日）
		dayIndex := i + 1
		if i == 6 {
			dayIndex = 0
		}
		date := weekStart.AddDate(0, 0, i)

		days = append(days, DayStat{
			Date:           date,
			DayOfWeek:      dayIndex,
			PlannedMinutes: plannedByDay[dayIndex],
			ActualMinutes:  actualByDate[calendar.DateKey(date)],
		})
	}

	totalPlanned := report.TotalPlannedMinutes(tasks)
	totalActual := report.TotalActualMinutes(records)

	return &WeekReport{
		WeekStart:       weekStart,
		WeekEnd:         weekEnd,
		Days:            days,
		TotalPlanned:    totalPlanned,
		TotalActual:     totalActual,
		AchievementRate: report.AchievementRate(totalActual, totalPlanned),
	}, nil
}

// MonthReport 计算某用户一个月的热力网格、合计与前后月数据可用性
func (s *ReportService) MonthReport(userID uint, ref time.Time) (*MonthReport, error) {
	monthStart, monthEnd := calendar.MonthBounds(ref)

	var records []db.DailyRecord
	if err := s.db.Where("user_id = ?", userID).
		Where("record_date BETWEEN ? AND ?", monthStart, monthEnd).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list month records: %w", err)
	}

	// 预定合计取周起始日落在当月内的全部周计划
	var tasks []db.ScheduledTask
	if err := s.db.Where("user_id = ?", userID).
		Where("week_start BETWEEN ? AND ?", monthStart, monthEnd).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list month tasks: %w", err)
	}

	actualByDate := report.GroupByDate(records)

	grid := calendar.MonthGrid(ref)
	cells := make([]MonthCell, 0, len(grid))
	for _, date := range grid {
		actual := actualByDate[calendar.DateKey(date)]
		cells = append(cells, MonthCell{
			Date:          date,
			InMonth:       date.Month() == monthStart.Month(),
			ActualMinutes: actual,
			Intensity:     report.IntensityBucket(actual),
		})
	}

	totalPlanned := report.TotalPlannedMinutes(tasks)
	totalActual := report.TotalActualMinutes(records)

	hasPrev, err := s.hasRecordsInMonth(userID, calendar.ShiftMonth(monthStart, -1))
	if err != nil {
		return nil, err
	}
	hasNext, err := s.hasRecordsInMonth(userID, calendar.ShiftMonth(monthStart, 1))
	if err != nil {
		return nil, err
	}

	return &MonthReport{
		MonthStart:      monthStart,
		MonthEnd:        monthEnd,
		Cells:           cells,
		TotalPlanned:    totalPlanned,
		TotalActual:     totalActual,
		AchievementRate: report.AchievementRate(totalActual, totalPlanned),
		HasPrevData:     hasPrev,
		HasNextData:     hasNext,
	}, nil
}

func (s *ReportService) hasRecordsInMonth(userID uint, ref time.Time) (bool, error) {
	start, end := calendar.MonthBounds(ref)

	var count int64
	if err := s.db.Model(&db.DailyRecord{}).
		Where("user_id = ?", userID).
		Where("record_date BETWEEN ? AND ?", start, end).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("count month records: %w", err)
	}
	return count > 0, nil
}
