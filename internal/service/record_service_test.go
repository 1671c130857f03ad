package service

import (
	"errors"
	"testing"
	"time"

	"github.com/timekids/internal/db"
	"github.com/timekids/internal/report"
)

func clockAt(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func TestRecordServiceStartStop(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	_, child := seedParentAndChild(t)
	scheduleSvc := NewScheduleService(db.DB)
	svc := NewRecordService(db.DB)

	day := localDate(2024, time.January, 2)
	task, err := scheduleSvc.Create(TaskInput{
		UserID:         child.ID,
		WeekStart:      day,
		DayOfWeek:      2,
		Category:       db.CategoryStudy,
		Subcategory:    "数学",
		PlannedMinutes: 60,
	})
	if err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	record, err := svc.Start(child.ID, &task.ID, day, clockAt(day, 9, 0))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if record.StartTime == nil || *record.StartTime != "09:00:00" {
		t.Fatalf("unexpected start time: %+v", record.StartTime)
	}
	if record.EndTime != nil || record.IsCompleted {
		t.Fatal("freshly started record should be in progress")
	}

	stopped, err := svc.Stop(record.ID, clockAt(day, 9, 45))
	if err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	if stopped.ActualMinutes == nil || *stopped.ActualMinutes != 45 {
		t.Fatalf("expected 45 minutes, got %+v", stopped.ActualMinutes)
	}
	if stopped.EndTime == nil || *stopped.EndTime != "09:45:00" {
		t.Fatalf("unexpected end time: %+v", stopped.EndTime)
	}
	if !stopped.IsCompleted {
		t.Fatal("stopped record should be completed")
	}

	// 已完成的记录不能再次结束
	if _, err := svc.Stop(record.ID, clockAt(day, 10, 0)); !errors.Is(err, ErrRecordNotActive) {
		t.Fatalf("expected ErrRecordNotActive, got %v", err)
	}
}

func TestRecordServiceStopClampsNegative(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	_, child := seedParentAndChild(t)
	svc := NewRecordService(db.DB)

	day := localDate(2024, time.January, 2)
	record, err := svc.Start(child.ID, nil, day, clockAt(day, 9, 0))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	// 时钟回拨：结束早于开始，截断为 0 而不是负数
	stopped, err := svc.Stop(record.ID, clockAt(day, 8, 50))
	if err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if stopped.ActualMinutes == nil || *stopped.ActualMinutes != 0 {
		t.Fatalf("expected clamp to 0, got %+v", stopped.ActualMinutes)
	}
}

func TestRecordServiceMultipleSessionsSameDay(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	_, child := seedParentAndChild(t)
	svc := NewRecordService(db.DB)

	day := localDate(2024, time.January, 2)
	taskID := uint(1)

	// 第一段：完成后重新开始会追加新会话
	first, err := svc.Start(child.ID, &taskID, day, clockAt(day, 9, 0))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := svc.Stop(first.ID, clockAt(day, 9, 30)); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	second, err := svc.Start(child.ID, &taskID, day, clockAt(day, 15, 0))
	if err != nil {
		t.Fatalf("second Start returned error: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("restart should create a fresh record")
	}

	// 进行中也允许再次开始（服务端不强制单一活动会话）
	third, err := svc.Start(child.ID, &taskID, day, clockAt(day, 15, 5))
	if err != nil {
		t.Fatalf("concurrent Start returned error: %v", err)
	}

	if _, err := svc.Stop(second.ID, clockAt(day, 15, 20)); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if _, err := svc.Stop(third.ID, clockAt(day, 15, 15)); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	records, err := svc.ListDay(child.ID, day)
	if err != nil {
		t.Fatalf("ListDay returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	// 当日合计 = 各完成会话之和 30 + 20 + 10
	if got := report.TotalActualMinutes(records); got != 60 {
		t.Fatalf("expected 60 total minutes, got %d", got)
	}
}

func TestRecordServiceEditMinutes(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	_, child := seedParentAndChild(t)
	svc := NewRecordService(db.DB)

	day := localDate(2024, time.January, 2)
	record, err := svc.Start(child.ID, nil, day, clockAt(day, 14, 0))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	// 未完成的记录不可修正
	if _, err := svc.EditMinutes(record.ID, 90); !errors.Is(err, ErrRecordNotCompleted) {
		t.Fatalf("expected ErrRecordNotCompleted, got %v", err)
	}

	if _, err := svc.Stop(record.ID, clockAt(day, 14, 30)); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	edited, err := svc.EditMinutes(record.ID, 90)
	if err != nil {
		t.Fatalf("EditMinutes returned error: %v", err)
	}

	if edited.ActualMinutes == nil || *edited.ActualMinutes != 90 {
		t.Fatalf("expected 90 minutes, got %+v", edited.ActualMinutes)
	}
	// 结束时间按开始时间 + 分钟数反推
	if edited.EndTime == nil || *edited.EndTime != "15:30:00" {
		t.Fatalf("expected end time 15:30:00, got %+v", edited.EndTime)
	}
	if !edited.IsCompleted {
		t.Fatal("edited record must stay completed")
	}

	if _, err := svc.EditMinutes(record.ID, 0); !errors.Is(err, ErrInvalidMinutes) {
		t.Fatalf("expected ErrInvalidMinutes, got %v", err)
	}
}

func TestRecordServiceAddOffSchedule(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	_, child := seedParentAndChild(t)
	svc := NewRecordService(db.DB)

	day := localDate(2024, time.January, 6) // 周六

	record, err := svc.AddOffSchedule(OffScheduleInput{
		UserID:         child.ID,
		Date:           day,
		Category:       db.CategoryChore,
		Subcategory:    "その他: お風呂掃除",
		PlannedMinutes: 15,
		ActualMinutes:  20,
	})
	if err != nil {
		t.Fatalf("AddOffSchedule returned error: %v", err)
	}

	if !record.IsCompleted {
		t.Fatal("off-schedule record should be completed")
	}
	if record.ScheduledTaskID == nil {
		t.Fatal("off-schedule record must link to a synthetic task")
	}

	var task db.ScheduledTask
	if err := db.DB.First(&task, *record.ScheduledTaskID).Error; err != nil {
		t.Fatalf("expected synthetic task to exist: %v", err)
	}
	if !task.WeekStart.Equal(localDate(2024, time.January, 1)) {
		t.Fatalf("synthetic task has wrong week start: %s", task.WeekStart)
	}
	if task.DayOfWeek != 6 {
		t.Fatalf("expected day of week 6, got %d", task.DayOfWeek)
	}

	// 分类能通过任务索引解析出来
	records, _ := svc.ListDay(child.ID, day)
	totals := report.GroupByCategory([]db.ScheduledTask{task}, records)
	if totals[db.CategoryChore] != 20 {
		t.Fatalf("expected chore 20, got %d", totals[db.CategoryChore])
	}

	// 零分钟提交在写入前被拒绝
	if _, err := svc.AddOffSchedule(OffScheduleInput{
		UserID:         child.ID,
		Date:           day,
		Category:       db.CategoryChore,
		Subcategory:    "その他",
		PlannedMinutes: 15,
		ActualMinutes:  0,
	}); !errors.Is(err, ErrInvalidMinutes) {
		t.Fatalf("expected ErrInvalidMinutes, got %v", err)
	}
}
