package service

import (
	"testing"
	"time"

	"github.com/timekids/internal/db"
)

func seedWeekFixture(t *testing.T, userID uint) {
	t.Helper()

	scheduleSvc := NewScheduleService(db.DB)
	recordSvc := NewRecordService(db.DB)

	week := localDate(2024, time.January, 1) // 周一

	// 预定合计 180 分钟，分布在三天
	seeds := []struct {
		day     int
		minutes int
	}{
		{1, 60}, // 周一
		{3, 60}, // 周三
		{5, 60}, // 周五
	}
	for _, seed := range seeds {
		task, err := scheduleSvc.Create(TaskInput{
			UserID:         userID,
			WeekStart:      week,
			DayOfWeek:      seed.day,
			Category:       db.CategoryStudy,
			Subcategory:    "数学",
			PlannedMinutes: seed.minutes,
		})
		if err != nil {
			t.Fatalf("failed to seed task: %v", err)
		}

		// 周一与周三各完成 60 分钟，周五没有记录 → 实际合计 120
		if seed.day == 5 {
			continue
		}
		date := week.AddDate(0, 0, seed.day-1)
		record, err := recordSvc.Start(userID, &task.ID, date, clockAt(date, 16, 0))
		if err != nil {
			t.Fatalf("failed to start record: %v", err)
		}
		if _, err := recordSvc.Stop(record.ID, clockAt(date, 17, 0)); err != nil {
			t.Fatalf("failed to stop record: %v", err)
		}
	}
}

func TestReportServiceWeekReport(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	_, child := seedParentAndChild(t)
	seedWeekFixture(t, child.ID)

	svc := NewReportService(db.DB)

	// 用周中的任意一天请求，窗口仍应落在同一周
	got, err := svc.WeekReport(child.ID, localDate(2024, time.January, 4))
	if err != nil {
		t.Fatalf("WeekReport returned error: %v", err)
	}

	if !got.WeekStart.Equal(localDate(2024, time.January, 1)) {
		t.Fatalf("unexpected week start: %s", got.WeekStart)
	}
	if !got.WeekEnd.Equal(localDate(2024, time.January, 7)) {
		t.Fatalf("unexpected week end: %s", got.WeekEnd)
	}

	if got.TotalPlanned != 180 {
		t.Fatalf("expected planned 180, got %d", got.TotalPlanned)
	}
	if got.TotalActual != 120 {
		t.Fatalf("expected actual 120, got %d", got.TotalActual)
	}
	if got.AchievementRate != 67 {
		t.Fatalf("expected achievement rate 67, got %d", got.AchievementRate)
	}

	if len(got.Days) != 7 {
		t.Fatalf("expected 7 day rows, got %d", len(got.Days))
	}

	// 周一开头：第一行是周一（存储约定 1），最后一行是周日（存储约定 0）
	if got.Days[0].DayOfWeek != 1 || got.Days[6].DayOfWeek != 0 {
		t.Fatalf("unexpected day ordering: first=%d last=%d", got.Days[0].DayOfWeek, got.Days[6].DayOfWeek)
	}

	// 周五：有预定无实绩；两个计数相互独立
	friday := got.Days[4]
	if friday.PlannedMinutes != 60 || friday.ActualMinutes != 0 {
		t.Fatalf("unexpected friday row: %+v", friday)
	}
}

func TestReportServiceDaySummary(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	_, child := seedParentAndChild(t)
	seedWeekFixture(t, child.ID)

	recordSvc := NewRecordService(db.DB)

	// 周一再补一条计划外的お手伝い实绩
	monday := localDate(2024, time.January, 1)
	if _, err := recordSvc.AddOffSchedule(OffScheduleInput{
		UserID:         child.ID,
		Date:           monday,
		Category:       db.CategoryChore,
		Subcategory:    "洗濯物を畳む",
		PlannedMinutes: 15,
		ActualMinutes:  15,
	}); err != nil {
		t.Fatalf("AddOffSchedule returned error: %v", err)
	}

	svc := NewReportService(db.DB)
	got, err := svc.DaySummary(child.ID, monday)
	if err != nil {
		t.Fatalf("DaySummary returned error: %v", err)
	}

	if got.PlannedMinutes != 75 {
		t.Fatalf("expected planned 75, got %d", got.PlannedMinutes)
	}
	if got.ActualMinutes != 75 {
		t.Fatalf("expected actual 75, got %d", got.ActualMinutes)
	}
	if got.AchievementRate != 100 {
		t.Fatalf("expected rate 100, got %d", got.AchievementRate)
	}
	if got.CategoryMinutes[db.CategoryStudy] != 60 {
		t.Fatalf("expected study 60, got %d", got.CategoryMinutes[db.CategoryStudy])
	}
	if got.CategoryMinutes[db.CategoryChore] != 15 {
		t.Fatalf("expected chore 15, got %d", got.CategoryMinutes[db.CategoryChore])
	}
}

func TestReportServiceMonthReport(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	_, child := seedParentAndChild(t)
	seedWeekFixture(t, child.ID)

	svc := NewReportService(db.DB)
	got, err := svc.MonthReport(child.ID, localDate(2024, time.January, 15))
	if err != nil {
		t.Fatalf("MonthReport returned error: %v", err)
	}

	if len(got.Cells)%7 != 0 {
		t.Fatalf("cell count %d is not a multiple of 7", len(got.Cells))
	}

	if got.TotalPlanned != 180 || got.TotalActual != 120 {
		t.Fatalf("unexpected totals: planned=%d actual=%d", got.TotalPlanned, got.TotalActual)
	}
	if got.AchievementRate != 67 {
		t.Fatalf("expected rate 67, got %d", got.AchievementRate)
	}

	// 2024-01-01 完成 60 分钟 → 档位 3
	var newYearsDay *MonthCell
	for i := range got.Cells {
		if got.Cells[i].Date.Equal(localDate(2024, time.January, 1)) {
			newYearsDay = &got.Cells[i]
			break
		}
	}
	if newYearsDay == nil {
		t.Fatal("grid is missing 2024-01-01")
	}
	if !newYearsDay.InMonth {
		t.Fatal("2024-01-01 should be flagged in-month")
	}
	if newYearsDay.ActualMinutes != 60 || newYearsDay.Intensity != 3 {
		t.Fatalf("unexpected cell: %+v", newYearsDay)
	}

	// 没有前后月数据
	if got.HasPrevData || got.HasNextData {
		t.Fatalf("expected no neighbour data, got prev=%v next=%v", got.HasPrevData, got.HasNextData)
	}
}
