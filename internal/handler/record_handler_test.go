package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/timekids/internal/db"
)

func TestStartAndStopRecord(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	_, child := seedParentAndChild(t)

	task := db.ScheduledTask{
		UserID:         child.ID,
		WeekStart:      localDate(2024, 1, 1),
		DayOfWeek:      1,
		Category:       "study",
		Subcategory:    "算数",
		TaskType:       "宿題",
		PlannedMinutes: 30,
	}
	if err := db.DB.Create(&task).Error; err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	r := newTestRouter(child.ID)
	r.POST("/api/records/start", api.StartRecord)
	r.POST("/api/records/:id/stop", api.StopRecord)

	req := postJSON(t, map[string]any{
		"scheduled_task_id": task.ID,
		"date":              "2024-01-01",
	}, "/api/records/start")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var started struct {
		Record struct {
			ID          uint   `json:"id"`
			RecordDate  string `json:"record_date"`
			StartTime   string `json:"start_time"`
			IsCompleted bool   `json:"is_completed"`
		} `json:"record"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if started.Record.RecordDate != "2024-01-01" {
		t.Fatalf("expected record_date 2024-01-01, got %s", started.Record.RecordDate)
	}
	if started.Record.StartTime == "" {
		t.Fatal("expected start_time to be set")
	}
	if started.Record.IsCompleted {
		t.Fatal("expected record to be in progress")
	}

	w = httptest.NewRecorder()
	stopPath := fmt.Sprintf("/api/records/%d/stop", started.Record.ID)
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, stopPath, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var stopped struct {
		Record struct {
			EndTime       string `json:"end_time"`
			ActualMinutes *int   `json:"actual_minutes"`
			IsCompleted   bool   `json:"is_completed"`
		} `json:"record"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stopped); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !stopped.Record.IsCompleted {
		t.Fatal("expected record to be completed")
	}
	if stopped.Record.EndTime == "" {
		t.Fatal("expected end_time to be set")
	}
	if stopped.Record.ActualMinutes == nil {
		t.Fatal("expected actual_minutes to be set")
	}

	// 二重終了は 400
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, stopPath, nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 on double stop, got %d", w.Code)
	}
}

func TestStopRecordOwnedByStranger(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	_, child := seedParentAndChild(t)
	stranger := seedUser(t, "stranger", "parent")

	start := "09:00:00"
	record := db.DailyRecord{
		UserID:     child.ID,
		RecordDate: localDate(2024, 1, 1),
		StartTime:  &start,
	}
	if err := db.DB.Create(&record).Error; err != nil {
		t.Fatalf("failed to seed record: %v", err)
	}

	r := newTestRouter(stranger.ID)
	r.POST("/api/records/:id/stop", api.StopRecord)

	w := httptest.NewRecorder()
	path := fmt.Sprintf("/api/records/%d/stop", record.ID)
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
}

func TestAddOffScheduleRecordViaHandler(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	parent, child := seedParentAndChild(t)

	r := newTestRouter(parent.ID)
	r.POST("/api/records/off-schedule", api.AddOffScheduleRecord)

	req := postJSON(t, map[string]any{
		"user_id":         child.ID,
		"date":            "2024-01-06",
		"category":        "chore",
		"subcategory":     "掃除",
		"task_type":       "部屋の掃除",
		"planned_minutes": 20,
		"actual_minutes":  20,
	}, "/api/records/off-schedule")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Record struct {
			ScheduledTaskID *uint `json:"scheduled_task_id"`
			ActualMinutes   *int  `json:"actual_minutes"`
			IsCompleted     bool  `json:"is_completed"`
		} `json:"record"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Record.ScheduledTaskID == nil {
		t.Fatal("expected a backing task to be created")
	}
	if resp.Record.ActualMinutes == nil || *resp.Record.ActualMinutes != 20 {
		t.Fatalf("expected actual_minutes 20, got %+v", resp.Record.ActualMinutes)
	}
	if !resp.Record.IsCompleted {
		t.Fatal("expected record to be completed")
	}

	// 補完されたタスクは土曜の週計画に載る
	var task db.ScheduledTask
	if err := db.DB.First(&task, *resp.Record.ScheduledTaskID).Error; err != nil {
		t.Fatalf("failed to load backing task: %v", err)
	}
	if task.DayOfWeek != 6 {
		t.Fatalf("expected day_of_week 6, got %d", task.DayOfWeek)
	}
	if got := task.WeekStart.Format("2006-01-02"); got != "2024-01-01" {
		t.Fatalf("expected week_start 2024-01-01, got %s", got)
	}
}
