package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timekids/internal/calendar"
	"github.com/timekids/internal/db"
	"github.com/timekids/internal/service"
)

// StartRecord 开始一次计时会话
func (a *API) StartRecord(c *gin.Context) {
	var payload struct {
		UserID          uint   `json:"user_id"`
		ScheduledTaskID *uint  `json:"scheduled_task_id"`
		Date            string `json:"date"`
	}
	if !bindJSON(c, &payload, "リクエストが不正です") {
		return
	}

	targetID, ok := a.resolveTarget(c, payload.UserID)
	if !ok {
		return
	}

	date := time.Now().In(time.Local)
	if payload.Date != "" {
		parsed, err := calendar.ParseDate(payload.Date)
		if err != nil {
			respondError(c, http.StatusBadRequest, "無効な日付です")
			return
		}
		date = parsed
	}

	record, err := a.records.Start(targetID, payload.ScheduledTaskID, date, time.Now().In(time.Local))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "記録の開始に失敗しました")
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": recordToPayload(*record)})
}

// StopRecord 结束一次计时会话
func (a *API) StopRecord(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "無効な記録IDです")
		return
	}

	existing, err := a.records.Get(id)
	if err != nil {
		handleRecordError(c, err)
		return
	}

	if !a.requireActOn(c, existing.UserID) {
		return
	}

	record, err := a.records.Stop(id, time.Now().In(time.Local))
	if err != nil {
		handleRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": recordToPayload(*record)})
}

// EditRecord 手工修正已完成记录的分钟数
func (a *API) EditRecord(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "無効な記録IDです")
		return
	}

	existing, err := a.records.Get(id)
	if err != nil {
		handleRecordError(c, err)
		return
	}

	if !a.requireActOn(c, existing.UserID) {
		return
	}

	var payload struct {
		ActualMinutes int `json:"actual_minutes"`
	}
	if !bindJSON(c, &payload, "リクエストが不正です") {
		return
	}

	record, err := a.records.EditMinutes(id, payload.ActualMinutes)
	if err != nil {
		handleRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": recordToPayload(*record)})
}

// AddOffScheduleRecord 登记计划外实绩（同时补建预定任务）
func (a *API) AddOffScheduleRecord(c *gin.Context) {
	var payload struct {
		UserID         uint   `json:"user_id"`
		Date           string `json:"date"`
		Category       string `json:"category"`
		Subcategory    string `json:"subcategory"`
		TaskType       string `json:"task_type"`
		PlannedMinutes int    `json:"planned_minutes"`
		ActualMinutes  int    `json:"actual_minutes"`
	}
	if !bindJSON(c, &payload, "リクエストが不正です") {
		return
	}

	targetID, ok := a.resolveTarget(c, payload.UserID)
	if !ok {
		return
	}

	date, err := calendar.ParseDate(payload.Date)
	if err != nil {
		respondError(c, http.StatusBadRequest, "無効な日付です")
		return
	}

	record, err := a.records.AddOffSchedule(service.OffScheduleInput{
		UserID:         targetID,
		Date:           date,
		Category:       payload.Category,
		Subcategory:    payload.Subcategory,
		TaskType:       payload.TaskType,
		PlannedMinutes: payload.PlannedMinutes,
		ActualMinutes:  payload.ActualMinutes,
	})
	if err != nil {
		handleRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": recordToPayload(*record)})
}

// ListRecords 返回目标用户日期区间内的记录
func (a *API) ListRecords(c *gin.Context) {
	targetID, ok := a.resolveTargetUser(c, c.Query("user_id"))
	if !ok {
		return
	}

	from, ok := parseDateQuery(c, "from")
	if !ok {
		respondError(c, http.StatusBadRequest, "無効な開始日です")
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		respondError(c, http.StatusBadRequest, "無効な終了日です")
		return
	}

	records, err := a.records.ListRange(targetID, from, to)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "記録の取得に失敗しました")
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, record := range records {
		items = append(items, recordToPayload(record))
	}

	c.JSON(http.StatusOK, gin.H{"records": items})
}

// DeleteRecord 删除一条记录
func (a *API) DeleteRecord(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "無効な記録IDです")
		return
	}

	existing, err := a.records.Get(id)
	if err != nil {
		handleRecordError(c, err)
		return
	}

	if !a.requireActOn(c, existing.UserID) {
		return
	}

	if err := a.records.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "記録の削除に失敗しました")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func recordToPayload(record db.DailyRecord) gin.H {
	item := gin.H{
		"id":           record.ID,
		"user_id":      record.UserID,
		"record_date":  calendar.DateKey(record.RecordDate),
		"is_completed": record.IsCompleted,
	}
	if record.ScheduledTaskID != nil {
		item["scheduled_task_id"] = *record.ScheduledTaskID
	}
	if record.StartTime != nil {
		item["start_time"] = *record.StartTime
	}
	if record.EndTime != nil {
		item["end_time"] = *record.EndTime
	}
	if record.ActualMinutes != nil {
		item["actual_minutes"] = *record.ActualMinutes
	}
	return item
}

func handleRecordError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "記録が見つかりません")
	case errors.Is(err, service.ErrRecordNotActive):
		respondError(c, http.StatusBadRequest, "進行中の記録ではありません")
	case errors.Is(err, service.ErrRecordNotCompleted):
		respondError(c, http.StatusBadRequest, "完了した記録のみ修正できます")
	case errors.Is(err, service.ErrInvalidMinutes):
		respondError(c, http.StatusBadRequest, "時間は1分以上で入力してください")
	case errors.Is(err, service.ErrInvalidTask):
		respondError(c, http.StatusBadRequest, "タスクの内容が不正です")
	default:
		respondError(c, http.StatusInternalServerError, "操作に失敗しました")
	}
}
