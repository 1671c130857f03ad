package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timekids/internal/calendar"
	"github.com/timekids/internal/service"
)

// GetDailyReport 返回目标用户某一天的达成概要
func (a *API) GetDailyReport(c *gin.Context) {
	targetID, ok := a.resolveTargetUser(c, c.Query("user_id"))
	if !ok {
		return
	}

	date, ok := parseDateQuery(c, "date")
	if !ok {
		respondError(c, http.StatusBadRequest, "無効な日付です")
		return
	}

	summary, err := a.reports.DaySummary(targetID, date)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "日次レポートの取得に失敗しました")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":             calendar.DateKey(summary.Date),
		"planned_minutes":  summary.PlannedMinutes,
		"actual_minutes":   summary.ActualMinutes,
		"achievement_rate": summary.AchievementRate,
		"planned_display":  calendar.FormatHM(summary.PlannedMinutes),
		"actual_display":   calendar.FormatHM(summary.ActualMinutes),
		"category_minutes": summary.CategoryMinutes,
	})
}

// GetWeeklyReport 返回目标用户一周的日别统计
func (a *API) GetWeeklyReport(c *gin.Context) {
	targetID, ok := a.resolveTargetUser(c, c.Query("user_id"))
	if !ok {
		return
	}

	ref, ok := parseDateQuery(c, "start")
	if !ok {
		respondError(c, http.StatusBadRequest, "無効な週開始日です")
		return
	}

	week, err := a.reports.WeekReport(targetID, ref)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "週次レポートの取得に失敗しました")
		return
	}

	days := make([]gin.H, 0, len(week.Days))
	for _, day := range week.Days {
		days = append(days, gin.H{
			"date":            calendar.DateKey(day.Date),
			"day_of_week":     day.DayOfWeek,
			"planned_minutes": day.PlannedMinutes,
			"actual_minutes":  day.ActualMinutes,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"week_start":       calendar.DateKey(week.WeekStart),
		"week_end":         calendar.DateKey(week.WeekEnd),
		"days":             days,
		"total_planned":    week.TotalPlanned,
		"total_actual":     week.TotalActual,
		"achievement_rate": week.AchievementRate,
		"planned_display":  calendar.FormatHM(week.TotalPlanned),
		"actual_display":   calendar.FormatHM(week.TotalActual),
	})
}

// GetMonthlyReport 返回目标用户一个月的热力网格与合计
func (a *API) GetMonthlyReport(c *gin.Context) {
	targetID, ok := a.resolveTargetUser(c, c.Query("user_id"))
	if !ok {
		return
	}

	ref, ok := parseMonthQuery(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "無効な月の指定です")
		return
	}

	month, err := a.reports.MonthReport(targetID, ref)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "月次レポートの取得に失敗しました")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"month_start":      calendar.DateKey(month.MonthStart),
		"month_end":        calendar.DateKey(month.MonthEnd),
		"cells":            monthCellsToPayload(month.Cells),
		"total_planned":    month.TotalPlanned,
		"total_actual":     month.TotalActual,
		"achievement_rate": month.AchievementRate,
		"planned_display":  calendar.FormatHM(month.TotalPlanned),
		"actual_display":   calendar.FormatHM(month.TotalActual),
		"has_prev_data":    month.HasPrevData,
		"has_next_data":    month.HasNextData,
	})
}

// parseMonthQuery 解析 month 参数（YYYY-MM），缺省时回退到当月
func parseMonthQuery(c *gin.Context) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query("month"))
	if raw == "" {
		now := time.Now().In(time.Local)
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local), true
	}

	t, err := time.ParseInLocation("2006-01", raw, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func monthCellsToPayload(cells []service.MonthCell) []gin.H {
	items := make([]gin.H, 0, len(cells))
	for _, cell := range cells {
		items = append(items, gin.H{
			"date":           calendar.DateKey(cell.Date),
			"in_month":       cell.InMonth,
			"actual_minutes": cell.ActualMinutes,
			"intensity":      cell.Intensity,
		})
	}
	return items
}
