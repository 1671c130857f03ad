package calendar

import (
	"fmt"
	"time"
)

// DateFormat 是全系统统一的日期序列化格式
const DateFormat = "2006-01-02"

// WeekStart 返回 d 所在周的周一（零点）。
// 周日视为一周的最后一天：weekday==0 时回退 6 天，否则回退 weekday-1 天。
func WeekStart(d time.Time) time.Time {
	day := truncateToDay(d)
	offset := 1 - int(day.Weekday())
	if day.Weekday() == time.Sunday {
		offset = -6
	}
	return day.AddDate(0, 0, offset)
}

// WeekEnd 返回 d 所在周的周日（周一 + 6 天）。
func WeekEnd(d time.Time) time.Time {
	return WeekStart(d).AddDate(0, 0, 6)
}

// MonthGrid 返回渲染月视图所需的全部日期：
// 从当月 1 号所在周的周一开始，到月末所在周的周日结束，长度恒为 7 的倍数。
func MonthGrid(ref time.Time) []time.Time {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	last := first.AddDate(0, 1, -1)

	start := WeekStart(first)
	end := WeekEnd(last)

	days := make([]time.Time, 0, 42)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ShiftWeek 以周为单位平移周起始日
func ShiftWeek(weekStart time.Time, deltaWeeks int) time.Time {
	return weekStart.AddDate(0, 0, deltaWeeks*7)
}

// ShiftMonth 以月为单位平移参考日期，跨年由 AddDate 处理
func ShiftMonth(ref time.Time, deltaMonths int) time.Time {
	return ref.AddDate(0, deltaMonths, 0)
}

// MonthBounds 返回 ref 所在月的首日与末日
func MonthBounds(ref time.Time) (time.Time, time.Time) {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	return first, first.AddDate(0, 1, -1)
}

// FormatHM 将分钟数格式化为 H:MM 展示字符串，例如 125 -> "2:05"。
func FormatHM(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// DateKey 返回日期的 ISO 字符串键
func DateKey(t time.Time) string {
	return t.Format(DateFormat)
}

// ParseDate 按本地时区解析 yyyy-MM-dd 字符串
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.Local)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
