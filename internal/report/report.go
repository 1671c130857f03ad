package report

import (
	"fmt"
	"math"
	"time"

	"github.com/timekids/internal/db"
)

// CategoryUnknown 用于归属不到任何预定任务分类的记录
const CategoryUnknown = "unknown"

const timeOfDayFormat = "15:04:05"

// TotalActualMinutes 汇总记录集合的实际分钟数，ActualMinutes 为空按 0 计
func TotalActualMinutes(records []db.DailyRecord) int {
	total := 0
	for _, r := range records {
		if r.ActualMinutes != nil {
			total += *r.ActualMinutes
		}
	}
	return total
}

// TotalPlannedMinutes 汇总任务集合的预定分钟数
func TotalPlannedMinutes(tasks []db.ScheduledTask) int {
	total := 0
	for _, t := range tasks {
		total += t.PlannedMinutes
	}
	return total
}

// IndexByTask 按关联任务 ID 对记录做一次分组预处理，
// 后续查找走索引而不是反复线性扫描。未关联任务的记录不入索引。
func IndexByTask(records []db.DailyRecord) map[uint][]db.DailyRecord {
	index := make(map[uint][]db.DailyRecord)
	for _, r := range records {
		if r.ScheduledTaskID == nil {
			continue
		}
		index[*r.ScheduledTaskID] = append(index[*r.ScheduledTaskID], r)
	}
	return index
}

// GroupByDate 按记录日期汇总实际分钟数，键为 ISO 日期字符串
func GroupByDate(records []db.DailyRecord) map[string]int {
	totals := make(map[string]int)
	for _, r := range records {
		if r.ActualMinutes == nil {
			continue
		}
		key := r.RecordDate.Format("2006-01-02")
		totals[key] += *r.ActualMinutes
	}
	return totals
}

// GroupByCategory 按关联任务的分类汇总实际分钟数。
// 记录本身不携带分类，需要通过任务表解析；找不到对应任务的记录归入 unknown。
func GroupByCategory(tasks []db.ScheduledTask, records []db.DailyRecord) map[string]int {
	categoryByTask := make(map[uint]string, len(tasks))
	for _, t := range tasks {
		categoryByTask[t.ID] = t.Category
	}

	totals := make(map[string]int)
	for _, r := range records {
		if r.ActualMinutes == nil {
			continue
		}
		category := CategoryUnknown
		if r.ScheduledTaskID != nil {
			if c, ok := categoryByTask[*r.ScheduledTaskID]; ok {
				category = c
			}
		}
		totals[category] += *r.ActualMinutes
	}
	return totals
}

// AchievementRate 计算达成率百分比，四舍五入；预定为 0 时返回 0，避免除零
func AchievementRate(totalActual, totalPlanned int) int {
	if totalPlanned <= 0 {
		return 0
	}
	return int(math.Round(float64(totalActual) / float64(totalPlanned) * 100))
}

// IntensityBucket 将单日实际分钟数映射为 0..4 的热力档位
// 分界：0 / 30 / 60 / 120
func IntensityBucket(minutes int) int {
	switch {
	case minutes <= 0:
		return 0
	case minutes < 30:
		return 1
	case minutes < 60:
		return 2
	case minutes < 120:
		return 3
	default:
		return 4
	}
}

// SessionMinutes 计算一次计时的分钟数（HH:mm:ss 字符串差值）。
// 差值为负时截断为 0，不做跨午夜回绕处理。
func SessionMinutes(startTime, endTime string) (int, error) {
	start, err := minuteOfDay(startTime)
	if err != nil {
		return 0, err
	}
	end, err := minuteOfDay(endTime)
	if err != nil {
		return 0, err
	}

	minutes := end - start
	if minutes < 0 {
		minutes = 0
	}
	return minutes, nil
}

// EndTimeAfter 根据开始时间与分钟数推算结束时间，小时按 24 取模回绕。
// 用于手工修正已完成记录时反推 EndTime。
func EndTimeAfter(startTime string, minutes int) (string, error) {
	t, err := time.Parse(timeOfDayFormat, startTime)
	if err != nil {
		return "", fmt.Errorf("parse start time: %w", err)
	}

	total := t.Hour()*60 + t.Minute() + minutes
	hour := (total / 60) % 24
	minute := total % 60

	return fmt.Sprintf("%02d:%02d:%02d", hour, minute, t.Second()), nil
}

func minuteOfDay(value string) (int, error) {
	t, err := time.Parse(timeOfDayFormat, value)
	if err != nil {
		return 0, fmt.Errorf("parse time of day: %w", err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
