package optimizer

import (
	"time"

	holiday_jp "github.com/holiday-jp/holiday_jp-go"
)

// HolidayFunc: 祝日判定。テストでは差し替え可能
type HolidayFunc func(time.Time) bool

// JapaneseHolidays は日本の祝日カレンダーによる判定
func JapaneseHolidays(t time.Time) bool {
	return holiday_jp.IsHoliday(t)
}

// TargetSaturdays は指定月の土曜日（祝日除く）を昇順で返す
// すべての土曜が祝日の場合は空のスライスを返す（エラーではない）
func TargetSaturdays(year int, month time.Month, isHoliday HolidayFunc) []time.Time {
	if isHoliday == nil {
		isHoliday = JapaneseHolidays
	}

	saturdays := []time.Time{}
	for d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); d.Month() == month; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday && !isHoliday(d) {
			saturdays = append(saturdays, d)
		}
	}

	return saturdays
}
