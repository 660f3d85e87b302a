package optimizer

import (
	"time"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

// Slot: 外勤先×日付の勤務枠。必要医員数は常に 1 以上
type Slot struct {
	ClinicID int64
	Date     string
	Required int32
}

// clinicDates は外勤先の頻度区分に応じた対象土曜を返す
// 隔週の奇偶は月内の土曜の 0 始まりインデックスで決まる
// （biweekly_odd = 第1・3・5土曜、biweekly_even = 第2・4土曜）
func clinicDates(clinic *domain.Clinic, saturdays []time.Time) []time.Time {
	switch clinic.Frequency {
	case domain.FrequencyBiweeklyOdd:
		dates := []time.Time{}
		for i, s := range saturdays {
			if i%2 == 0 {
				dates = append(dates, s)
			}
		}
		return dates
	case domain.FrequencyBiweeklyEven:
		dates := []time.Time{}
		for i, s := range saturdays {
			if i%2 == 1 {
				dates = append(dates, s)
			}
		}
		return dates
	case domain.FrequencyFirstOnly:
		return saturdays[:min(1, len(saturdays))]
	case domain.FrequencyLastOnly:
		if len(saturdays) == 0 {
			return saturdays
		}
		return saturdays[len(saturdays)-1:]
	default:
		// weekly および未知の区分は毎週扱い
		return saturdays
	}
}

// BuildSlots は頻度フィルタと日別オーバーライドを適用してスロット一覧を生成する
// オーバーライド 0 は休診としてスロット自体を生成しない。入力が同じなら結果も同じ
func BuildSlots(saturdays []time.Time, clinics []*domain.Clinic, overrides []*domain.DateOverride) []Slot {
	required := make(map[int64]map[string]int32)
	for _, o := range overrides {
		if _, exists := required[o.ClinicID]; !exists {
			required[o.ClinicID] = map[string]int32{}
		}
		required[o.ClinicID][o.Date] = o.RequiredDoctors
	}

	slots := []Slot{}
	for _, c := range clinics {
		if !c.IsActive {
			continue
		}
		for _, d := range clinicDates(c, saturdays) {
			ds := d.Format(domain.DateLayout)
			req := int32(1)
			if r, exists := required[c.ID][ds]; exists {
				req = r
			}
			if req == 0 {
				continue // 休診
			}
			slots = append(slots, Slot{ClinicID: c.ID, Date: ds, Required: req})
		}
	}

	return slots
}
