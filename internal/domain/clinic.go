package domain

import "time"

// Frequency: 外勤先の開催頻度
type Frequency string

const (
	FrequencyWeekly       Frequency = "weekly"        // 毎週
	FrequencyBiweeklyOdd  Frequency = "biweekly_odd"  // 隔週（第1・3・5土曜）
	FrequencyBiweeklyEven Frequency = "biweekly_even" // 隔週（第2・4土曜）
	FrequencyFirstOnly    Frequency = "first_only"    // 月初の土曜のみ
	FrequencyLastOnly     Frequency = "last_only"     // 月末の土曜のみ
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweeklyOdd, FrequencyBiweeklyEven, FrequencyFirstOnly, FrequencyLastOnly:
		return true
	}
	return false
}

type Clinic struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Fee                int64     `json:"fee"` // 1日あたりの報酬（円）
	Frequency          Frequency `json:"frequency"`
	PreferredDoctorIDs []int64   `json:"preferredDoctorIDs"` // 外勤先からの指名医員
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
	Version            int32     `json:"-"`
}
