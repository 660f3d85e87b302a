package domain

import "time"

// DateOverride: 外勤先×日付ごとの必要医員数の例外設定
// 0 = 休診（スロットを生成しない）、2 = 2人体制
// 1 は通常運用と同義なので保存しなくてもよい
type DateOverride struct {
	ID              int64     `json:"id"`
	ClinicID        int64     `json:"clinicID"`
	Date            string    `json:"date"`
	RequiredDoctors int32     `json:"requiredDoctors"`
	CreatedAt       time.Time `json:"createdAt"`
	Version         int32     `json:"-"`
}
