package domain

import "time"

// 日付は "2006-01-02"、対象月は "2006-01" 形式の文字列で扱う
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// Preference: 医員ごとの月次希望
// 同一 (医員, 対象月) への再提出は上書き（upsert）となる
type Preference struct {
	ID                 int64     `json:"id"`
	DoctorID           int64     `json:"doctorID"`
	YearMonth          string    `json:"yearMonth"`
	NGDates            []string  `json:"ngDates"`    // × 勤務不可（ハード制約）
	AvoidDates         []string  `json:"avoidDates"` // △ できれば避けたい（ソフト制約）
	PreferredClinicIDs []int64   `json:"preferredClinicIDs"`
	CreatedAt          time.Time `json:"createdAt"`
	Version            int32     `json:"-"`
}
