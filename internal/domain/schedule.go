package domain

import "time"

// Assignment: 1スロット（外勤先×日付）への割り当て
// DoctorIDs の人数はスロットの必要医員数と常に一致する
type Assignment struct {
	ClinicID  int64   `json:"clinicID"`
	Date      string  `json:"date"`
	DoctorIDs []int64 `json:"doctorIDs"`
}

// Schedule: 1つの重みプロファイルで解いた月次スケジュール案
type Schedule struct {
	ID                int64        `json:"id"`
	YearMonth         string       `json:"yearMonth"`
	PlanName          string       `json:"planName"`
	Profile           string       `json:"profile"`
	Assignments       []Assignment `json:"assignments"`
	TotalVariance     float64      `json:"totalVariance"`
	SatisfactionScore float64      `json:"satisfactionScore"`
	IsOptimal         bool         `json:"isOptimal"`
	IsConfirmed       bool         `json:"isConfirmed"`
	CreatedAt         time.Time    `json:"createdAt"`
	Version           int32        `json:"-"`
}
