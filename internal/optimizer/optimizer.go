// Package optimizer は土曜外勤の割り当て最適化エンジン
// 医員・外勤先・月次希望・相性・日別オーバーライドから 0-1 整数計画を組み立て、
// 3つの重みプロファイルで比較可能なスケジュール案を生成する
// 入力はすべて値として受け取り内部状態を持たないため、月が異なれば並行呼び出しも安全
package optimizer

import (
	"fmt"
	"time"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

// Input: 1回の生成に必要な入力スナップショット。生成中は不変として扱う
type Input struct {
	Year             int
	Month            time.Month
	Doctors          []*domain.Doctor
	Clinics          []*domain.Clinic
	Preferences      []*domain.Preference
	Affinities       []*domain.Affinity
	Overrides        []*domain.DateOverride
	PreviousEarnings map[int64]int64 // 前月までの累計報酬（確定スケジュール由来）
	IsHoliday        HolidayFunc     // nil なら日本の祝日カレンダー
}

type pair struct {
	doctorID int64
	clinicID int64
}

// problem: モデル構築・評価で共用する導出済みマップ一式
type problem struct {
	doctors []*domain.Doctor
	docIDs  []int64
	slots   []Slot

	feeMap          map[int64]int64          // clinicID -> 報酬
	ngMap           map[int64]map[string]bool // doctorID -> NG日
	avoidMap        map[int64]map[string]bool // doctorID -> △日
	prefClinics     map[int64]map[int64]bool  // doctorID -> 希望外勤先
	clinicPreferred map[int64]map[int64]bool  // clinicID -> 指名医員
	affinity        map[pair]domain.AffinityLevel
	prev            map[int64]int64
}

func (in *Input) activeDoctors() []*domain.Doctor {
	doctors := []*domain.Doctor{}
	for _, d := range in.Doctors {
		if d.IsActive {
			doctors = append(doctors, d)
		}
	}
	return doctors
}

func (in *Input) activeClinics() []*domain.Clinic {
	clinics := []*domain.Clinic{}
	for _, c := range in.Clinics {
		if c.IsActive {
			clinics = append(clinics, c)
		}
	}
	return clinics
}

// validate は必要な入力が揃っているかをモデル構築前に確認する
// 希望・オーバーライドが無効な医員・外勤先を参照している場合もここで弾く
func (in *Input) validate(saturdays []time.Time) error {
	doctors := in.activeDoctors()
	clinics := in.activeClinics()

	if len(doctors) == 0 {
		return ErrNoActiveDoctors
	}
	if len(clinics) == 0 {
		return ErrNoActiveClinics
	}
	if len(saturdays) == 0 {
		return ErrNoTargetSaturdays
	}

	doctorSet := make(map[int64]bool, len(doctors))
	for _, d := range doctors {
		doctorSet[d.ID] = true
	}
	clinicSet := make(map[int64]bool, len(clinics))
	for _, c := range clinics {
		clinicSet[c.ID] = true
	}

	for _, p := range in.Preferences {
		if !doctorSet[p.DoctorID] {
			return fmt.Errorf("希望入力 (医員 %d): %w", p.DoctorID, ErrUnknownDoctor)
		}
		for _, cid := range p.PreferredClinicIDs {
			if !clinicSet[cid] {
				return fmt.Errorf("希望入力 (医員 %d, 外勤先 %d): %w", p.DoctorID, cid, ErrUnknownClinic)
			}
		}
	}
	for _, o := range in.Overrides {
		if !clinicSet[o.ClinicID] {
			return fmt.Errorf("日別設定 (外勤先 %d): %w", o.ClinicID, ErrUnknownClinic)
		}
	}

	return nil
}

func (in *Input) newProblem(slots []Slot) *problem {
	doctors := in.activeDoctors()
	clinics := in.activeClinics()

	p := &problem{
		doctors:         doctors,
		docIDs:          make([]int64, 0, len(doctors)),
		slots:           slots,
		feeMap:          make(map[int64]int64, len(clinics)),
		ngMap:           map[int64]map[string]bool{},
		avoidMap:        map[int64]map[string]bool{},
		prefClinics:     map[int64]map[int64]bool{},
		clinicPreferred: map[int64]map[int64]bool{},
		affinity:        map[pair]domain.AffinityLevel{},
		prev:            map[int64]int64{},
	}

	for _, d := range doctors {
		p.docIDs = append(p.docIDs, d.ID)
	}

	for _, c := range clinics {
		p.feeMap[c.ID] = c.Fee
		preferred := make(map[int64]bool, len(c.PreferredDoctorIDs))
		for _, did := range c.PreferredDoctorIDs {
			preferred[did] = true
		}
		p.clinicPreferred[c.ID] = preferred
	}

	for _, pref := range in.Preferences {
		ng := make(map[string]bool, len(pref.NGDates))
		for _, ds := range pref.NGDates {
			ng[ds] = true
		}
		avoid := make(map[string]bool, len(pref.AvoidDates))
		for _, ds := range pref.AvoidDates {
			avoid[ds] = true
		}
		clinics := make(map[int64]bool, len(pref.PreferredClinicIDs))
		for _, cid := range pref.PreferredClinicIDs {
			clinics[cid] = true
		}
		p.ngMap[pref.DoctorID] = ng
		p.avoidMap[pref.DoctorID] = avoid
		p.prefClinics[pref.DoctorID] = clinics
	}

	for _, a := range in.Affinities {
		p.affinity[pair{doctorID: a.DoctorID, clinicID: a.ClinicID}] = a.Level
	}

	for did, earned := range in.PreviousEarnings {
		p.prev[did] = earned
	}

	return p
}

// affinityWeight: 未設定の組は ○（中立）とみなす
func (p *problem) affinityWeight(doctorID, clinicID int64) int64 {
	if level, exists := p.affinity[pair{doctorID: doctorID, clinicID: clinicID}]; exists {
		return level.Weight()
	}
	return domain.AffinityNeutral.Weight()
}

func (p *problem) affinityLevel(doctorID, clinicID int64) domain.AffinityLevel {
	if level, exists := p.affinity[pair{doctorID: doctorID, clinicID: clinicID}]; exists {
		return level
	}
	return domain.AffinityNeutral
}
