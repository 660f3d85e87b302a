package utils

import (
	"fmt"
	"slices"

	"github.com/hmatsu88yama/scheduler/internal/domain"
	"github.com/hmatsu88yama/scheduler/internal/optimizer"
)

type slotKey struct {
	clinicID int64
	date     string
}

// ValidateAssignmentsWithSlots は手動調整後の割り当てが当月のスロット構成と
// 一致しているかを確認する（スロットの過不足・必要人数・同一スロット内の重複）
func ValidateAssignmentsWithSlots(assignments []domain.Assignment, slots []optimizer.Slot) error {
	if len(assignments) != len(slots) {
		return fmt.Errorf("割り当て数がスロット数と一致しません（%d 件 / %d 枠）", len(assignments), len(slots))
	}

	required := make(map[slotKey]int32, len(slots))
	for _, slot := range slots {
		required[slotKey{slot.ClinicID, slot.Date}] = slot.Required
	}

	seen := make(map[slotKey]bool, len(assignments))
	for _, a := range assignments {
		key := slotKey{a.ClinicID, a.Date}

		req, ok := required[key]
		if !ok {
			return fmt.Errorf("外勤先 %d の %s は当月のスロットにありません", a.ClinicID, a.Date)
		}
		if seen[key] {
			return fmt.Errorf("外勤先 %d の %s の割り当てが重複しています", a.ClinicID, a.Date)
		}
		seen[key] = true

		if int32(len(a.DoctorIDs)) != req {
			return fmt.Errorf("外勤先 %d の %s は %d 人必要ですが %d 人割り当てられています", a.ClinicID, a.Date, req, len(a.DoctorIDs))
		}

		for i, doctorID := range a.DoctorIDs {
			if slices.Contains(a.DoctorIDs[:i], doctorID) {
				return fmt.Errorf("外勤先 %d の %s に医員 %d が重複して割り当てられています", a.ClinicID, a.Date, doctorID)
			}
		}
	}

	return nil
}

// ValidateAssignmentsWithDoctors はハード制約（在籍医員のみ・1日1件・勤務不可日・
// 相性×の外勤先）が手動調整後も守られているかを確認する
func ValidateAssignmentsWithDoctors(
	assignments []domain.Assignment,
	doctors []*domain.Doctor,
	preferences []*domain.Preference,
	affinities []*domain.Affinity,
) error {
	active := make(map[int64]bool, len(doctors))
	for _, doctor := range doctors {
		if doctor.IsActive {
			active[doctor.ID] = true
		}
	}

	ngDates := make(map[int64][]string, len(preferences))
	for _, pref := range preferences {
		ngDates[pref.DoctorID] = pref.NGDates
	}

	forbidden := make(map[[2]int64]bool)
	for _, aff := range affinities {
		if aff.Level == domain.AffinityForbidden {
			forbidden[[2]int64{aff.DoctorID, aff.ClinicID}] = true
		}
	}

	// 同一日に同じ医員が複数の外勤先に入っていないか
	byDate := make(map[string][]int64)

	for _, a := range assignments {
		for _, doctorID := range a.DoctorIDs {
			if !active[doctorID] {
				return fmt.Errorf("医員 %d は在籍していません", doctorID)
			}
			if slices.Contains(ngDates[doctorID], a.Date) {
				return fmt.Errorf("医員 %d は %s が勤務不可日です", doctorID, a.Date)
			}
			if forbidden[[2]int64{doctorID, a.ClinicID}] {
				return fmt.Errorf("医員 %d は外勤先 %d に割り当てできません（相性×）", doctorID, a.ClinicID)
			}
			if slices.Contains(byDate[a.Date], doctorID) {
				return fmt.Errorf("医員 %d が %s に複数の外勤先に割り当てられています", doctorID, a.Date)
			}
			byDate[a.Date] = append(byDate[a.Date], doctorID)
		}
	}

	return nil
}
