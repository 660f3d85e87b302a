package utils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hmatsu88yama/scheduler/internal/domain"
	"github.com/hmatsu88yama/scheduler/internal/optimizer"
)

func testSlots() []optimizer.Slot {
	return []optimizer.Slot{
		{ClinicID: 1, Date: "2025-10-04", Required: 1},
		{ClinicID: 1, Date: "2025-10-11", Required: 1},
		{ClinicID: 2, Date: "2025-10-04", Required: 2},
	}
}

func testAssignments() []domain.Assignment {
	return []domain.Assignment{
		{ClinicID: 1, Date: "2025-10-04", DoctorIDs: []int64{101}},
		{ClinicID: 1, Date: "2025-10-11", DoctorIDs: []int64{102}},
		{ClinicID: 2, Date: "2025-10-04", DoctorIDs: []int64{102, 103}},
	}
}

func TestValidateAssignmentsWithSlots(t *testing.T) {
	slots := testSlots()

	t.Run("整合する割り当ては通る", func(t *testing.T) {
		require.NoError(t, ValidateAssignmentsWithSlots(testAssignments(), slots))
	})

	t.Run("スロット数の不一致", func(t *testing.T) {
		err := ValidateAssignmentsWithSlots(testAssignments()[:2], slots)
		require.ErrorContains(t, err, "スロット数と一致しません")
	})

	t.Run("存在しないスロット", func(t *testing.T) {
		as := testAssignments()
		as[1].Date = "2025-10-18"
		err := ValidateAssignmentsWithSlots(as, slots)
		require.ErrorContains(t, err, "スロットにありません")
	})

	t.Run("同一スロットの重複", func(t *testing.T) {
		as := testAssignments()
		as[1] = as[0]
		err := ValidateAssignmentsWithSlots(as, slots)
		require.ErrorContains(t, err, "重複しています")
	})

	t.Run("必要人数の不一致", func(t *testing.T) {
		as := testAssignments()
		as[2].DoctorIDs = []int64{102}
		err := ValidateAssignmentsWithSlots(as, slots)
		require.ErrorContains(t, err, "2 人必要")
	})

	t.Run("スロット内の医員重複", func(t *testing.T) {
		as := testAssignments()
		as[2].DoctorIDs = []int64{103, 103}
		err := ValidateAssignmentsWithSlots(as, slots)
		require.ErrorContains(t, err, "重複して割り当て")
	})
}

func TestValidateAssignmentsWithDoctors(t *testing.T) {
	doctors := []*domain.Doctor{
		{ID: 101, Name: "田中太郎", IsActive: true},
		{ID: 102, Name: "鈴木花子", IsActive: true},
		{ID: 103, Name: "佐藤一郎", IsActive: true},
		{ID: 104, Name: "山田二郎", IsActive: false},
	}
	preferences := []*domain.Preference{
		{DoctorID: 101, YearMonth: "2025-10", NGDates: []string{"2025-10-11"}},
	}
	affinities := []*domain.Affinity{
		{DoctorID: 103, ClinicID: 1, Level: domain.AffinityForbidden},
		{DoctorID: 102, ClinicID: 2, Level: domain.AffinityMandatory},
	}

	t.Run("ハード制約を満たす割り当ては通る", func(t *testing.T) {
		require.NoError(t, ValidateAssignmentsWithDoctors(testAssignments(), doctors, preferences, affinities))
	})

	t.Run("退職済みの医員", func(t *testing.T) {
		as := testAssignments()
		as[0].DoctorIDs = []int64{104}
		err := ValidateAssignmentsWithDoctors(as, doctors, preferences, affinities)
		require.ErrorContains(t, err, "在籍していません")
	})

	t.Run("勤務不可日", func(t *testing.T) {
		as := testAssignments()
		as[1].DoctorIDs = []int64{101}
		err := ValidateAssignmentsWithDoctors(as, doctors, preferences, affinities)
		require.ErrorContains(t, err, "勤務不可日")
	})

	t.Run("相性×の外勤先", func(t *testing.T) {
		as := testAssignments()
		as[0].DoctorIDs = []int64{103}
		err := ValidateAssignmentsWithDoctors(as, doctors, preferences, affinities)
		require.ErrorContains(t, err, "相性×")
	})

	t.Run("同一日の掛け持ち", func(t *testing.T) {
		as := testAssignments()
		as[0].DoctorIDs = []int64{102} // 102 は同日に外勤先2にも入っている
		err := ValidateAssignmentsWithDoctors(as, doctors, preferences, affinities)
		require.ErrorContains(t, err, "複数の外勤先")
	})
}
