package optimizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

const testTimeLimit = 10 * time.Second

func testDoctor(id int64, name string) *domain.Doctor {
	return &domain.Doctor{ID: id, Name: name, IsActive: true}
}

// 2025年10月（土曜4回）を対象にした基本入力
func newTestInput(doctors []*domain.Doctor, clinics []*domain.Clinic) *Input {
	return &Input{
		Year:      2025,
		Month:     time.October,
		Doctors:   doctors,
		Clinics:   clinics,
		IsHoliday: noHolidays,
	}
}

// スロット充足と1日1外勤の検査に使う共通ヘルパ
func requireValidAssignments(t *testing.T, sched *domain.Schedule, slots []Slot) {
	t.Helper()

	require.Len(t, sched.Assignments, len(slots))
	for i, a := range sched.Assignments {
		require.EqualValues(t, slots[i].Required, len(a.DoctorIDs), "スロットの人数が必要医員数と一致しない")
	}

	// 同一日に同じ医員が2回現れないこと
	seen := map[string]map[int64]bool{}
	for _, a := range sched.Assignments {
		if _, exists := seen[a.Date]; !exists {
			seen[a.Date] = map[int64]bool{}
		}
		for _, did := range a.DoctorIDs {
			require.False(t, seen[a.Date][did], "医員 %d が %s に複数回割り当てられている", did, a.Date)
			seen[a.Date][did] = true
		}
	}
}

func TestGeneratePlans_TwoDoctorsSplitEvenly(t *testing.T) {
	// 1外勤先(毎週, 10000円)×土曜4回、医員2人
	// → 4スロットを2回ずつに分ければ報酬ばらつきは 0 になる
	in := newTestInput(
		[]*domain.Doctor{testDoctor(1, "田中太郎"), testDoctor(2, "鈴木花子")},
		[]*domain.Clinic{{ID: 1, Name: "A総合病院", Fee: 10000, Frequency: domain.FrequencyWeekly, IsActive: true}},
	)

	plans, failures, err := GeneratePlans(in, testTimeLimit)
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Len(t, plans, 3)

	saturdays := TargetSaturdays(in.Year, in.Month, noHolidays)
	slots := BuildSlots(saturdays, in.Clinics, nil)
	require.Len(t, slots, 4)

	for _, plan := range plans {
		requireValidAssignments(t, plan, slots)
		require.True(t, plan.IsOptimal)

		counts := map[int64]int{}
		for _, a := range plan.Assignments {
			for _, did := range a.DoctorIDs {
				counts[did]++
			}
		}
		require.Equal(t, 2, counts[1])
		require.Equal(t, 2, counts[2])
		require.Zero(t, plan.TotalVariance)
	}
}

func TestGeneratePlans_NGDatesAreNeverAssigned(t *testing.T) {
	in := newTestInput(
		[]*domain.Doctor{testDoctor(1, "医員1"), testDoctor(2, "医員2")},
		[]*domain.Clinic{{ID: 1, Name: "外勤先", Fee: 50000, Frequency: domain.FrequencyWeekly, IsActive: true}},
	)
	in.Preferences = []*domain.Preference{
		{DoctorID: 1, YearMonth: "2025-10", NGDates: []string{"2025-10-04", "2025-10-25"}},
	}

	plans, failures, err := GeneratePlans(in, testTimeLimit)
	require.NoError(t, err)
	require.Empty(t, failures)

	for _, plan := range plans {
		for _, a := range plan.Assignments {
			if a.Date == "2025-10-04" || a.Date == "2025-10-25" {
				require.NotContains(t, a.DoctorIDs, int64(1))
			}
		}
	}
}

func TestGeneratePlans_ForbiddenClinicAcrossAllProfiles(t *testing.T) {
	in := newTestInput(
		[]*domain.Doctor{testDoctor(1, "医員1"), testDoctor(2, "医員2"), testDoctor(3, "医員3")},
		[]*domain.Clinic{
			{ID: 1, Name: "A病院", Fee: 50000, Frequency: domain.FrequencyWeekly, IsActive: true},
			{ID: 2, Name: "B医院", Fee: 30000, Frequency: domain.FrequencyWeekly, IsActive: true},
		},
	)
	in.Affinities = []*domain.Affinity{
		{DoctorID: 1, ClinicID: 1, Level: domain.AffinityForbidden},
	}

	plans, failures, err := GeneratePlans(in, testTimeLimit)
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Len(t, plans, 3)

	for _, plan := range plans {
		for _, a := range plan.Assignments {
			if a.ClinicID == 1 {
				require.NotContains(t, a.DoctorIDs, int64(1))
			}
		}
	}
}

func TestGeneratePlans_MandatoryClinicAssignedAtLeastOnce(t *testing.T) {
	in := newTestInput(
		[]*domain.Doctor{testDoctor(1, "医員1"), testDoctor(2, "医員2"), testDoctor(3, "医員3")},
		[]*domain.Clinic{
			{ID: 1, Name: "A病院", Fee: 50000, Frequency: domain.FrequencyWeekly, IsActive: true},
			{ID: 2, Name: "B医院", Fee: 30000, Frequency: domain.FrequencyFirstOnly, IsActive: true},
		},
	)
	in.Affinities = []*domain.Affinity{
		{DoctorID: 3, ClinicID: 2, Level: domain.AffinityMandatory},
	}

	plans, failures, err := GeneratePlans(in, testTimeLimit)
	require.NoError(t, err)
	require.Empty(t, failures)

	for _, plan := range plans {
		assigned := false
		for _, a := range plan.Assignments {
			if a.ClinicID == 2 {
				for _, did := range a.DoctorIDs {
					if did == 3 {
						assigned = true
					}
				}
			}
		}
		require.True(t, assigned, "◎の外勤先に一度も割り当てられていない: %s", plan.PlanName)
	}
}

func TestGeneratePlans_MandatoryConflictIsInfeasible(t *testing.T) {
	// 医員1は外勤先2(月1回のみ)が◎だが、その唯一の開催日がNG → 実行不能
	in := newTestInput(
		[]*domain.Doctor{testDoctor(1, "医員1"), testDoctor(2, "医員2")},
		[]*domain.Clinic{
			{ID: 1, Name: "A病院", Fee: 50000, Frequency: domain.FrequencyWeekly, IsActive: true},
			{ID: 2, Name: "B医院", Fee: 30000, Frequency: domain.FrequencyFirstOnly, IsActive: true},
		},
	)
	in.Affinities = []*domain.Affinity{
		{DoctorID: 1, ClinicID: 2, Level: domain.AffinityMandatory},
	}
	in.Preferences = []*domain.Preference{
		{DoctorID: 1, YearMonth: "2025-10", NGDates: []string{"2025-10-04"}},
	}

	plans, failures, err := GeneratePlans(in, testTimeLimit)
	require.NoError(t, err)
	require.Empty(t, plans)
	require.Len(t, failures, 3)

	for profile, ferr := range failures {
		var infeasible *InfeasibleError
		require.ErrorAs(t, ferr, &infeasible)
		require.Equal(t, profile, infeasible.Profile)
	}
}

func TestGeneratePlans_InputValidation(t *testing.T) {
	doctors := []*domain.Doctor{testDoctor(1, "医員1")}
	clinics := []*domain.Clinic{{ID: 1, Name: "A病院", Fee: 50000, Frequency: domain.FrequencyWeekly, IsActive: true}}

	t.Run("no active doctors", func(t *testing.T) {
		inactive := testDoctor(1, "医員1")
		inactive.IsActive = false
		in := newTestInput([]*domain.Doctor{inactive}, clinics)

		_, _, err := GeneratePlans(in, testTimeLimit)
		require.ErrorIs(t, err, ErrNoActiveDoctors)
	})

	t.Run("no active clinics", func(t *testing.T) {
		in := newTestInput(doctors, []*domain.Clinic{})

		_, _, err := GeneratePlans(in, testTimeLimit)
		require.ErrorIs(t, err, ErrNoActiveClinics)
	})

	t.Run("no target saturdays", func(t *testing.T) {
		in := newTestInput(doctors, clinics)
		in.IsHoliday = func(time.Time) bool { return true }

		_, _, err := GeneratePlans(in, testTimeLimit)
		require.ErrorIs(t, err, ErrNoTargetSaturdays)
	})

	t.Run("preference referencing an unknown doctor", func(t *testing.T) {
		in := newTestInput(doctors, clinics)
		in.Preferences = []*domain.Preference{{DoctorID: 99, YearMonth: "2025-10"}}

		_, _, err := GeneratePlans(in, testTimeLimit)
		require.ErrorIs(t, err, ErrUnknownDoctor)
	})

	t.Run("override referencing an unknown clinic", func(t *testing.T) {
		in := newTestInput(doctors, clinics)
		in.Overrides = []*domain.DateOverride{{ClinicID: 99, Date: "2025-10-04", RequiredDoctors: 2}}

		_, _, err := GeneratePlans(in, testTimeLimit)
		require.ErrorIs(t, err, ErrUnknownClinic)
	})

	t.Run("all slots closed by overrides", func(t *testing.T) {
		in := newTestInput(doctors, clinics)
		in.Overrides = []*domain.DateOverride{
			{ClinicID: 1, Date: "2025-10-04", RequiredDoctors: 0},
			{ClinicID: 1, Date: "2025-10-11", RequiredDoctors: 0},
			{ClinicID: 1, Date: "2025-10-18", RequiredDoctors: 0},
			{ClinicID: 1, Date: "2025-10-25", RequiredDoctors: 0},
		}

		_, _, err := GeneratePlans(in, testTimeLimit)
		require.ErrorIs(t, err, ErrNoOpenSlots)
	})
}

func TestGeneratePlans_DoubleStaffedSlot(t *testing.T) {
	in := newTestInput(
		[]*domain.Doctor{testDoctor(1, "医員1"), testDoctor(2, "医員2"), testDoctor(3, "医員3")},
		[]*domain.Clinic{{ID: 1, Name: "A病院", Fee: 50000, Frequency: domain.FrequencyWeekly, IsActive: true}},
	)
	in.Overrides = []*domain.DateOverride{
		{ClinicID: 1, Date: "2025-10-11", RequiredDoctors: 2},
	}

	plans, failures, err := GeneratePlans(in, testTimeLimit)
	require.NoError(t, err)
	require.Empty(t, failures)

	for _, plan := range plans {
		for _, a := range plan.Assignments {
			if a.Date == "2025-10-11" {
				require.Len(t, a.DoctorIDs, 2)
				require.NotEqual(t, a.DoctorIDs[0], a.DoctorIDs[1])
			} else {
				require.Len(t, a.DoctorIDs, 1)
			}
		}
	}
}

func TestSolve_ObjectiveIsDeterministic(t *testing.T) {
	// 同じ入力・同じプロファイルなら目的関数値は一致する
	// （同値の別解はあり得るので割り当てそのものは比較しない）
	in := newTestInput(
		[]*domain.Doctor{testDoctor(1, "医員1"), testDoctor(2, "医員2"), testDoctor(3, "医員3")},
		[]*domain.Clinic{
			{ID: 1, Name: "A病院", Fee: 80000, Frequency: domain.FrequencyWeekly, IsActive: true},
			{ID: 2, Name: "B医院", Fee: 45000, Frequency: domain.FrequencyBiweeklyOdd, IsActive: true},
		},
	)
	saturdays := TargetSaturdays(in.Year, in.Month, noHolidays)
	slots := BuildSlots(saturdays, in.Clinics, nil)
	p := in.newProblem(slots)

	objectives := []float64{}
	for i := 0; i < 2; i++ {
		m, err := buildModel(p, ProfileBalanced.Weights())
		require.NoError(t, err)

		sol, err := m.solve(ProfileBalanced, testTimeLimit)
		require.NoError(t, err)
		require.True(t, sol.optimal)
		objectives = append(objectives, sol.objective)
	}

	require.Equal(t, objectives[0], objectives[1])
}
