package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

func TestEvaluate(t *testing.T) {
	in := newTestInput(
		[]*domain.Doctor{testDoctor(1, "医員1"), testDoctor(2, "医員2")},
		[]*domain.Clinic{
			{ID: 1, Name: "A病院", Fee: 10000, Frequency: domain.FrequencyWeekly, IsActive: true, PreferredDoctorIDs: []int64{2}},
		},
	)
	in.Preferences = []*domain.Preference{
		{DoctorID: 1, YearMonth: "2025-10", PreferredClinicIDs: []int64{1}, AvoidDates: []string{"2025-10-11"}},
	}
	in.PreviousEarnings = map[int64]int64{1: 30000}

	assignments := []domain.Assignment{
		{ClinicID: 1, Date: "2025-10-04", DoctorIDs: []int64{1}},
		{ClinicID: 1, Date: "2025-10-11", DoctorIDs: []int64{1}},
		{ClinicID: 1, Date: "2025-10-18", DoctorIDs: []int64{2}},
		{ClinicID: 1, Date: "2025-10-25", DoctorIDs: []int64{2}},
	}

	stats := Evaluate(in, assignments)

	t.Run("earnings include carry-over", func(t *testing.T) {
		require.EqualValues(t, 50000, stats.DoctorEarnings[1]) // 30000 + 2×10000
		require.EqualValues(t, 20000, stats.DoctorEarnings[2])
	})

	t.Run("counts per doctor", func(t *testing.T) {
		require.EqualValues(t, 2, stats.DoctorCounts[1])
		require.EqualValues(t, 2, stats.DoctorCounts[2])
	})

	t.Run("variance is the population standard deviation", func(t *testing.T) {
		// 値は {50000, 20000}、平均 35000 → 標準偏差 15000
		require.InDelta(t, 15000, stats.TotalVariance, 1e-9)
	})

	t.Run("satisfaction is normalized per assignment", func(t *testing.T) {
		// 医員1: 希望一致+1×2、優先度○+1×2、△日−1 = 4
		// 医員2: 指名+1×2、優先度○+1×2 = 4
		// 合計 8 を 4 割り当てで正規化 → 2.0
		require.InDelta(t, 2.0, stats.SatisfactionScore, 1e-9)
	})
}

func TestEvaluate_EmptyAssignments(t *testing.T) {
	in := newTestInput(
		[]*domain.Doctor{testDoctor(1, "医員1")},
		[]*domain.Clinic{{ID: 1, Name: "A病院", Fee: 10000, Frequency: domain.FrequencyWeekly, IsActive: true}},
	)

	stats := Evaluate(in, nil)

	require.Zero(t, stats.SatisfactionScore)
	require.Zero(t, stats.TotalVariance)
	require.EqualValues(t, 0, stats.DoctorCounts[1])
}

func TestEvaluate_IgnoresInactiveDoctors(t *testing.T) {
	inactive := testDoctor(2, "退職済み")
	inactive.IsActive = false
	in := newTestInput(
		[]*domain.Doctor{testDoctor(1, "医員1"), inactive},
		[]*domain.Clinic{{ID: 1, Name: "A病院", Fee: 10000, Frequency: domain.FrequencyWeekly, IsActive: true}},
	)

	stats := Evaluate(in, []domain.Assignment{
		{ClinicID: 1, Date: "2025-10-04", DoctorIDs: []int64{1}},
	})

	require.Len(t, stats.DoctorEarnings, 1)
	require.NotContains(t, stats.DoctorEarnings, int64(2))
}
