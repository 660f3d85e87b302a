package optimizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

func testClinic(id int64, freq domain.Frequency) *domain.Clinic {
	return &domain.Clinic{
		ID:        id,
		Name:      "外勤先",
		Fee:       50000,
		Frequency: freq,
		IsActive:  true,
	}
}

func slotDates(slots []Slot) []string {
	dates := []string{}
	for _, s := range slots {
		dates = append(dates, s.Date)
	}
	return dates
}

func TestBuildSlots_FrequencyFilter(t *testing.T) {
	// 2025年11月は土曜が5回ある
	saturdays := TargetSaturdays(2025, time.November, noHolidays)
	require.Len(t, saturdays, 5)

	cases := []struct {
		freq domain.Frequency
		want []string
	}{
		{domain.FrequencyWeekly, []string{"2025-11-01", "2025-11-08", "2025-11-15", "2025-11-22", "2025-11-29"}},
		{domain.FrequencyBiweeklyOdd, []string{"2025-11-01", "2025-11-15", "2025-11-29"}},
		{domain.FrequencyBiweeklyEven, []string{"2025-11-08", "2025-11-22"}},
		{domain.FrequencyFirstOnly, []string{"2025-11-01"}},
		{domain.FrequencyLastOnly, []string{"2025-11-29"}},
	}

	for _, tc := range cases {
		t.Run(string(tc.freq), func(t *testing.T) {
			slots := BuildSlots(saturdays, []*domain.Clinic{testClinic(1, tc.freq)}, nil)
			require.Equal(t, tc.want, slotDates(slots))
			for _, s := range slots {
				require.EqualValues(t, 1, s.Required)
			}
		})
	}
}

func TestBuildSlots_BiweeklyParity(t *testing.T) {
	// 隔週の奇偶は月内の土曜の 0 始まりインデックスで決まる（ISO 週番号は使わない）
	saturdays := TargetSaturdays(2025, time.November, noHolidays)

	odd := BuildSlots(saturdays, []*domain.Clinic{testClinic(1, domain.FrequencyBiweeklyOdd)}, nil)
	even := BuildSlots(saturdays, []*domain.Clinic{testClinic(1, domain.FrequencyBiweeklyEven)}, nil)

	require.Equal(t, []string{"2025-11-01", "2025-11-15", "2025-11-29"}, slotDates(odd))
	require.Equal(t, []string{"2025-11-08", "2025-11-22"}, slotDates(even))
}

func TestBuildSlots_Overrides(t *testing.T) {
	saturdays := TargetSaturdays(2025, time.October, noHolidays)
	clinic := testClinic(1, domain.FrequencyWeekly)

	t.Run("required 0 removes the slot", func(t *testing.T) {
		overrides := []*domain.DateOverride{
			{ClinicID: 1, Date: "2025-10-11", RequiredDoctors: 0},
		}
		slots := BuildSlots(saturdays, []*domain.Clinic{clinic}, overrides)

		require.Equal(t, []string{"2025-10-04", "2025-10-18", "2025-10-25"}, slotDates(slots))
	})

	t.Run("required 2 doubles the slot", func(t *testing.T) {
		overrides := []*domain.DateOverride{
			{ClinicID: 1, Date: "2025-10-18", RequiredDoctors: 2},
		}
		slots := BuildSlots(saturdays, []*domain.Clinic{clinic}, overrides)

		require.Len(t, slots, 4)
		for _, s := range slots {
			if s.Date == "2025-10-18" {
				require.EqualValues(t, 2, s.Required)
			} else {
				require.EqualValues(t, 1, s.Required)
			}
		}
	})

	t.Run("required 1 is the same as no override", func(t *testing.T) {
		overrides := []*domain.DateOverride{
			{ClinicID: 1, Date: "2025-10-04", RequiredDoctors: 1},
		}
		with := BuildSlots(saturdays, []*domain.Clinic{clinic}, overrides)
		without := BuildSlots(saturdays, []*domain.Clinic{clinic}, nil)

		require.Equal(t, without, with)
	})

	t.Run("override of another clinic is ignored", func(t *testing.T) {
		overrides := []*domain.DateOverride{
			{ClinicID: 99, Date: "2025-10-04", RequiredDoctors: 0},
		}
		slots := BuildSlots(saturdays, []*domain.Clinic{clinic}, overrides)

		require.Len(t, slots, 4)
	})
}

func TestBuildSlots_SkipsInactiveClinics(t *testing.T) {
	saturdays := TargetSaturdays(2025, time.October, noHolidays)
	inactive := testClinic(2, domain.FrequencyWeekly)
	inactive.IsActive = false

	slots := BuildSlots(saturdays, []*domain.Clinic{testClinic(1, domain.FrequencyWeekly), inactive}, nil)

	require.Len(t, slots, 4)
	for _, s := range slots {
		require.EqualValues(t, 1, s.ClinicID)
	}
}

func TestBuildSlots_Idempotent(t *testing.T) {
	saturdays := TargetSaturdays(2025, time.November, noHolidays)
	clinics := []*domain.Clinic{
		testClinic(1, domain.FrequencyWeekly),
		testClinic(2, domain.FrequencyBiweeklyEven),
	}
	overrides := []*domain.DateOverride{
		{ClinicID: 1, Date: "2025-11-08", RequiredDoctors: 2},
		{ClinicID: 2, Date: "2025-11-22", RequiredDoctors: 0},
	}

	first := BuildSlots(saturdays, clinics, overrides)
	second := BuildSlots(saturdays, clinics, overrides)

	require.Equal(t, first, second)
}
