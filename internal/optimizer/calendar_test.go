package optimizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func noHolidays(time.Time) bool { return false }

func TestTargetSaturdays(t *testing.T) {
	t.Run("returns every saturday of the month in order", func(t *testing.T) {
		saturdays := TargetSaturdays(2025, time.October, noHolidays)

		require.Len(t, saturdays, 4)
		want := []string{"2025-10-04", "2025-10-11", "2025-10-18", "2025-10-25"}
		for i, s := range saturdays {
			require.Equal(t, want[i], s.Format("2006-01-02"))
			require.Equal(t, time.Saturday, s.Weekday())
		}
	})

	t.Run("excludes holidays", func(t *testing.T) {
		isHoliday := func(d time.Time) bool {
			return d.Format("2006-01-02") == "2025-10-11"
		}
		saturdays := TargetSaturdays(2025, time.October, isHoliday)

		require.Len(t, saturdays, 3)
		for _, s := range saturdays {
			require.NotEqual(t, "2025-10-11", s.Format("2006-01-02"))
		}
	})

	t.Run("all saturdays being holidays yields an empty list", func(t *testing.T) {
		allHolidays := func(time.Time) bool { return true }
		saturdays := TargetSaturdays(2025, time.October, allHolidays)

		require.Empty(t, saturdays)
	})

	t.Run("is deterministic", func(t *testing.T) {
		first := TargetSaturdays(2025, time.November, noHolidays)
		second := TargetSaturdays(2025, time.November, noHolidays)

		require.Equal(t, first, second)
		require.Len(t, first, 5)
	})
}
