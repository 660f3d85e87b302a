package optimizer

import (
	"fmt"
	"time"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

// GeneratePlans は3つの重みプロファイルで独立にモデルを解き、比較可能な
// スケジュール案を生成する。各案の優劣判定は行わない（採用は利用者の判断）
//
// 戻り値:
//   - 求解できた案の一覧（プロファイル順）
//   - プロファイルごとの失敗（実行不能など）。1案の失敗は他の案の求解を妨げない
//   - 入力検証エラー。これが非 nil の場合モデルは一切構築されない
func GeneratePlans(in *Input, timeLimit time.Duration) ([]*domain.Schedule, map[Profile]error, error) {
	saturdays := TargetSaturdays(in.Year, in.Month, in.IsHoliday)
	if err := in.validate(saturdays); err != nil {
		return nil, nil, err
	}

	slots := BuildSlots(saturdays, in.Clinics, in.Overrides)
	if len(slots) == 0 {
		return nil, nil, ErrNoOpenSlots
	}

	p := in.newProblem(slots)
	yearMonth := fmt.Sprintf("%04d-%02d", in.Year, int(in.Month))

	schedules := []*domain.Schedule{}
	failures := map[Profile]error{}
	for _, profile := range Profiles {
		m, err := buildModel(p, profile.Weights())
		if err != nil {
			failures[profile] = err
			continue
		}

		sol, err := m.solve(profile, timeLimit)
		if err != nil {
			failures[profile] = err
			continue
		}

		stats := evaluate(p, sol.assignments)
		schedules = append(schedules, &domain.Schedule{
			YearMonth:         yearMonth,
			PlanName:          profile.PlanName(),
			Profile:           string(profile),
			Assignments:       sol.assignments,
			TotalVariance:     stats.TotalVariance,
			SatisfactionScore: stats.SatisfactionScore,
			IsOptimal:         sol.optimal,
		})
	}

	return schedules, failures, nil
}
