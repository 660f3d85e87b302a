package optimizer

import (
	"math"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

// Stats: 求解済み割り当ての統計。入力と割り当てのみから決まる純粋な計算
type Stats struct {
	DoctorEarnings    map[int64]int64 `json:"doctorEarnings"` // 当月報酬 + 前月までの累計
	DoctorCounts      map[int64]int64 `json:"doctorCounts"`
	TotalVariance     float64         `json:"totalVariance"`     // 報酬の標準偏差
	SatisfactionScore float64         `json:"satisfactionScore"` // 割り当て1件あたりの満足度
}

// Evaluate は割り当ての統計を計算する公開エントリポイント
func Evaluate(in *Input, assignments []domain.Assignment) *Stats {
	return evaluate(in.newProblem(nil), assignments)
}

func evaluate(p *problem, assignments []domain.Assignment) *Stats {
	earnings := make(map[int64]int64, len(p.docIDs))
	counts := make(map[int64]int64, len(p.docIDs))
	for _, did := range p.docIDs {
		earnings[did] = p.prev[did]
		counts[did] = 0
	}

	// 満足度: 希望一致 + 指名一致 + 優先度スコア − △日該当
	satisfaction := 0.0
	totalAssigned := 0
	for _, a := range assignments {
		for _, did := range a.DoctorIDs {
			earnings[did] += p.feeMap[a.ClinicID]
			counts[did]++
			totalAssigned++

			if p.prefClinics[did][a.ClinicID] {
				satisfaction++
			}
			if p.clinicPreferred[a.ClinicID][did] {
				satisfaction++
			}
			satisfaction += float64(p.affinityWeight(did, a.ClinicID))
			if p.avoidMap[did][a.Date] {
				satisfaction--
			}
		}
	}

	// 報酬ばらつき（母標準偏差）
	variance := 0.0
	if len(earnings) > 0 {
		mean := 0.0
		for _, e := range earnings {
			mean += float64(e)
		}
		mean /= float64(len(earnings))

		for _, e := range earnings {
			variance += math.Pow(float64(e)-mean, 2)
		}
		variance = math.Sqrt(variance / float64(len(earnings)))
	}

	// 月の規模が違っても比較できるよう割り当て件数で正規化する
	score := 0.0
	if totalAssigned > 0 {
		score = satisfaction / float64(totalAssigned)
	}

	return &Stats{
		DoctorEarnings:    earnings,
		DoctorCounts:      counts,
		TotalVariance:     variance,
		SatisfactionScore: score,
	}
}
