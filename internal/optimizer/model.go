package optimizer

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

type varKey struct {
	doctorID  int64
	slotIndex int
}

// model: 1プロファイル分の 0-1 整数計画
type model struct {
	p       *problem
	builder *cpmodel.Builder
	vars    map[varKey]cpmodel.BoolVar
}

/**
 * buildModel は決定変数・ハード制約・重み付き目的関数を組み立てる
 *
 * 決定変数: x[医員, スロット] ∈ {0,1}
 * ハード制約:
 * 		1. 各スロットの割り当て人数 = 必要医員数（不足も過剰も実行不能として扱う）
 * 		2. 各医員は同一日に最大1外勤
 * 		3. NG日への割り当ては不可
 * 		4. ×外勤先への割り当ては不可
 * 		5. ◎外勤先には月1回以上（その月に開いているスロットがある場合のみ）
 * 目的関数（最小化）: 報酬ばらつき + 回数ばらつき − 希望・指名・優先度スコア + △日ペナルティ
 *
 * CP-SAT の係数は整数なので、絶対値の線形化で現れる平均（医員数 n で割る）を
 * 避けるため目的関数全体を n 倍している。偏差変数は |n×値 − 合計| を上下から挟み、
 * 割り当てごとの4項は係数を n 倍する。argmin は変わらない
 */
func buildModel(p *problem, w Weights) (*model, error) {
	builder := cpmodel.NewCpModelBuilder()
	n := int64(len(p.docIDs))

	// 決定変数
	vars := make(map[varKey]cpmodel.BoolVar, len(p.docIDs)*len(p.slots))
	for _, did := range p.docIDs {
		for i := range p.slots {
			vars[varKey{doctorID: did, slotIndex: i}] = builder.NewBoolVar()
		}
	}

	// 1. 各スロットに必要人数を割り当て
	for i, slot := range p.slots {
		fill := cpmodel.NewLinearExpr()
		for _, did := range p.docIDs {
			fill.Add(vars[varKey{doctorID: did, slotIndex: i}])
		}
		builder.AddEquality(fill, cpmodel.NewConstant(int64(slot.Required)))
	}

	// 2. 各医員は同一日に最大1外勤
	slotsByDate := map[string][]int{}
	for i, slot := range p.slots {
		slotsByDate[slot.Date] = append(slotsByDate[slot.Date], i)
	}
	for _, did := range p.docIDs {
		for _, indices := range slotsByDate {
			perDay := cpmodel.NewLinearExpr()
			for _, i := range indices {
				perDay.Add(vars[varKey{doctorID: did, slotIndex: i}])
			}
			builder.AddLessOrEqual(perDay, cpmodel.NewConstant(1))
		}
	}

	// 3. NG日と 4. ×外勤先は 0 に固定
	for _, did := range p.docIDs {
		for i, slot := range p.slots {
			if p.ngMap[did][slot.Date] || p.affinityLevel(did, slot.ClinicID) == domain.AffinityForbidden {
				builder.AddEquality(vars[varKey{doctorID: did, slotIndex: i}], cpmodel.NewConstant(0))
			}
		}
	}

	// 5. ◎外勤先には月1回以上
	slotsByClinic := map[int64][]int{}
	for i, slot := range p.slots {
		slotsByClinic[slot.ClinicID] = append(slotsByClinic[slot.ClinicID], i)
	}
	for _, did := range p.docIDs {
		for clinicID, indices := range slotsByClinic {
			if p.affinityLevel(did, clinicID) != domain.AffinityMandatory {
				continue
			}
			atLeastOnce := cpmodel.NewLinearExpr()
			for _, i := range indices {
				atLeastOnce.Add(vars[varKey{doctorID: did, slotIndex: i}])
			}
			builder.AddGreaterOrEqual(atLeastOnce, cpmodel.NewConstant(1))
		}
	}

	// 報酬がすべて 0 の場合は回数均等をメインにする
	allZeroFee := true
	for _, fee := range p.feeMap {
		if fee != 0 {
			allZeroFee = false
			break
		}
	}
	if allZeroFee {
		w.Variance = 0
	}

	// 各医員の報酬合計（前月までの累計込み）と外勤回数
	earnings := make(map[int64]*cpmodel.LinearExpr, len(p.docIDs))
	counts := make(map[int64]*cpmodel.LinearExpr, len(p.docIDs))
	for _, did := range p.docIDs {
		earn := cpmodel.NewLinearExpr().AddConstant(p.prev[did])
		cnt := cpmodel.NewLinearExpr()
		for i, slot := range p.slots {
			x := vars[varKey{doctorID: did, slotIndex: i}]
			earn.AddTerm(x, p.feeMap[slot.ClinicID])
			cnt.Add(x)
		}
		earnings[did] = earn
		counts[did] = cnt
	}

	totalEarnings := cpmodel.NewLinearExpr()
	totalCount := cpmodel.NewLinearExpr()
	var feeSum, prevMax, requiredSum int64
	for _, did := range p.docIDs {
		totalEarnings.Add(earnings[did])
		totalCount.Add(counts[did])
		if p.prev[did] > prevMax {
			prevMax = p.prev[did]
		}
	}
	for _, slot := range p.slots {
		feeSum += p.feeMap[slot.ClinicID] * int64(slot.Required)
		requiredSum += int64(slot.Required)
	}

	// ばらつき（線形化）: n×個別値 − 合計 = dev+ − dev−、dev± ≥ 0 を最小化
	payDevBound := n * (feeSum + prevMax + 1)
	cntDevBound := n * (requiredSum + 1)
	payDevSum := cpmodel.NewLinearExpr()
	cntDevSum := cpmodel.NewLinearExpr()
	for _, did := range p.docIDs {
		devP := builder.NewIntVar(0, payDevBound)
		devM := builder.NewIntVar(0, payDevBound)
		builder.AddEquality(
			cpmodel.NewLinearExpr().AddTerm(earnings[did], n).AddTerm(totalEarnings, -1),
			cpmodel.NewLinearExpr().Add(devP).AddTerm(devM, -1),
		)
		payDevSum.Add(devP).Add(devM)

		cntDevP := builder.NewIntVar(0, cntDevBound)
		cntDevM := builder.NewIntVar(0, cntDevBound)
		builder.AddEquality(
			cpmodel.NewLinearExpr().AddTerm(counts[did], n).AddTerm(totalCount, -1),
			cpmodel.NewLinearExpr().Add(cntDevP).AddTerm(cntDevM, -1),
		)
		cntDevSum.Add(cntDevP).Add(cntDevM)
	}

	// 割り当てごとのスコア項
	preferenceTerm := cpmodel.NewLinearExpr()
	nominationTerm := cpmodel.NewLinearExpr()
	priorityTerm := cpmodel.NewLinearExpr()
	avoidPenalty := cpmodel.NewLinearExpr()
	for _, did := range p.docIDs {
		for i, slot := range p.slots {
			x := vars[varKey{doctorID: did, slotIndex: i}]
			if p.prefClinics[did][slot.ClinicID] {
				preferenceTerm.Add(x)
			}
			if p.clinicPreferred[slot.ClinicID][did] {
				nominationTerm.Add(x)
			}
			priorityTerm.AddTerm(x, p.affinityWeight(did, slot.ClinicID))
			if p.avoidMap[did][slot.Date] {
				avoidPenalty.Add(x)
			}
		}
	}

	objective := cpmodel.NewLinearExpr().
		AddTerm(payDevSum, w.Variance).
		AddTerm(cntDevSum, w.CountVariance).
		AddTerm(preferenceTerm, n*w.Preference).
		AddTerm(nominationTerm, n*w.Nomination).
		AddTerm(priorityTerm, n*w.Priority).
		AddTerm(avoidPenalty, n*w.Avoid)
	builder.Minimize(objective)

	return &model{p: p, builder: builder, vars: vars}, nil
}
