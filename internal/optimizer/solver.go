package optimizer

import (
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	"google.golang.org/protobuf/proto"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

// solution: 求解済みの割り当て
type solution struct {
	assignments []domain.Assignment
	objective   float64
	optimal     bool // 時間制限内に最適性が証明できなかった場合は false
}

// solve は構築済みモデルを時間制限付きで CP-SAT に渡し、割り当てを抽出する
// 時間切れでも実行可能解が見つかっていればそれを返す（最適性フラグは落とす）
// 実行不能の場合は InfeasibleError を返す
func (m *model) solve(profile Profile, timeLimit time.Duration) (*solution, error) {
	modelProto, err := m.builder.Model()
	if err != nil {
		return nil, fmt.Errorf("モデルの構築に失敗しました: %w", err)
	}

	params := &sppb.SatParameters{
		MaxTimeInSeconds: proto.Float64(timeLimit.Seconds()),
	}
	res, err := cpmodel.SolveCpModelWithParameters(modelProto, params)
	if err != nil {
		return nil, fmt.Errorf("ソルバーの実行に失敗しました: %w", err)
	}

	switch res.GetStatus() {
	case cmpb.CpSolverStatus_OPTIMAL, cmpb.CpSolverStatus_FEASIBLE:
		// 続行
	case cmpb.CpSolverStatus_INFEASIBLE:
		return nil, &InfeasibleError{Profile: profile}
	default:
		return nil, fmt.Errorf("ソルバーが異常終了しました: %s", res.GetStatus())
	}

	// スロットごとに割り当てられた医員を抽出
	assignments := make([]domain.Assignment, 0, len(m.p.slots))
	for i, slot := range m.p.slots {
		doctorIDs := []int64{}
		for _, did := range m.p.docIDs {
			if cpmodel.SolutionBooleanValue(res, m.vars[varKey{doctorID: did, slotIndex: i}]) {
				doctorIDs = append(doctorIDs, did)
			}
		}
		assignments = append(assignments, domain.Assignment{
			ClinicID:  slot.ClinicID,
			Date:      slot.Date,
			DoctorIDs: doctorIDs,
		})
	}

	return &solution{
		assignments: assignments,
		objective:   res.GetObjectiveValue(),
		optimal:     res.GetStatus() == cmpb.CpSolverStatus_OPTIMAL,
	}, nil
}
