package optimizer

import (
	"errors"
	"fmt"
)

// 入力検証エラー（モデル構築前に検出される）
var (
	ErrNoActiveDoctors   = errors.New("有効な医員が登録されていません")
	ErrNoActiveClinics   = errors.New("有効な外勤先が登録されていません")
	ErrNoTargetSaturdays = errors.New("対象月に土曜日（祝日除く）がありません")
	ErrNoOpenSlots       = errors.New("対象月に割り当て可能なスロットがありません")
	ErrUnknownDoctor     = errors.New("未登録または無効な医員を参照しています")
	ErrUnknownClinic     = errors.New("未登録または無効な外勤先を参照しています")
)

// InfeasibleError: ハード制約を満たす割り当てが存在しない
// あるプロファイルで発生しても他のプロファイルの求解は継続される
type InfeasibleError struct {
	Profile Profile
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("プロファイル %s: 制約を満たす割り当てが存在しません", e.Profile)
}
