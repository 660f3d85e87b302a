package optimizer

// Profile: 目的関数の重みプロファイル
type Profile string

const (
	ProfileBalanced   Profile = "balanced"   // 給与ばらつき最小化を重視
	ProfilePreference Profile = "preference" // 医員の希望を重視
	ProfileAffinity   Profile = "affinity"   // 相性（◎○×）を重視
)

// Profiles: 1回の生成で解く3つのプロファイル（この順で求解する）
var Profiles = []Profile{ProfileBalanced, ProfilePreference, ProfileAffinity}

// Weights: 目的関数の6項の係数。負の係数は報酬（最小化なので奨励）を表す
// グローバル変数ではなく値としてモデル構築に渡す
type Weights struct {
	Variance      int64 // 報酬ばらつき
	Preference    int64 // 医員希望外勤先
	Nomination    int64 // 外勤先指名医員
	Priority      int64 // 優先度(◎○×)
	Avoid         int64 // △日ペナルティ
	CountVariance int64 // 回数均等
}

func (p Profile) Weights() Weights {
	switch p {
	case ProfileBalanced:
		return Weights{Variance: 10, Preference: -1, Nomination: -2, Priority: -1, Avoid: 3, CountVariance: 5}
	case ProfilePreference:
		return Weights{Variance: 2, Preference: -5, Nomination: -3, Priority: -2, Avoid: 3, CountVariance: 3}
	case ProfileAffinity:
		return Weights{Variance: 2, Preference: -2, Nomination: -2, Priority: -5, Avoid: 3, CountVariance: 3}
	default:
		return Weights{Variance: 5, Preference: -2, Nomination: -2, Priority: -2, Avoid: 3, CountVariance: 5}
	}
}

func (p Profile) PlanName() string {
	switch p {
	case ProfileBalanced:
		return "案A: 給与均等重視"
	case ProfilePreference:
		return "案B: 希望重視"
	case ProfileAffinity:
		return "案C: 優先度重視"
	default:
		return "案: " + string(p)
	}
}
