package domain

import "time"

// AffinityLevel: 医員と外勤先の相性（×・○・◎）
type AffinityLevel string

const (
	AffinityForbidden AffinityLevel = "forbidden" // × まったく行かない
	AffinityNeutral   AffinityLevel = "neutral"   // ○ 行くときもある
	AffinityMandatory AffinityLevel = "mandatory" // ◎ 月1回以上必ず行く
)

func (l AffinityLevel) IsValid() bool {
	switch l {
	case AffinityForbidden, AffinityNeutral, AffinityMandatory:
		return true
	}
	return false
}

// Weight: 目的関数で使う優先度スコア（×=0, ○=1, ◎=2）
func (l AffinityLevel) Weight() int64 {
	switch l {
	case AffinityForbidden:
		return 0
	case AffinityMandatory:
		return 2
	default:
		return 1
	}
}

type Affinity struct {
	DoctorID  int64         `json:"doctorID"`
	ClinicID  int64         `json:"clinicID"`
	Level     AffinityLevel `json:"level"`
	CreatedAt time.Time     `json:"createdAt"`
	Version   int32         `json:"-"`
}
