package seed

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/hmatsu88yama/scheduler/internal/domain"
	"github.com/hmatsu88yama/scheduler/internal/optimizer"
	"github.com/hmatsu88yama/scheduler/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// 医員20人（メールアドレスはローマ字表記から機械的に作る）
var doctorSeeds = []struct {
	Name  string
	Email string
}{
	{"田中太郎", "tanaka.taro@example.jp"},
	{"鈴木花子", "suzuki.hanako@example.jp"},
	{"佐藤一郎", "sato.ichiro@example.jp"},
	{"山田二郎", "yamada.jiro@example.jp"},
	{"高橋三郎", "takahashi.saburo@example.jp"},
	{"渡辺美咲", "watanabe.misaki@example.jp"},
	{"伊藤健太", "ito.kenta@example.jp"},
	{"中村由美", "nakamura.yumi@example.jp"},
	{"小林誠", "kobayashi.makoto@example.jp"},
	{"加藤恵", "kato.megumi@example.jp"},
	{"吉田裕子", "yoshida.yuko@example.jp"},
	{"山本大輔", "yamamoto.daisuke@example.jp"},
	{"松本直樹", "matsumoto.naoki@example.jp"},
	{"井上真理", "inoue.mari@example.jp"},
	{"木村拓也", "kimura.takuya@example.jp"},
	{"林和也", "hayashi.kazuya@example.jp"},
	{"斎藤早紀", "saito.saki@example.jp"},
	{"清水浩二", "shimizu.koji@example.jp"},
	{"山口亮", "yamaguchi.ryo@example.jp"},
	{"阿部綾乃", "abe.ayano@example.jp"},
}

// 外勤先10ヶ所
var clinicSeeds = []struct {
	Name      string
	Fee       int64
	Frequency domain.Frequency
}{
	{"A総合病院", 80000, domain.FrequencyWeekly},
	{"Bクリニック", 60000, domain.FrequencyWeekly},
	{"C医院", 50000, domain.FrequencyWeekly},
	{"D病院", 70000, domain.FrequencyBiweeklyOdd},
	{"E診療所", 45000, domain.FrequencyBiweeklyEven},
	{"F総合病院", 90000, domain.FrequencyWeekly},
	{"Gクリニック", 55000, domain.FrequencyBiweeklyOdd},
	{"H医院", 65000, domain.FrequencyWeekly},
	{"I病院", 75000, domain.FrequencyBiweeklyEven},
	{"J診療所", 40000, domain.FrequencyFirstOnly},
}

// SeedSampleData は医員20人・外勤先10ヶ所と指名・相性を投入する
// 乱数は固定シードなので何度流しても同じデータになる
func SeedSampleData(repo *repository.Repository, doctorPassword string) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(doctorPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("パスワードハッシュの生成に失敗しました", "error", err)
		return
	}

	doctors := make([]*domain.Doctor, 0, len(doctorSeeds))
	for _, ds := range doctorSeeds {
		doctor := &domain.Doctor{
			Name:         ds.Name,
			Email:        ds.Email,
			PasswordHash: string(passwordHash),
			IsActive:     true,
		}
		if err := repo.CreateDoctor(doctor); err != nil {
			slog.Error("医員の投入に失敗しました", "name", ds.Name, "error", err)
			continue
		}
		doctors = append(doctors, doctor)
	}

	rng := rand.New(rand.NewSource(42))

	levels := []domain.AffinityLevel{
		domain.AffinityForbidden,
		domain.AffinityMandatory,
	}

	cnt := 0
	for _, cs := range clinicSeeds {
		// 各外勤先に2〜3人の指名医員
		preferred := []int64{}
		for _, i := range rng.Perm(len(doctors))[:rng.Intn(2)+2] {
			preferred = append(preferred, doctors[i].ID)
		}

		clinic := &domain.Clinic{
			Name:               cs.Name,
			Fee:                cs.Fee,
			Frequency:          cs.Frequency,
			PreferredDoctorIDs: preferred,
			IsActive:           true,
		}
		if err := repo.CreateClinic(clinic); err != nil {
			slog.Error("外勤先の投入に失敗しました", "name", cs.Name, "error", err)
			continue
		}
		cnt++

		// 3割ほどの組み合わせに×か◎をつける
		for _, doctor := range doctors {
			if rng.Float64() >= 0.3 {
				continue
			}
			affinity := &domain.Affinity{
				DoctorID: doctor.ID,
				ClinicID: clinic.ID,
				Level:    levels[rng.Intn(len(levels))],
			}
			if err := repo.SetAffinity(affinity); err != nil {
				slog.Error("相性の投入に失敗しました", "doctor", doctor.Name, "clinic", clinic.Name, "error", err)
			}
		}
	}

	slog.Info("サンプルデータの投入が完了しました", "doctors", len(doctors), "clinics", cnt)
}

// SeedSamplePreferences は対象月のランダムな月次希望を全医員分投入する
func SeedSamplePreferences(repo *repository.Repository, yearMonth string) {
	month, err := time.Parse(domain.MonthLayout, yearMonth)
	if err != nil {
		slog.Error("対象月の形式が不正です", "yearMonth", yearMonth, "error", err)
		return
	}

	saturdays := optimizer.TargetSaturdays(month.Year(), month.Month(), nil)
	if len(saturdays) == 0 {
		slog.Error("対象月に勤務対象の土曜日がありません", "yearMonth", yearMonth)
		return
	}

	doctors, err := repo.GetAllDoctors(true)
	if err != nil {
		slog.Error("医員一覧の取得に失敗しました", "error", err)
		return
	}

	clinics, err := repo.GetAllClinics(true)
	if err != nil {
		slog.Error("外勤先一覧の取得に失敗しました", "error", err)
		return
	}

	rng := rand.New(rand.NewSource(42))

	cnt := 0
	for _, doctor := range doctors {
		dates := make([]string, len(saturdays))
		for i, d := range saturdays {
			dates[i] = d.Format(domain.DateLayout)
		}
		rng.Shuffle(len(dates), func(i, j int) { dates[i], dates[j] = dates[j], dates[i] })

		ng := dates[:rng.Intn(2)]
		avoid := dates[len(ng) : len(ng)+rng.Intn(2)]

		preferredClinics := []int64{}
		for _, i := range rng.Perm(len(clinics))[:rng.Intn(3)] {
			preferredClinics = append(preferredClinics, clinics[i].ID)
		}

		preference := &domain.Preference{
			DoctorID:           doctor.ID,
			YearMonth:          yearMonth,
			NGDates:            ng,
			AvoidDates:         avoid,
			PreferredClinicIDs: preferredClinics,
		}
		if err := repo.UpsertPreference(preference); err != nil {
			slog.Error("希望の投入に失敗しました", "doctor", doctor.Name, "error", err)
			continue
		}
		cnt++
	}

	slog.Info("月次希望の投入が完了しました", "yearMonth", yearMonth, "count", cnt)
}
