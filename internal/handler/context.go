package handler

type ContextKey string

var (
	RoleCtxKey    ContextKey = "role"
	SubCtxKey     ContextKey = "sub"
	MyInfoCtx     ContextKey = "myInfo"
	DoctorInfoCtx ContextKey = "doctorInfo"
	ClinicInfoCtx ContextKey = "clinicInfo"
	ScheduleCtx   ContextKey = "schedule"
	YearMonthCtx  ContextKey = "yearMonth"
)
