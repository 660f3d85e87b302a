package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type ResetPasswordMailData struct {
	DoctorName string `json:"doctorName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ConfirmedDuty struct {
	Date       string `json:"date"`
	ClinicName string `json:"clinicName"`
}

type ScheduleConfirmedMailData struct {
	DoctorName string          `json:"doctorName"`
	YearMonth  string          `json:"yearMonth"`
	Duties     []ConfirmedDuty `json:"duties"`
}
