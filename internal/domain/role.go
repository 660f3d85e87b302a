package domain

type Role string

const (
	RoleAdmin  Role = "admin"  // 医局の管理担当
	RoleDoctor Role = "doctor" // 医員
)
