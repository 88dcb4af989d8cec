package domain

// Roles carried in bearer tokens issued by the auth collaborator.
const (
	RoleAdmin   = "ADMIN"
	RoleOps     = "OPS"
	RoleFinance = "FINANCE"
)
