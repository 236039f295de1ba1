package domain

const (
	RequesterIdCtxKey   = "atcloud-requesterId"
	RequesterRoleCtxKey = "atcloud-requesterRole"
)
