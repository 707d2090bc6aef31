package domain

type ctxKey string

const (
	RequesterIdCtxKey ctxKey = "ss-requesterId"
)

const (
	RequesterIdHeader = "ss-requester-id"
)
