package user

// Principal identifies the authenticated caller of protected endpoints.
type Principal struct {
	UserID string
	Email  string
}
