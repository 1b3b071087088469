package errs

// Shared error codes. 1xxx auth, 2xxx hub protocol, 3xxx storage.
var (
	ErrTokenInvalid  = NewCodeError(1001, "token invalid")
	ErrTokenExpired  = NewCodeError(1002, "token expired")
	ErrBadEvent      = NewCodeError(2001, "malformed event")
	ErrMessageSave   = NewCodeError(3001, "message save failed")
	ErrUserNotFound  = NewCodeError(3002, "user not found")
	ErrWorkspaceMiss = NewCodeError(3003, "workspace not found")
)
