package handler

const (
	errInternalServer     = "Internal server error"
	errUnauthorized       = "Unauthorized"
	errInvalidBody        = "Invalid request body"
	errInvalidCredentials = "Invalid email or password"
	errEmailTaken         = "User with given email already exists"
	errTodoTitleTaken     = "Todo with this title already exists"
	errWrongTodoID        = "Wrong todo id"

	msgResetEmailSent  = "If an account exists for that email, a reset link has been sent"
	msgResetInvalid    = "Password reset token is invalid or has expired."
	msgPasswordUpdated = "Your password has been updated."
	msgTodoCreated     = "Todo created successfully"
	msgTodoDeleted     = "Todo deleted successfully"
)
