package internal

const (
	COOKIE_TOKEN_NAME = "tutelliv_token"
	COOKIE_ROLE_NAME  = "tutelliv_role"
)
