package server

// Route path constants
const (
	RouteIndex        = "/"
	RouteAuthLogin    = "/auth/login"
	RouteAuthCallback = "/auth/callback"
	RouteAuthMe       = "/auth/me"
	RouteHealth       = "/health"

	RouteStaticCSS = "/css/{file}"
)
