package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Catalog
	RouteIndex = "/"

	// Auth Routes
	RouteLogin    = "/login"
	RouteLogout   = "/logout"
	RouteRegister = "/register"
	RouteVerify   = "/verify"
	RouteResend   = "/verify/resend"

	// Member Routes
	RouteCart           = "/cart"
	RouteCartAdd        = "/cart/add"
	RouteCartRemove     = "/cart/remove/{id}"
	RouteLoans          = "/loans"
	RouteProfile        = "/profile"

	// Admin Routes
	RouteAdmin           = "/admin"
	RouteAdminBooks      = "/admin/books"
	RouteAdminBook       = "/admin/books/{id}"
	RouteAdminBookDelete = "/admin/books/{id}/delete"
	RouteAdminLoanStatus = "/admin/loans/{id}/status"

	// Infrastructure
	RouteHealth = "/healthz"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
