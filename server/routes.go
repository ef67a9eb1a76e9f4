package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-library-web/guard"
	"github.com/jrsteele09/go-library-web/server/ui"
	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	public := s.HTMLMiddleWare(s.RequireSession(guard.None))
	member := s.HTMLMiddleWare(s.NoCacheMiddleware, s.RequireSession(guard.Authenticated))
	admin := s.HTMLMiddleWare(s.NoCacheMiddleware, s.RequireSession(guard.Admin))

	s.RegisterRouteHandler("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), public...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), public...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), public...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), public...))

	// SIGN UP & VERIFICATION
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.SignupGetHandler(), public...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.SignupPostHandler(), public...))
	s.RegisterRouteHandler("GET "+RouteVerify, ChainMiddleware(s.VerifyGetHandler(), public...))
	s.RegisterRouteHandler("POST "+RouteVerify, ChainMiddleware(s.VerifyPostHandler(), public...))
	s.RegisterRouteHandler("POST "+RouteResend, ChainMiddleware(s.ResendVerificationHandler(), public...))

	// Member routes
	s.RegisterRouteHandler("GET "+RouteCart, ChainMiddleware(s.CartHandler(), member...))
	s.RegisterRouteHandler("POST "+RouteCartAdd, ChainMiddleware(s.AddToCartHandler(), member...))
	s.RegisterRouteHandler("POST "+RouteCartRemove, ChainMiddleware(s.RemoveFromCartHandler(), member...))
	s.RegisterRouteHandler("GET "+RouteLoans, ChainMiddleware(s.LoansHandler(), member...))
	s.RegisterRouteHandler("POST "+RouteLoans, ChainMiddleware(s.RequestLoanHandler(), member...))
	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.ProfileHandler(), member...))

	// Admin routes
	s.RegisterRouteHandler("GET "+RouteAdmin, ChainMiddleware(s.AdminDashboardHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminBooks, ChainMiddleware(s.AdminCreateBookHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminBook, ChainMiddleware(s.AdminUpdateBookHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminBookDelete, ChainMiddleware(s.AdminDeleteBookHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminLoanStatus, ChainMiddleware(s.AdminLoanStatusHandler(), admin...))

	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteHandler("/", ChainMiddleware(s.NotFoundHandler(), s.HTMLMiddleWare()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			logError(r.Method, filePath, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}

func logError(method, path, error string) {
	log.Warn().Msgf("[%-19s] %s %s", displayMethod(method), path, ui.Red+error+ui.ResetColor)
}
