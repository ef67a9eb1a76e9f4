package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-library-web/backend"
	apperrors "github.com/jrsteele09/go-library-web/internal/errors"
	"github.com/jrsteele09/go-library-web/sessions"
	"github.com/jrsteele09/go-library-web/token"
	"github.com/jrsteele09/go-library-web/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Backend endpoints used by the auth flow
const (
	LoginPath    = "/api/auth/login"
	RegisterPath = "/api/auth/register"
	VerifyPath   = "/api/auth/verify"
	ResendPath   = "/api/auth/resend"
)

// DefaultResendCooldown is the minimum gap between two verification code resends for one email
const DefaultResendCooldown = 30 * time.Second

// State is the position of one auth flow submission
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateAuthenticated
	StateFailed
	StateNeedsVerification
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	case StateNeedsVerification:
		return "needs_verification"
	default:
		return "idle"
	}
}

// Outcome is the result of one auth flow operation, rendered by the presentation layer
type Outcome struct {
	State   State
	Message string            // User facing message, empty on plain success
	Email   string            // Normalised email to carry into the next view
	Fields  map[string]string // Field errors when validation failed
	Session sessions.Session  // Snapshot of the new session when Authenticated
	Err     error             // Underlying cause for Failed outcomes
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"pass"`
}

type loginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type resendRequest struct {
	Email string `json:"email"`
}

type resendLimiter struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// Service drives login, registration, verification and logout against the backend
// and records the resulting session in the store.
type Service struct {
	client         *backend.Client
	store          *sessions.Store
	resendCooldown time.Duration
	nowTime        func() time.Time

	inFlightMu sync.Mutex
	inFlight   map[string]struct{} // sessionID -> submission in progress

	limitersMu sync.Mutex
	limiters   map[string]*resendLimiter // normalised email -> limiter
}

// ServiceOption modifies a Service
type ServiceOption func(*Service)

// WithResendCooldown overrides DefaultResendCooldown
func WithResendCooldown(cooldown time.Duration) ServiceOption {
	return func(s *Service) {
		s.resendCooldown = cooldown
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// NewService creates the auth flow service
func NewService(client *backend.Client, store *sessions.Store, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[NewService] backend client is required")
	}
	if store == nil {
		return nil, errors.New("[NewService] session store is required")
	}

	s := &Service{
		client:         client,
		store:          store,
		resendCooldown: DefaultResendCooldown,
		nowTime:        time.Now,
		inFlight:       make(map[string]struct{}),
		limiters:       make(map[string]*resendLimiter),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Login validates the credentials, exchanges them for a token pair and saves the new session.
// A 403 from the backend means the account still needs verification.
func (s *Service) Login(ctx context.Context, sessionID string, credentials users.Credentials) Outcome {
	email := NormaliseEmail(credentials.Email)
	err := NewValidator().
		Required("email", email).Email("email", email).
		Required("password", credentials.Password).
		Err()
	if err != nil {
		return validationFailed(email, err)
	}

	release, ok := s.begin(sessionID)
	if !ok {
		return inFlight(email)
	}
	defer release()

	resp, err := s.post(ctx, LoginPath, loginRequest{Email: email, Password: credentials.Password})
	if err != nil {
		if backend.StatusCodeOf(err) == http.StatusForbidden {
			return Outcome{State: StateNeedsVerification, Message: MessageNotVerified, Email: email}
		}
		return failed(email, backend.MessageOf(err), err)
	}

	var tokens loginResponse
	if resp.Kind == backend.KindJSON {
		if err := resp.Decode(&tokens); err != nil {
			log.Err(err).Msg("Login response could not be decoded")
		}
	}
	if tokens.Token == "" {
		return failed(email, MessageTokenNotReceived, apperrors.ErrTokenNotReceived)
	}

	session, err := sessionFromTokens(tokens)
	if err != nil {
		log.Err(err).Msg("Login succeeded but the access token identity is unusable")
		return failed(email, MessageIdentityUnusable, err)
	}

	if err := s.store.Save(ctx, sessionID, session); err != nil {
		log.Err(err).Msg("Failed to save session after login")
		return failed(email, MessageSessionNotSaved, err)
	}

	return Outcome{State: StateAuthenticated, Email: email, Session: session}
}

// Register validates the sign up form and creates the account. The account must be verified
// before it can log in.
func (s *Service) Register(ctx context.Context, sessionID string, registration users.Registration) Outcome {
	registration = normaliseRegistration(registration)
	err := NewValidator().
		Required("nombre", registration.FirstName).Alphabetic("nombre", registration.FirstName).
		Required("apellido", registration.LastName).Alphabetic("apellido", registration.LastName).
		Required("cedula", registration.NationalID).Digits("cedula", registration.NationalID).
		Required("usuario", registration.Username).
		Required("email", registration.Email).Email("email", registration.Email).
		Required("telefono", registration.Phone).Digits("telefono", registration.Phone).
		Required("pass", registration.Password).Password("pass", registration.Password).
		Err()
	if err != nil {
		return validationFailed(registration.Email, err)
	}

	release, ok := s.begin(sessionID)
	if !ok {
		return inFlight(registration.Email)
	}
	defer release()

	if _, err := s.post(ctx, RegisterPath, registration); err != nil {
		return failed(registration.Email, backend.MessageOf(err), err)
	}
	return Outcome{State: StateNeedsVerification, Message: MessageRegistered, Email: registration.Email}
}

// Verify confirms an account with the emailed code
func (s *Service) Verify(ctx context.Context, sessionID, email, code string) Outcome {
	email = NormaliseEmail(email)
	code = NormaliseCode(code)
	err := NewValidator().
		Required("email", email).Email("email", email).
		Required("code", code).Code("code", code).
		Err()
	if err != nil {
		return validationFailed(email, err)
	}

	release, ok := s.begin(sessionID)
	if !ok {
		return inFlight(email)
	}
	defer release()

	if _, err := s.post(ctx, VerifyPath, verifyRequest{Email: email, Code: code}); err != nil {
		return failed(email, backend.MessageOf(err), err)
	}
	return Outcome{State: StateIdle, Message: MessageVerified, Email: email}
}

// Resend asks the backend to email a new verification code. Each email may resend at most
// once per cooldown; throttled requests never reach the backend.
func (s *Service) Resend(ctx context.Context, sessionID, email string) Outcome {
	email = NormaliseEmail(email)
	if err := NewValidator().Required("email", email).Email("email", email).Err(); err != nil {
		return validationFailed(email, err)
	}

	release, ok := s.begin(sessionID)
	if !ok {
		return inFlight(email)
	}
	defer release()

	if !s.allowResend(email) {
		return failed(email, MessageResendThrottled, apperrors.ErrResendThrottled)
	}

	if _, err := s.post(ctx, ResendPath, resendRequest{Email: email}); err != nil {
		return failed(email, backend.MessageOf(err), err)
	}
	return Outcome{State: StateNeedsVerification, Message: MessageCodeResent, Email: email}
}

// Logout removes every entry of the session
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return errors.Wrap(err, "[Service.Logout] store.Clear")
	}
	return nil
}

func (s *Service) post(ctx context.Context, path string, payload any) (backend.Response, error) {
	body, err := backend.JSONBody(payload)
	if err != nil {
		return backend.Response{}, errors.Wrapf(err, "[Service.post] encode %s", path)
	}
	return s.client.Do(ctx, path, backend.Options{Method: http.MethodPost, Body: body})
}

// State reports StateSubmitting while a submission for the session is in flight, otherwise StateIdle
func (s *Service) State(sessionID string) State {
	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return StateSubmitting
	}
	return StateIdle
}

// begin marks a submission in flight for the session. The returned func ends it.
func (s *Service) begin(sessionID string) (func(), bool) {
	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return nil, false
	}
	s.inFlight[sessionID] = struct{}{}
	return func() {
		s.inFlightMu.Lock()
		delete(s.inFlight, sessionID)
		s.inFlightMu.Unlock()
	}, true
}

func (s *Service) allowResend(email string) bool {
	now := s.nowTime()

	s.limitersMu.Lock()
	defer s.limitersMu.Unlock()

	// A limiter idle for a full cooldown is back to a full bucket and can be dropped
	for key, l := range s.limiters {
		if now.Sub(l.lastUsed) > s.resendCooldown {
			delete(s.limiters, key)
		}
	}

	l, ok := s.limiters[email]
	if !ok {
		l = &resendLimiter{limiter: rate.NewLimiter(rate.Every(s.resendCooldown), 1)}
		s.limiters[email] = l
	}
	l.lastUsed = now
	return l.limiter.AllowN(now, 1)
}

func sessionFromTokens(tokens loginResponse) (sessions.Session, error) {
	claims, err := token.Decode(tokens.Token)
	if err != nil {
		return sessions.Session{}, errors.Wrap(err, "[sessionFromTokens] token.Decode")
	}
	profile, err := claims.Identity()
	if err != nil {
		return sessions.Session{}, errors.Wrap(err, "[sessionFromTokens] claims.Identity")
	}
	return sessions.Authenticated(profile, tokens.Token, tokens.RefreshToken), nil
}

func normaliseRegistration(r users.Registration) users.Registration {
	r.FirstName = NormaliseName(r.FirstName)
	r.LastName = NormaliseName(r.LastName)
	r.NationalID = strings.TrimSpace(r.NationalID)
	r.Username = strings.TrimSpace(r.Username)
	r.Email = NormaliseEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	return r
}

func validationFailed(email string, err error) Outcome {
	outcome := Outcome{State: StateFailed, Message: MessageValidationFailed, Email: email, Err: err}
	var validationErr *ValidationError
	if apperrors.As(err, &validationErr) {
		outcome.Fields = validationErr.FieldMessages()
	}
	return outcome
}

func inFlight(email string) Outcome {
	return failed(email, MessageSubmissionInFlight, apperrors.ErrSubmissionInFlight)
}

func failed(email, message string, err error) Outcome {
	return Outcome{State: StateFailed, Message: message, Email: email, Err: err}
}
