package config

import "time"

type Security struct {
	ResendCooldown time.Duration `env:"RESEND_COOLDOWN" envDefault:"30s"`
	SecureCookies  bool          `env:"SECURE_COOKIES"  envDefault:"false"`
}

var _ SecurityConfig = Security{}

// GetResendCooldown is the minimum gap between verification code resends for one email
func (s Security) GetResendCooldown() time.Duration {
	return s.ResendCooldown
}

// GetSecureCookies forces the Secure flag on the session cookie even behind a TLS terminating proxy
func (s Security) GetSecureCookies() bool {
	return s.SecureCookies
}
