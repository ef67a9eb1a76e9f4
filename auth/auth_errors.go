package auth

// Messages carried by an Outcome for the presentation layer to display
const (
	MessageTokenNotReceived   = "authentication token not received"
	MessageIdentityUnusable   = "identity unusable"
	MessageSessionNotSaved    = "could not start your session, please try again"
	MessageSubmissionInFlight = "a submission is already in progress"
	MessageNotVerified        = "your account is not verified yet, enter the code sent to your email"
	MessageRegistered         = "account created, enter the code sent to your email"
	MessageVerified           = "account verified, you can now log in"
	MessageCodeResent         = "a new verification code was sent"
	MessageResendThrottled    = "please wait before requesting another code"
	MessageValidationFailed   = "please correct the highlighted fields"
)
