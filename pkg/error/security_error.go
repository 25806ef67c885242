package error

import "net/http"

// SecurityError is returned for anti-forgery failures. The message stays
// generic on purpose; details go to the security event log only.
type SecurityError string

func (err SecurityError) Error() string {
	return string(err)
}

func (err SecurityError) ErrCode() string {
	return "SECURITY_ERROR"
}

func (err SecurityError) StatusCode() int {
	return http.StatusForbidden
}

type RateLimitError string

func (err RateLimitError) Error() string {
	return string(err)
}

func (err RateLimitError) ErrCode() string {
	return "RATE_LIMIT_ERROR"
}

func (err RateLimitError) StatusCode() int {
	return http.StatusTooManyRequests
}
