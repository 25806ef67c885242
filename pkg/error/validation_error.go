package error

import "net/http"

// ValidationError carries the aggregated field errors of a rejected admin
// submission. The whole submission is rejected, nothing is partially saved.
type ValidationError string

func (err ValidationError) Error() string {
	return string(err)
}

func (err ValidationError) ErrCode() string {
	return "VALIDATION_ERROR"
}

func (err ValidationError) StatusCode() int {
	return http.StatusBadRequest
}
