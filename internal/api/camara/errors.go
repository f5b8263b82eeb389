package camara

import (
	"errors"

	"github.com/tjfontaine/rollcall-gateway/internal/domain"
)

// ToDomainError converts a client error into a canonical upstream error,
// keeping status, address and body excerpt when the upstream answered.
func ToDomainError(message string, err error) *domain.Error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return derr
	}
	out := domain.ErrUpstream(message).WithCause(err)
	var se *StatusError
	if errors.As(err, &se) {
		out.WithUpstream(se.StatusCode, se.URL, se.Body)
	}
	return out
}
