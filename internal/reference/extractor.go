// Package reference extracts the session (event) reference from a public
// portal URL.
package reference

import (
	"net/url"
	"strings"

	"github.com/tjfontaine/rollcall-gateway/internal/domain"
)

// Query parameters read from portal URLs.
const (
	ParamSession = "reuniao"
	ParamItem    = "itemVotacao"
)

// Extract parses raw into a SessionReference. It performs no upstream calls.
func Extract(raw string) (domain.SessionReference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.SessionReference{}, domain.ErrValidation("missing URL")
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return domain.SessionReference{}, domain.ErrValidation("invalid URL")
	}

	q := u.Query()
	session := strings.TrimSpace(q.Get(ParamSession))
	if session == "" {
		return domain.SessionReference{}, domain.ErrValidation("missing session parameter")
	}

	return domain.SessionReference{
		SessionID: session,
		ItemIndex: strings.TrimSpace(q.Get(ParamItem)),
	}, nil
}
