package frontdoor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tjfontaine/rollcall-gateway/internal/domain"
)

// maxBodyBytes bounds request bodies; a URL and an id never come close.
const maxBodyBytes = 64 << 10

// voteRequest is the body of both endpoints. The override may arrive as a
// JSON string or number.
type voteRequest struct {
	URL            string          `json:"url"`
	VoteIDOverride json.RawMessage `json:"votoIdOverride,omitempty"`
}

func decodeRequest(r *http.Request) (rawURL, overrideID string, err error) {
	var req voteRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return "", "", domain.ErrValidation("invalid JSON body").WithCause(err)
	}
	overrideID, err = decodeOverride(req.VoteIDOverride)
	if err != nil {
		return "", "", err
	}
	return req.URL, overrideID, nil
}

func decodeOverride(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err == nil {
		return n.String(), nil
	}
	return "", domain.ErrValidation("votoIdOverride must be a string or a number")
}

type needChoiceBody struct {
	NeedChoice bool                `json:"needChoice"`
	Options    []domain.VoteOption `json:"options"`
}

type resolvedBody struct {
	VoteID string  `json:"idVotacao"`
	Title  *string `json:"titulo"`
}

func encodeNeedChoice(c domain.NeedsChoice) needChoiceBody {
	opts := c.Options
	if opts == nil {
		opts = []domain.VoteOption{}
	}
	return needChoiceBody{NeedChoice: true, Options: opts}
}

// ResolutionBody maps a resolution to its JSON shape.
func ResolutionBody(res domain.Resolution) (any, error) {
	switch r := res.(type) {
	case domain.Resolved:
		return resolvedBody{VoteID: r.VoteID, Title: r.Title}, nil
	case domain.NeedsChoice:
		return encodeNeedChoice(r), nil
	default:
		return nil, domain.ErrServer(fmt.Sprintf("unhandled resolution %T", res))
	}
}

// ListOutcomeBody maps a listing outcome to its JSON shape. Rows is never
// null.
func ListOutcomeBody(out domain.ListOutcome) (any, error) {
	switch o := out.(type) {
	case *domain.VoteListResult:
		if o.Rows == nil {
			o.Rows = []domain.VoteRow{}
		}
		return o, nil
	case domain.NeedsChoice:
		return encodeNeedChoice(o), nil
	default:
		return nil, domain.ErrServer(fmt.Sprintf("unhandled list outcome %T", out))
	}
}

// ErrorBody is the error shape: a human-readable message and its class.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes err as {message, type}. Errors outside the domain
// taxonomy are reported as server errors.
func WriteError(w http.ResponseWriter, err error) {
	derr := domain.AsError(err)
	writeJSON(w, derr.HTTPStatusCode(), NewErrorBody(derr))
}

// NewErrorBody renders err in the error shape.
func NewErrorBody(err error) ErrorBody {
	derr := domain.AsError(err)
	return ErrorBody{Message: derr.Detail(), Type: string(derr.Kind)}
}
