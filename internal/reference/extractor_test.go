package reference

import (
	"testing"

	"github.com/tjfontaine/rollcall-gateway/internal/domain"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.SessionReference
		wantErr string
	}{
		{
			name:  "session and item",
			input: "https://www.camara.leg.br/presenca-comissoes/votacao-portal?reuniao=71234&itemVotacao=2",
			want:  domain.SessionReference{SessionID: "71234", ItemIndex: "2"},
		},
		{
			name:  "session only",
			input: "https://www.camara.leg.br/presenca-comissoes/votacao-portal?reuniao=71234",
			want:  domain.SessionReference{SessionID: "71234"},
		},
		{
			name:  "surrounding whitespace",
			input: "  https://www.camara.leg.br/x?itemVotacao=9&reuniao=55 \n",
			want:  domain.SessionReference{SessionID: "55", ItemIndex: "9"},
		},
		{
			name:    "empty input",
			input:   "   ",
			wantErr: "missing URL",
		},
		{
			name:    "not a URL",
			input:   "reuniao=71234",
			wantErr: "invalid URL",
		},
		{
			name:    "missing host",
			input:   "/votacao?reuniao=1",
			wantErr: "invalid URL",
		},
		{
			name:    "unparseable",
			input:   "http://[::1]:namedport?reuniao=1",
			wantErr: "invalid URL",
		},
		{
			name:    "missing session parameter",
			input:   "https://www.camara.leg.br/x?itemVotacao=2",
			wantErr: "missing session parameter",
		},
		{
			name:    "blank session parameter",
			input:   "https://www.camara.leg.br/x?reuniao=&itemVotacao=2",
			wantErr: "missing session parameter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.input)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Extract() error = nil, want %q", tt.wantErr)
				}
				derr := domain.AsError(err)
				if derr.Kind != domain.ErrorKindValidation {
					t.Errorf("Extract() kind = %q, want %q", derr.Kind, domain.ErrorKindValidation)
				}
				if derr.Message != tt.wantErr {
					t.Errorf("Extract() message = %q, want %q", derr.Message, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
