// Package normalize maps upstream vote entries onto the canonical VoteRow.
package normalize

import (
	"github.com/tjfontaine/rollcall-gateway/internal/domain"
	"github.com/tjfontaine/rollcall-gateway/internal/pkg/loose"
)

// entry is a vote entry reduced to the fields the table needs. Both
// legislator spellings have been seen upstream. The legislator objects stay
// untyped here and are decoded flat, so one bad field cannot drop the
// others.
type entry struct {
	DeputadoAlt map[string]any `mapstructure:"deputado_"`
	Deputado    map[string]any `mapstructure:"deputado"`
	TipoVoto    *string        `mapstructure:"tipoVoto"`
	Voto        *string        `mapstructure:"voto"`
}

type legislator struct {
	Nome         *string `mapstructure:"nome"`
	SiglaPartido *string `mapstructure:"siglaPartido"`
	Sigla        *string `mapstructure:"sigla"`
	SiglaUf      *string `mapstructure:"siglaUf"`
	Uf           *string `mapstructure:"uf"`
}

// Field precedence, first present value wins.
var (
	voteChoiceFields = []loose.Accessor[entry]{
		func(e entry) *string { return e.TipoVoto },
		func(e entry) *string { return e.Voto },
	}
	nameFields = []loose.Accessor[legislator]{
		func(l legislator) *string { return l.Nome },
	}
	partyFields = []loose.Accessor[legislator]{
		func(l legislator) *string { return l.SiglaPartido },
		func(l legislator) *string { return l.Sigla },
	}
	stateFields = []loose.Accessor[legislator]{
		func(l legislator) *string { return l.SiglaUf },
		func(l legislator) *string { return l.Uf },
	}
)

func (e entry) legislator() legislator {
	raw := e.DeputadoAlt
	if raw == nil {
		raw = e.Deputado
	}
	var l legislator
	if raw != nil {
		_ = loose.Decode(raw, &l)
	}
	return l
}

// Row normalizes one entry. Missing or unconvertible fields become "".
func Row(raw domain.RawVoteEntry) domain.VoteRow {
	var e entry
	// Partial decodes are expected; whatever converted is used.
	_ = loose.Decode(map[string]any(raw), &e)

	dep := e.legislator()
	return domain.VoteRow{
		Name:       loose.String(loose.First(dep, nameFields...)),
		VoteChoice: loose.String(loose.First(e, voteChoiceFields...)),
		Party:      loose.String(loose.First(dep, partyFields...)),
		State:      loose.String(loose.First(dep, stateFields...)),
	}
}

// Rows normalizes entries in order.
func Rows(raw []domain.RawVoteEntry) []domain.VoteRow {
	rows := make([]domain.VoteRow, len(raw))
	for i, r := range raw {
		rows[i] = Row(r)
	}
	return rows
}
