package resolver

import (
	"github.com/tjfontaine/rollcall-gateway/internal/domain"
	"github.com/tjfontaine/rollcall-gateway/internal/pkg/loose"
)

// candidate is one vote of an event listing, reduced to the fields the
// heuristics read.
type candidate struct {
	ID            *string `mapstructure:"id"`
	IDVotacao     *string `mapstructure:"idVotacao"`
	IDItem        *string `mapstructure:"id_item"`
	IDItemVotacao *string `mapstructure:"idItemVotacao"`
	Ordem         *string `mapstructure:"ordem"`
	Sequencial    *string `mapstructure:"sequencial"`
	Numero        *string `mapstructure:"numero"`
	Item          *string `mapstructure:"item"`
	Descricao     *string `mapstructure:"descricao"`
}

func decodeCandidate(rec map[string]any) candidate {
	var c candidate
	// Unconvertible fields stay nil.
	_ = loose.Decode(rec, &c)
	return c
}

type matchField struct {
	name string
	get  loose.Accessor[candidate]
}

// matchFields is the precedence order used to pair an item index with a
// listed vote.
var matchFields = []matchField{
	{"id", func(c candidate) *string { return c.ID }},
	{"idVotacao", func(c candidate) *string { return c.IDVotacao }},
	{"id_item", func(c candidate) *string { return c.IDItem }},
	{"idItemVotacao", func(c candidate) *string { return c.IDItemVotacao }},
	{"ordem", func(c candidate) *string { return c.Ordem }},
	{"sequencial", func(c candidate) *string { return c.Sequencial }},
	{"numero", func(c candidate) *string { return c.Numero }},
	{"item", func(c candidate) *string { return c.Item }},
}

// idFields yields the identifier a candidate resolves to.
var idFields = []loose.Accessor[candidate]{
	func(c candidate) *string { return c.ID },
	func(c candidate) *string { return c.IDVotacao },
}

func (c candidate) voteID() string {
	return loose.String(loose.First(c, idFields...))
}

func (c candidate) resolved() domain.Resolved {
	return domain.Resolved{
		VoteID: c.voteID(),
		Title:  domain.StringPtr(loose.String(c.Descricao)),
	}
}
