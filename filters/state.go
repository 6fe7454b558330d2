// Package filters holds the signal list filter state shared by the screens and the deep link
// router, and its query string form.
package filters

import (
	"slices"

	"github.com/jrsteele09/signals-client/internal/utils"
)

// DefaultPageSize is the page size of a fresh filter state.
const DefaultPageSize = 20

// Condition joins adjacent models in a multi-model filter.
type Condition string

const (
	And Condition = "AND"
	Or  Condition = "OR"
)

// ParseCondition maps exactly "AND" to And and anything else to Or.
func ParseCondition(s string) Condition {
	if s == string(And) {
		return And
	}
	return Or
}

// State is the full filter state. Conditions always has len(Models)-1 entries (or none).
type State struct {
	Date         string
	Query        *string
	Models       []string
	Conditions   []Condition
	StrategyType *string
	Page         int
	PageSize     int
}

func (s State) clone() State {
	out := s
	out.Models = slices.Clone(s.Models)
	out.Conditions = slices.Clone(s.Conditions)
	if out.Models == nil {
		out.Models = []string{}
	}
	if out.Conditions == nil {
		out.Conditions = []Condition{}
	}
	if s.Query != nil {
		out.Query = utils.Ptr(*s.Query)
	}
	if s.StrategyType != nil {
		out.StrategyType = utils.Ptr(*s.StrategyType)
	}
	return out
}

// Patch is a partial update. Nil fields are left unchanged; a non-nil empty slice clears.
type Patch struct {
	Date         *string
	Query        *string
	Models       []string
	Conditions   []Condition
	StrategyType *string
	Page         *int
	PageSize     *int
}

func (p Patch) IsEmpty() bool {
	return p.Date == nil && p.Query == nil && p.Models == nil && p.Conditions == nil &&
		p.StrategyType == nil && p.Page == nil && p.PageSize == nil
}

// fitConditions sizes conditions for modelCount models. Missing entries repeat the first
// existing condition (Or when there is none); surplus entries are dropped.
func fitConditions(conditions []Condition, modelCount int) []Condition {
	if modelCount <= 1 {
		return []Condition{}
	}

	required := modelCount - 1
	if len(conditions) >= required {
		return slices.Clone(conditions[:required])
	}

	fill := Or
	if len(conditions) > 0 {
		fill = conditions[0]
	}
	out := make([]Condition, 0, required)
	out = append(out, conditions...)
	for len(out) < required {
		out = append(out, fill)
	}
	return out
}

// copyPtr detaches the store from pointers owned by callers.
func copyPtr(p *string) *string {
	if p == nil {
		return nil
	}
	return utils.Ptr(*p)
}
