package filters

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/signals-client/internal/utils"
)

// EncodeQueryString renders the shareable fields of s. Pagination is not included.
func EncodeQueryString(s State) string {
	var b strings.Builder
	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}

	if s.Date != "" {
		add("date", s.Date)
	}
	if q := utils.Value(s.Query); q != "" {
		add("q", q)
	}
	if len(s.Models) > 0 {
		add("models", strings.Join(s.Models, ","))
	}
	if len(s.Conditions) > 0 {
		add("condition", strings.Join(utils.ToStrings(s.Conditions), ","))
	}
	if strategyType := utils.Value(s.StrategyType); strategyType != "" {
		add("strategy_type", strategyType)
	}
	return b.String()
}

// ParseQueryString turns a query string (with or without the leading '?') into a patch.
// Malformed pairs are skipped.
func ParseQueryString(raw string) Patch {
	// ParseQuery keeps every well formed pair even when it reports an error.
	values, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))

	p := Patch{
		Date:         utils.NonEmptyPtr(values.Get("date")),
		Query:        utils.NonEmptyPtr(values.Get("q")),
		StrategyType: utils.NonEmptyPtr(values.Get("strategy_type")),
	}
	if models := values.Get("models"); models != "" {
		p.Models = splitList(models)
	}
	if condition := values.Get("condition"); condition != "" {
		tokens := splitList(condition)
		p.Conditions = make([]Condition, len(tokens))
		for i, token := range tokens {
			p.Conditions[i] = ParseCondition(token)
		}
	}
	return p
}

func splitList(s string) []string {
	out := []string{}
	for _, token := range strings.Split(s, ",") {
		if token != "" {
			out = append(out, token)
		}
	}
	return out
}
