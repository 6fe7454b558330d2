package filters_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/signals-client/filters"
	"github.com/jrsteele09/signals-client/internal/utils"
)

func TestEncodeQueryString(t *testing.T) {
	state := filters.State{
		Date:         "2024-01-01",
		Query:        utils.Ptr("삼성 전자"),
		Models:       []string{"GPT4", "CLAUDE"},
		Conditions:   []filters.Condition{filters.And},
		StrategyType: utils.Ptr("swing"),
		Page:         3,
		PageSize:     50,
	}

	require.Equal(t,
		"date=2024-01-01&q=%EC%82%BC%EC%84%B1+%EC%A0%84%EC%9E%90&models=GPT4%2CCLAUDE&condition=AND&strategy_type=swing",
		filters.EncodeQueryString(state))

	require.Empty(t, filters.EncodeQueryString(filters.State{}))
}

func TestParseQueryString(t *testing.T) {
	p := filters.ParseQueryString("?date=2024-01-01&q=AAPL&models=GPT4,,CLAUDE,&condition=AND,and,OR,x&strategy_type=swing&page=9")

	require.Equal(t, "2024-01-01", *p.Date)
	require.Equal(t, "AAPL", *p.Query)
	require.Equal(t, []string{"GPT4", "CLAUDE"}, p.Models)
	require.Equal(t, []filters.Condition{filters.And, filters.Or, filters.Or, filters.Or}, p.Conditions)
	require.Equal(t, "swing", *p.StrategyType)
	require.Nil(t, p.Page)
}

func TestParseQueryString_EmptyValuesIgnored(t *testing.T) {
	p := filters.ParseQueryString("date=&q=&strategy_type=&symbol=AAPL")
	require.True(t, p.IsEmpty())

	require.True(t, filters.ParseQueryString("").IsEmpty())
}

func TestParseQueryString_OnlySeparators(t *testing.T) {
	p := filters.ParseQueryString("models=,,")
	require.NotNil(t, p.Models)
	require.Empty(t, p.Models)
}

func TestParseQueryString_MalformedPairSkipped(t *testing.T) {
	p := filters.ParseQueryString("q=%zz&date=2024-01-01")
	require.Nil(t, p.Query)
	require.Equal(t, "2024-01-01", *p.Date)
}

func TestQueryString_RoundTrip(t *testing.T) {
	states := []filters.State{
		{
			Date:         "2024-01-01",
			Query:        utils.Ptr("AAPL & co"),
			Models:       []string{"GPT4", "CLAUDE", "GEMINI"},
			Conditions:   []filters.Condition{filters.And, filters.Or},
			StrategyType: utils.Ptr("momentum"),
			Page:         7,
			PageSize:     10,
		},
		{Date: "2023-12-31", Models: []string{"GPT4"}},
	}

	for _, original := range states {
		p := filters.ParseQueryString(filters.EncodeQueryString(original))

		require.Equal(t, original.Date, *p.Date)
		require.Equal(t, original.Query, p.Query)
		require.Equal(t, original.Models, p.Models)
		require.Equal(t, original.StrategyType, p.StrategyType)
		if len(original.Conditions) == 0 {
			require.Nil(t, p.Conditions)
		} else {
			require.Equal(t, original.Conditions, p.Conditions)
		}
	}
}
