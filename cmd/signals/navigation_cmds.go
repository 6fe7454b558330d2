package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/signals-client/app"
	"github.com/jrsteele09/signals-client/deeplink"
	"github.com/jrsteele09/signals-client/filters"
	"github.com/jrsteele09/signals-client/internal/dates"
	"github.com/jrsteele09/signals-client/internal/utils"
)

func openCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <url>",
		Short: "Open a deep link or OAuth callback as if the app had been launched with it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				raw := args[0]
				nav := deeplink.NewStackNavigator(a.Session.State().IsAuthenticated())

				if _, ok := deeplink.ParseOAuthCallback(raw); ok {
					a.SetNavigator(nav)
					if err := a.HandleURL(ctx, raw); err != nil {
						return err
					}
				} else {
					a.Router.HandleInitialURL(raw)
					a.SetNavigator(nav)
				}

				routes := []string{}
				for _, r := range nav.History() {
					routes = append(routes, r.String())
				}
				info("Navigation: %s", strings.Join(routes, " -> "))
				printFilters(a.Filters.State(), a.ShareLink())
				return nil
			})
		},
	}
}

func filtersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Inspect and edit the persisted signal filters",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				printFilters(a.Filters.State(), a.ShareLink())
				return nil
			})
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				a.Filters.ResetFilters()
				printFilters(a.Filters.State(), a.ShareLink())
				return nil
			})
		},
	}

	cmd.AddCommand(show, reset, filtersSetCmd(opts))
	return cmd
}

func filtersSetCmd(opts *rootOptions) *cobra.Command {
	var (
		date, query, models, conditions, strategyType string
		pageSize                                      int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update filters using the same keys as a deep link query",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date != "" && !dates.IsValidDay(date) {
				return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				patch := filters.Patch{}
				if cmd.Flags().Changed("date") {
					patch.Date = &date
				}
				if cmd.Flags().Changed("q") {
					patch.Query = &query
				}
				if cmd.Flags().Changed("models") {
					patch.Models = splitFlag(models)
				}
				if cmd.Flags().Changed("condition") {
					tokens := splitFlag(conditions)
					patch.Conditions = make([]filters.Condition, len(tokens))
					for i, tok := range tokens {
						patch.Conditions[i] = filters.ParseCondition(strings.ToUpper(tok))
					}
				}
				if cmd.Flags().Changed("strategy-type") {
					patch.StrategyType = &strategyType
				}
				if cmd.Flags().Changed("page-size") {
					patch.PageSize = &pageSize
				}
				if patch.IsEmpty() {
					warn("Nothing to update")
					return nil
				}

				a.Debouncer.Update(patch)
				a.Debouncer.Flush()
				printFilters(a.Filters.State(), a.ShareLink())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Trading day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&query, "q", "", "Symbol search")
	cmd.Flags().StringVar(&models, "models", "", "Comma separated AI models")
	cmd.Flags().StringVar(&conditions, "condition", "", "Comma separated AND/OR between models")
	cmd.Flags().StringVar(&strategyType, "strategy-type", "", "Strategy type")
	cmd.Flags().IntVar(&pageSize, "page-size", filters.DefaultPageSize, "Page size")
	return cmd
}

func splitFlag(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printFilters(state filters.State, shareLink string) {
	t := newTable()
	t.AppendHeader(table.Row{header("FILTER"), header("VALUE")})
	t.AppendRow(table.Row{"Date", state.Date})
	t.AppendRow(table.Row{"Query", utils.ValueOr(state.Query, "-")})
	t.AppendRow(table.Row{"Models", strings.Join(state.Models, ", ")})
	t.AppendRow(table.Row{"Conditions", strings.Join(utils.ToStrings(state.Conditions), ", ")})
	t.AppendRow(table.Row{"Strategy", utils.ValueOr(state.StrategyType, "-")})
	t.AppendRow(table.Row{"Page", fmt.Sprintf("%d (size %d)", state.Page, state.PageSize)})
	t.AppendFooter(table.Row{"Share", shareLink})
	t.Render()
}
