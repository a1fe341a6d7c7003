package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"netreliability/pkg/apperror"
	"netreliability/services/reliability-svc/internal/repository"
)

func newHistoryCmd(getApp func() *app, opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect stored runs (requires database.enabled)",
	}
	cmd.AddCommand(
		newHistoryListCmd(getApp, opts),
		newHistoryShowCmd(getApp, opts),
		newHistoryDeleteCmd(getApp),
	)
	return cmd
}

func newHistoryListCmd(getApp func() *app, opts *globalOptions) *cobra.Command {
	var (
		kind   string
		tags   []string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  checkArgs(cobra.NoArgs),
		RunE: withApp(getApp, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			k := repository.RunKind(kind)
			if k != "" && !k.Valid() {
				return apperror.NewWithField(apperror.CodeInvalidArgument,
					fmt.Sprintf("unknown run kind %q", kind), "kind")
			}

			svc, err := a.HistoryService(ctx)
			if err != nil {
				return err
			}
			runs, total, err := svc.ListRuns(ctx, &repository.ListOptions{
				Kind:   k,
				Tags:   tags,
				Limit:  limit,
				Offset: offset,
			})
			if err != nil {
				return err
			}
			return printRuns(cmd.OutOrStdout(), opts.jsonOutput, runs, total)
		}),
	}

	cmd.Flags().StringVar(&kind, "kind", "", "filter by kind: estimate, sweep or grow")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "require a tag, repeatable")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size (at most 100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}

func newHistoryShowCmd(getApp func() *app, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a stored run",
		Args:  checkArgs(cobra.ExactArgs(1)),
		RunE: withApp(getApp, func(cmd *cobra.Command, a *app, args []string) error {
			svc, err := a.HistoryService(cmd.Context())
			if err != nil {
				return err
			}
			run, err := svc.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printRun(cmd.OutOrStdout(), opts.jsonOutput, run)
		}),
	}
}

func newHistoryDeleteCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a stored run",
		Args:  checkArgs(cobra.ExactArgs(1)),
		RunE: withApp(getApp, func(cmd *cobra.Command, a *app, args []string) error {
			svc, err := a.HistoryService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.DeleteRun(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		}),
	}
}
