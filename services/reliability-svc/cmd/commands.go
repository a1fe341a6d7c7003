package main

import (
	"github.com/spf13/cobra"

	"netreliability/pkg/apperror"
)

// newRootCmd собирает дерево команд. Каждый вызов возвращает независимое
// дерево, поэтому команды можно выполнять в тестах по очереди.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	var a *app

	root := &cobra.Command{
		Use:   "reliability",
		Short: "Monte Carlo reliability estimation for packet networks",
		Long: `reliability estimates the probability that a network with randomly
failing links still delivers all traffic with an average delay below a threshold.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(cmd.Context(), opts)
			return err
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config.yaml")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")

	// ошибки разбора флагов считаются ошибками ввода
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return apperror.Wrap(err, apperror.CodeInvalidArgument, "invalid flags")
	})

	getApp := func() *app { return a }

	root.AddCommand(
		newEstimateCmd(getApp, opts),
		newSweepCmd(getApp, opts),
		newGrowCmd(getApp, opts),
		newGenerateCmd(getApp),
		newReportCmd(getApp),
		newHistoryCmd(getApp, opts),
	)

	return root
}

// runFunc тело команды с готовым окружением
type runFunc func(cmd *cobra.Command, a *app, args []string) error

// withApp закрывает ресурсы окружения после команды, в том числе при ошибке
func withApp(getApp func() *app, fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a := getApp()
		defer a.Close()
		return fn(cmd, a, args)
	}
}

// checkArgs помечает ошибки позиционных аргументов как ошибки ввода
func checkArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return apperror.Wrap(err, apperror.CodeInvalidArgument, "invalid arguments")
		}
		return nil
	}
}
