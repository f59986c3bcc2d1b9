package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/romdoctor/internal/app"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "romdoctor",
	Short:         "Reconcile ROM folders with their gamelist.xml and fix the differences",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Error("exec cmd failed", zap.Error(err))
		return err
	}
	return nil
}

// runLifecycle drives a runner; PostRun always follows a successful PreRun so
// resources taken there are released even when Run fails.
func runLifecycle(ctx context.Context, runner app.IRunner) error {
	if err := runner.PreRun(ctx); err != nil {
		return err
	}
	runErr := runner.Run(ctx)
	postErr := runner.PostRun(ctx)
	return errors.Join(runErr, postErr)
}

func newRunnerCommand(runner app.IRunner) *cobra.Command {
	subcmd := &cobra.Command{
		Use:   runner.Name(),
		Short: runner.Desc(),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := commandContext(cmd)
			defer stop()
			return runLifecycle(ctx, runner)
		},
	}
	runner.Init(subcmd.Flags())
	return subcmd
}

func init() {
	for _, name := range app.RunnerList() {
		rootCmd.AddCommand(newRunnerCommand(app.MustResolveRunner(name)))
	}
}
