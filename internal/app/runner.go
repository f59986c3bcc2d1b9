package app

import (
	"context"

	"github.com/spf13/pflag"
)

// IRunner is one subcommand: flags are bound in Init, then PreRun, Run and
// PostRun execute in order.
type IRunner interface {
	Name() string
	Desc() string
	Init(f *pflag.FlagSet)
	PreRun(ctx context.Context) error
	Run(ctx context.Context) error
	PostRun(ctx context.Context) error
}
