// Command describe prints the shape, column types, null counts, first rows
// and numeric summary of the raw export.
package main

import (
	"fmt"
	"os"

	"housing-etl/internal/cli"
	"housing-etl/internal/config"
	"housing-etl/internal/datasource/file"
	csvparser "housing-etl/internal/parser/csv"
	"housing-etl/internal/probe"
)

const name = "describe"

func main() {
	os.Exit(run(cli.OS()))
}

func run(env cli.Env) int {
	s, err := cli.Start(name, env, config.NeedRaw)
	if err != nil {
		return cli.Code(env.Stderr, name, err)
	}
	defer s.Close()

	ctx, stop := cli.Context()
	defer stop()

	rc, err := file.NewLocal(s.Config.RawPath).Open(ctx)
	if err != nil {
		return cli.Code(env.Stderr, name, err)
	}
	defer rc.Close()

	t, stats, err := csvparser.Read(rc, csvparser.Options{})
	if err != nil {
		return cli.Code(env.Stderr, name, fmt.Errorf("%w: read %s: %w", file.ErrSourceUnavailable, s.Config.RawPath, err))
	}
	s.Logger.Info("describe: raw data loaded", "path", s.Config.RawPath, "skipped", stats.Skipped, "padded", stats.Padded)

	if err := probe.Render(env.Stdout, probe.Describe(t, s.Config.SampleRows)); err != nil {
		return cli.Code(env.Stderr, name, err)
	}
	return cli.ExitOK
}
