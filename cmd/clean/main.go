// Command clean turns the raw luxury housing export into the cleaned CSV.
//
//	clean -raw data/raw.csv -clean data/clean.csv [-rejects data/rejects.csv]
//
// Every flag defaults from the environment or a .env file; run with -help for
// the full list.
package main

import (
	"fmt"
	"os"

	"housing-etl/internal/cleaning"
	"housing-etl/internal/cli"
	"housing-etl/internal/config"
	"housing-etl/internal/probe"
)

const name = "clean"

func main() {
	os.Exit(run(cli.OS()))
}

func run(env cli.Env) int {
	s, err := cli.Start(name, env, config.NeedRaw|config.NeedClean)
	if err != nil {
		return cli.Code(env.Stderr, name, err)
	}
	defer s.Close()

	ctx, stop := cli.Context()
	defer stop()

	res, err := cleaning.Run(ctx, cleaning.Options{
		RawPath:     s.Config.RawPath,
		CleanPath:   s.Config.CleanPath,
		RejectsPath: s.Config.RejectsPath,
		RunID:       s.RunID,
		Job:         s.Config.JobName,
		Logger:      s.Logger,
	})
	if err != nil {
		return cli.Code(env.Stderr, name, err)
	}

	if n := s.Config.SampleRows; n > 0 {
		fmt.Fprintf(env.Stdout, "Cleaned preview (%d of %d rows):\n", min(n, res.Table.Len()), res.Table.Len())
		if err := probe.RenderHead(env.Stdout, res.Table, n); err != nil {
			return cli.Code(env.Stderr, name, err)
		}
	}
	return cli.ExitOK
}
