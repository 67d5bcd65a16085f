// Command load bulk-inserts the cleaned CSV into the luxury_housing table.
// The table must already exist.
//
//	load -clean data/clean.csv -db_driver mysql -db_user etl -db_name housing
package main

import (
	"os"

	"housing-etl/internal/cli"
	"housing-etl/internal/config"
	"housing-etl/internal/loader"
	_ "housing-etl/internal/storage/all"
)

const name = "load"

func main() {
	os.Exit(run(cli.OS()))
}

func run(env cli.Env) int {
	s, err := cli.Start(name, env, config.NeedClean|config.NeedDB)
	if err != nil {
		return cli.Code(env.Stderr, name, err)
	}
	defer s.Close()

	ctx, stop := cli.Context()
	defer stop()

	_, err = loader.Run(ctx, loader.Options{
		CleanPath: s.Config.CleanPath,
		Storage:   s.Storage(),
		BatchSize: s.Config.BatchSize,
		Job:       s.Config.JobName,
		Logger:    s.Logger.With("run_id", s.RunID),
	})
	return cli.Code(env.Stderr, name, err)
}
