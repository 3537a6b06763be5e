// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"codeberg.org/skillnaav/portal/internal/config"
	"codeberg.org/skillnaav/portal/internal/server"
)

func main() {
	cmd := &cli.Command{
		Name:   "skillnaav",
		Usage:  "Start the SkillNaav internship portal API",
		Flags:  config.Flags(),
		Action: server.Run,
		Commands: []*cli.Command{
			server.MigrateCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
