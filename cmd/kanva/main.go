package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "kanva",
		Usage: "drive data containers and their extensions from a config file",
		Commands: []*cli.Command{
			Run(),
			Ticks(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Usage:   "path to config (.yaml, .yml or .json)",
		Aliases: []string{"c"},
		Value:   "./config.yaml",
	}
}
