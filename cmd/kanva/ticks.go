package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"kanva/internal/app"
	"kanva/internal/config"
	logx "kanva/pkg/logx"
)

func Ticks() *cli.Command {
	return &cli.Command{
		Name:  "ticks",
		Usage: "print the y-axis ticks of every configured container",
		Flags: []cli.Flag{configFlag()},
		Action: func(c *cli.Context) error {
			cfg, err := config.NewConfigManager(c.String("config")).Load()
			if err != nil {
				return err
			}
			scene, err := app.BuildScene(cfg, logx.Nop(), nil, nil)
			if err != nil {
				return err
			}
			defer scene.Close()

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			for _, ct := range scene.Ticks() {
				fmt.Fprintf(w, "%s\t%d points\n", ct.Container, ct.Points)
				for _, t := range ct.Ticks {
					fmt.Fprintf(w, "\t%g\t%s\n", t.Value, t.Label)
				}
			}
			return w.Flush()
		},
	}
}
