package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"kanva/internal/app"
)

func Run() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "build the containers, attach extensions and log tooltip deliveries",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "trace",
				Usage:   "replay a JSON Lines pointer trace, then exit",
				Aliases: []string{"t"},
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "hot-reload logging settings when the config changes",
			},
		},
		Action: func(c *cli.Context) error {
			var (
				configPath = c.String("config")
				tracePath  = c.String("trace")
			)

			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := app.New(configPath)
			if err != nil {
				return err
			}
			if err := a.Start(ctx, c.Bool("watch")); err != nil {
				_ = a.Stop(context.Background(), app.StopFatalError)
				return err
			}

			if tracePath != "" {
				f, err := os.Open(tracePath)
				if err != nil {
					_ = a.Stop(context.Background(), app.StopFatalError)
					return err
				}
				_, err = a.Replay(ctx, f)
				_ = f.Close()
				if err != nil {
					_ = a.Stop(context.Background(), app.StopFatalError)
					return err
				}
				return a.Stop(context.Background(), app.StopReplayDone)
			}

			<-a.Done()
			reason := app.StopSignal
			if a.Err() != nil {
				reason = app.StopFatalError
			}
			if err := a.Stop(context.Background(), reason); err != nil {
				return err
			}
			return a.Err()
		},
	}
}
