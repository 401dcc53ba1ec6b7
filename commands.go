package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matt-g-everett/linefield/api"
	"github.com/matt-g-everett/linefield/config"
	"github.com/matt-g-everett/linefield/field"
	"github.com/matt-g-everett/linefield/stream"
	"github.com/matt-g-everett/linefield/term"
	"github.com/matt-g-everett/linefield/view"
)

func newScheduler(params field.Params, grid field.Grid, c config.Config) (*field.Scheduler, error) {
	animator, err := field.NewAnimator(params, grid)
	if err != nil {
		return nil, err
	}
	tracker, err := c.Tracker()
	if err != nil {
		return nil, err
	}
	return field.NewScheduler(animator, tracker), nil
}

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Stream frames over MQTT and serve the browser client",
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := a.prepare(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	params, err := a.Config.Params()
	if err != nil {
		return err
	}
	a.setParams(params)
	scheduler, err := newScheduler(params, a.Config.FieldGrid(), a.Config)
	if err != nil {
		return err
	}
	scheduler.ResizeNow(a.Config.Viewport.Width, a.Config.Viewport.Height)

	controller := stream.NewController(scheduler, a.Config.FrameInterval(), a.Logger.WithPrefix("controller"))

	go func() {
		for p := range a.watchParams(ctx, config.Config.Params) {
			controller.SetParams(p)
		}
	}()

	server := api.NewApi(controller, a.currentParams, a.Config.HTTP.Client, a.Logger.WithPrefix("api"))
	errc := make(chan error, 2)
	go func() { errc <- server.Serve(ctx, a.Config.HTTP.Listen) }()

	if a.Config.Mqtt.URL == "" {
		a.Logger.Warn("no MQTT broker configured, frames are only available over HTTP")
		go func() { errc <- controller.Run(ctx, nil) }()
	} else {
		streamer, client := a.connect(controller)
		defer client.Disconnect(250)
		go func() { errc <- streamer.Run(ctx) }()
	}

	err = <-errc
	cancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) connect(controller *stream.Controller) (*stream.Streamer, mqtt.Client) {
	var streamer *stream.Streamer
	logger := a.Logger.WithPrefix("mqtt")

	options := mqtt.NewClientOptions().
		AddBroker(a.Config.Mqtt.URL).
		SetClientID("linefield-" + uuid.NewString()).
		SetUsername(a.Config.Mqtt.Username).
		SetPassword(a.Config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetConnectRetry(true).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(mqtt.Client) {
			logger.Info("connected", "broker", a.Config.Mqtt.URL)
			if err := streamer.Subscribe(); err != nil {
				logger.Error("subscribe failed", "err", err)
			}
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("connection lost", "err", err)
		})
	client := mqtt.NewClient(options)
	streamer = stream.NewStreamer(client, controller, a.Config.Mqtt.Topics.Input, a.Config.Mqtt.Topics.Frames, logger)

	// With connect retry enabled the token only completes once connected.
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		logger.Warn("broker not reachable yet, retrying in the background", "broker", a.Config.Mqtt.URL)
	} else if token.Error() != nil {
		logger.Error("connect failed", "err", token.Error())
	}
	return streamer, client
}

func (a *app) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Open the line field in a desktop window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := a.prepare(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			params, err := a.Config.Params()
			if err != nil {
				return err
			}
			scheduler, err := newScheduler(params, a.Config.FieldGrid(), a.Config)
			if err != nil {
				return err
			}
			game := view.NewGame(scheduler, a.watchParams(ctx, config.Config.Params), a.Logger.WithPrefix("view"))
			return view.Run(game, "linefield", int(a.Config.Viewport.Width), int(a.Config.Viewport.Height))
		},
	}
}

func (a *app) termCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "term",
		Short: "Run the line field in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := a.prepare(cmd, true)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			params, err := a.Config.TerminalParams()
			if err != nil {
				return err
			}
			scheduler, err := newScheduler(params, a.Config.TerminalGrid(), a.Config)
			if err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init terminal: %w", err)
			}
			defer screen.Fini()

			v := term.New(screen, scheduler, a.Config.FrameInterval(), a.watchParams(ctx, config.Config.TerminalParams), a.Logger.WithPrefix("term"))
			if err := v.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
