package main

import (
	"context"
	"os"
	"sync"
	"time"

	"docsum/internal/bot"
	"docsum/internal/scheduler"
	"docsum/internal/web"

	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI, plus the Telegram bot when TOKEN is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")

	return cmd
}

func runServe(ctx context.Context, addr string) error {
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := newApp(ctx, os.Stdout, true)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	log := a.log

	if addr == "" {
		addr = a.cfg.HTTPAddr
	}

	srv, err := web.New(a.extractor, a.service, a.cfg.MaxUploadBytes, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize web server",
			"error", err)

		return err
	}

	if a.db != nil {
		sched := scheduler.New(ctx, a.db, a.cfg.JournalRetention, log)

		if err = sched.Start(); err != nil {
			log.ErrorContext(ctx, "Failed to start scheduler",
				"error", err,
				"spec", scheduler.HourlyPruneSpec)

			return err
		}
		defer sched.Stop()
		log.InfoContext(ctx, "Scheduler is started",
			"spec", scheduler.HourlyPruneSpec,
			"retention", a.cfg.JournalRetention.String())
	}

	var wg sync.WaitGroup

	if a.cfg.Token != "" {
		botInst, botErr := bot.New(a.cfg.Token, a.extractor, a.service, a.cfg.AllowedUsers, a.cfg.MaxUploadBytes, log)
		if botErr != nil {
			log.ErrorContext(ctx, "Failed to initialize bot",
				"error", botErr,
				"allowedUsersCount", len(a.cfg.AllowedUsers))

			return botErr
		}
		defer botInst.Stop()

		wg.Add(1)
		go func() {
			defer wg.Done()
			botInst.Start(ctx)
		}()
	} else {
		log.InfoContext(ctx, "TOKEN is empty so the bot is disabled",
			"envVar", "TOKEN")
	}

	err = srv.Run(ctx, addr)
	if err != nil {
		log.ErrorContext(ctx, "Failed to run web server",
			"error", err,
			"addr", addr)
	}

	cancel()
	wg.Wait()

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())

	return err
}
