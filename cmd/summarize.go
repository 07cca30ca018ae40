package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"docsum/internal/domain"
	"docsum/internal/summarizer"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

const spinnerTick = 100 * time.Millisecond

func newSummarizeCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "summarize [file]",
		Short: "Summarize a document, or stdin when no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, os.Stderr, true)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			req := summarizer.Request{Source: domain.SourceCLI, Format: domain.FormatPasted}

			if len(args) == 1 {
				extraction, extractErr := a.extractFile(ctx, args[0])
				if extractErr != nil {
					return extractErr
				}

				if !extraction.Supported() {
					_, err = fmt.Fprintln(cmd.ErrOrStderr(), extraction.Text)
					return err
				}

				req.Text = extraction.Text
				req.Format = extraction.Format
			} else {
				raw, readErr := io.ReadAll(cmd.InOrStdin())
				if readErr != nil {
					return fmt.Errorf("read stdin: %w", readErr)
				}
				req.Text = string(raw)
			}

			summary, err := summarizeWithSpinner(ctx, a.service, req, cmd.ErrOrStderr(), quiet)
			if errors.Is(err, summarizer.ErrEmptyInput) {
				return errors.New(summarizer.EmptyInputWarning)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), summary.Text)

			return err
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not show the progress spinner")

	return cmd
}

type summaryService interface {
	Summarize(ctx context.Context, req summarizer.Request) (domain.Summary, error)
}

func summarizeWithSpinner(
	ctx context.Context,
	svc summaryService,
	req summarizer.Request,
	out io.Writer,
	quiet bool,
) (domain.Summary, error) {
	if quiet {
		return svc.Summarize(ctx, req)
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("[cyan]Generating summary...[reset]"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	go func() {
		t := time.NewTicker(spinnerTick)
		defer t.Stop()

		for {
			select {
			case <-done:
				return
			case <-t.C:
				_ = bar.Add(1)
			}
		}
	}()

	summary, err := svc.Summarize(ctx, req)

	close(done)
	_ = bar.Finish()

	return summary, err
}
