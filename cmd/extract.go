package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"docsum/internal/domain"

	"github.com/spf13/cobra"
)

func newExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the plain text of a .txt, .pdf or .docx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), os.Stderr, false)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			extraction, err := a.extractFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !extraction.Supported() {
				_, err = fmt.Fprintln(cmd.ErrOrStderr(), extraction.Text)
				return err
			}

			_, err = io.WriteString(cmd.OutOrStdout(), extraction.Text)

			return err
		},
	}
}

func (a *app) extractFile(ctx context.Context, path string) (domain.Extraction, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		a.log.ErrorContext(ctx, "Failed to read file",
			"error", err,
			"path", path)

		return domain.Extraction{}, fmt.Errorf("read file: %w", err)
	}

	extraction, err := a.extractor.Extract(ctx, domain.UploadedDocument{
		Name:    filepath.Base(path),
		Content: content,
	})
	if err != nil {
		a.log.ErrorContext(ctx, "Failed to extract document",
			"error", err,
			"path", path)

		return domain.Extraction{}, err
	}

	return extraction, nil
}
