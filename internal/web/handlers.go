package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"docsum/internal/domain"
	"docsum/internal/summarizer"

	"github.com/gin-gonic/gin"
)

const (
	actionExtract   = "extract"
	actionSummarize = "summarize"
	pageTemplate    = "index.html"
)

type page struct {
	Text     string
	FileName string
	Summary  string
	Warning  string
	Error    string
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, pageTemplate, page{})
}

// handleSubmit extracts an uploaded file into the text area and, for the
// summarize action, summarizes whatever the text area then holds.
func (s *Server) handleSubmit(c *gin.Context) {
	ctx := c.Request.Context()

	data := page{Text: c.PostForm("text")}
	format := domain.FormatPasted
	supported := true

	var maxBytesErr *http.MaxBytesError

	header, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case errors.As(err, &maxBytesErr):
		s.renderError(c, data, newPageError(http.StatusRequestEntityTooLarge, s.tooLargeMessage(), nil))
		return
	case err != nil:
		s.renderError(c, data, newPageError(http.StatusBadRequest, "Invalid upload", err))
		return
	case header.Filename != "":
		data.FileName = header.Filename

		extraction, extractErr := s.extractUpload(c, header)
		if extractErr != nil {
			s.renderError(c, data, mapError(extractErr))
			return
		}

		data.Text = extraction.Text
		format = extraction.Format
		supported = extraction.Supported()
	}

	if c.PostForm("action") != actionSummarize || !supported {
		c.HTML(http.StatusOK, pageTemplate, data)
		return
	}

	summary, err := s.summarizer.Summarize(ctx, summarizer.Request{
		Text:   data.Text,
		Source: domain.SourceWeb,
		Format: format,
	})
	if errors.Is(err, summarizer.ErrEmptyInput) {
		data.Warning = summarizer.EmptyInputWarning
		c.HTML(http.StatusOK, pageTemplate, data)
		return
	}
	if err != nil {
		s.renderError(c, data, mapError(err))
		return
	}

	data.Summary = summary.Text
	c.HTML(http.StatusOK, pageTemplate, data)
}

func (s *Server) extractUpload(c *gin.Context, header *multipart.FileHeader) (domain.Extraction, error) {
	if s.maxBytes > 0 && header.Size > s.maxBytes {
		return domain.Extraction{}, newPageError(http.StatusRequestEntityTooLarge, s.tooLargeMessage(), nil)
	}

	file, err := header.Open()
	if err != nil {
		return domain.Extraction{}, newPageError(http.StatusBadRequest, "Invalid upload", fmt.Errorf("open upload: %w", err))
	}
	defer func() {
		if err = file.Close(); err != nil {
			s.log.ErrorContext(c.Request.Context(), "Failed to close upload",
				"error", err,
				"fileName", header.Filename)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return domain.Extraction{}, newPageError(http.StatusBadRequest, "Invalid upload", fmt.Errorf("read upload: %w", err))
	}

	return s.extractor.Extract(c.Request.Context(), domain.UploadedDocument{
		Name:    header.Filename,
		Content: content,
	})
}

func (s *Server) renderError(c *gin.Context, data page, pageErr *pageError) {
	if pageErr.Err != nil {
		s.log.ErrorContext(c.Request.Context(), "Failed to handle request",
			"error", pageErr.Err,
			"status", pageErr.Code,
			"fileName", data.FileName)
	}

	data.Error = pageErr.Message
	c.HTML(pageErr.Code, pageTemplate, data)
}
