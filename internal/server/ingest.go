package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/business-dashboard/internal/common"
	"github.com/joseph-ayodele/business-dashboard/internal/core/async"
)

type rejectedUpload struct {
	Name   string
	Reason string
}

type uploadView struct {
	Title    string
	MaxMB    int64
	Queued   []string
	Rejected []rejectedUpload
}

func (s *Server) newUploadView() uploadView {
	return uploadView{Title: "Upload", MaxMB: s.cfg.UploadMaxBytes >> 20}
}

func (s *Server) uploadForm(c echo.Context) error {
	return c.Render(http.StatusOK, "upload", s.newUploadView())
}

// upload queues every accepted file of the "files" field. It answers 202 when at least one
// file was queued and 400 when all were rejected.
// maxFilenameLength bounds the filename column of a document record.
const maxFilenameLength = 255

func (s *Server) upload(c echo.Context) error {
	if s.deps.Queue == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "uploads are disabled")
	}
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "expected a multipart form with files")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no files uploaded")
	}

	ctx := c.Request().Context()
	logger := common.LoggerFromContext(ctx, s.logger)
	view := s.newUploadView()
	reject := func(name, reason, metric string) {
		s.deps.Metrics.RejectUpload(metric)
		logger.Warn("upload rejected", "filename", name, "reason", reason)
		view.Rejected = append(view.Rejected, rejectedUpload{Name: name, Reason: reason})
	}

	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		v := common.NewValidator().Field("filename", name, common.Required, common.DocumentName)
		if v.HasErrors() {
			reject(name, "only .pdf and .txt files are accepted", "unsupported")
			continue
		}
		if common.NewValidator().Field("filename", name, common.MaxLength(maxFilenameLength)).HasErrors() {
			reject(name, fmt.Sprintf("file name longer than %d characters", maxFilenameLength), "name_too_long")
			continue
		}
		if fh.Size > s.cfg.UploadMaxBytes {
			reject(name, fmt.Sprintf("larger than %d MiB", view.MaxMB), "too_large")
			continue
		}
		data, err := readUpload(fh)
		if err != nil {
			return fmt.Errorf("read upload %s: %w", name, err)
		}

		err = s.deps.Queue.Enqueue(ctx, async.Job{
			Filename:  name,
			Data:      data,
			RequestID: common.RequestIDFromContext(ctx),
		})
		if errors.Is(err, async.ErrQueueClosed) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "shutting down")
		}
		if err != nil {
			return err
		}
		logger.Info("upload queued", "filename", name, "size", fh.Size)
		view.Queued = append(view.Queued, name)
	}

	code := http.StatusAccepted
	if len(view.Queued) == 0 {
		code = http.StatusBadRequest
	}
	return c.Render(code, "upload", view)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
