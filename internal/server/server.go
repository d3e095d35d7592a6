// Package server provides the parkVar web interface: CSV upload with
// patient tagging, the two-stage validate/annotate pipeline, and patient
// filtering of the annotated table.
package server

import (
	"net/http"

	"github.com/labstack/echo"
	"go.uber.org/zap"

	"github.com/parkvar/parkvar/internal/annotate"
	"github.com/parkvar/parkvar/internal/validate"
)

// Per-session flat files inside the data directory.
const (
	inputFile     = "input_data.csv"
	validatedFile = "validated_data.csv"
	annotatedFile = "anno_data.csv"
	filteredFile  = "filtered_data.csv"
	uploadedList  = "uploaded_files.txt"

	patientIDColumn = "Patient_ID"
)

// Config configures a Server.
type Config struct {
	DataDir   string
	Validator *validate.Runner
	Annotator *annotate.Runner
	Logger    *zap.Logger
}

// Server is the parkVar web application.
type Server struct {
	echo      *echo.Echo
	dataDir   string
	validator *validate.Runner
	annotator *annotate.Runner
	logger    *zap.Logger
}

// New creates the web application and registers its routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		echo:      echo.New(),
		dataDir:   cfg.DataDir,
		validator: cfg.Validator,
		annotator: cfg.Annotator,
		logger:    logger,
	}
	s.echo.HideBanner = true

	s.echo.GET("/", s.uploadPage)
	s.echo.POST("/", s.upload)
	s.echo.POST("/annotate", s.annotateData)
	s.echo.POST("/filter", s.filterData)
	s.echo.POST("/refresh", s.refresh)

	return s
}

// Start runs the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// renderError renders the error page with the given message. Mirrors the
// original app's global error handler: pipeline failures surface as a
// contextualized message, never a stack trace.
func (s *Server) renderError(c echo.Context, msg string) error {
	s.logger.Error("request failed", zap.String("path", c.Request().URL.Path), zap.String("reason", msg))
	html, err := renderPage(errorTmpl, pageData{Message: msg})
	if err != nil {
		return err
	}
	return c.HTML(http.StatusBadRequest, html)
}
