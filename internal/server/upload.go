package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo"
	"go.uber.org/zap"
)

func (s *Server) uploadPage(c echo.Context) error {
	html, err := renderPage(uploadTmpl, pageData{})
	if err != nil {
		return err
	}
	return c.HTML(http.StatusOK, html)
}

// upload accepts one CSV, tags its rows with a patient ID derived from the
// filename stem, and appends it to the combined input table. Re-uploading
// the same filename in a session is reported, not re-appended.
func (s *Server) upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil || fh.Filename == "" {
		s.logger.Warn("no file uploaded")
		html, rerr := renderPage(uploadTmpl, pageData{Message: "No file uploaded"})
		if rerr != nil {
			return rerr
		}
		return c.HTML(http.StatusBadRequest, html)
	}

	src, err := fh.Open()
	if err != nil {
		return s.renderError(c, fmt.Sprintf("could not read %s: %v", fh.Filename, err))
	}
	defer src.Close()

	table, err := readRawCSV(src)
	if err != nil {
		return s.renderError(c, fmt.Sprintf("could not parse %s as CSV: %v", fh.Filename, err))
	}

	// Patient tagging: the filename stem becomes the patient identifier.
	// Any ID or pre-existing Patient_ID column would collide downstream.
	table.dropColumn(patientIDColumn)
	table.dropColumn("ID")
	patientID := strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))
	table.insertPatientID(patientID)

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return s.renderError(c, fmt.Sprintf("could not create data directory: %v", err))
	}

	already, err := s.trackUpload(fh.Filename)
	if err != nil {
		return s.renderError(c, fmt.Sprintf("could not track uploads: %v", err))
	}
	if already {
		s.logger.Warn("file already uploaded", zap.String("filename", fh.Filename))
		return s.renderPreview(c, fmt.Sprintf("%s has already been uploaded", fh.Filename))
	}

	if err := table.appendTo(filepath.Join(s.dataDir, inputFile)); err != nil {
		return s.renderError(c, fmt.Sprintf("could not store uploaded data: %v", err))
	}

	s.logger.Info("file uploaded",
		zap.String("filename", fh.Filename),
		zap.String("patient_id", patientID),
		zap.Int("rows", len(table.Rows)))
	return s.renderPreview(c, fmt.Sprintf("Uploaded %s", fh.Filename))
}

// trackUpload records the filename in the session's upload list and
// reports whether it was already present.
func (s *Server) trackUpload(filename string) (bool, error) {
	listPath := filepath.Join(s.dataDir, uploadedList)

	var names []string
	if data, err := os.ReadFile(listPath); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				names = append(names, line)
			}
		}
	}

	for _, name := range names {
		if name == filename {
			return true, nil
		}
	}

	names = append(names, filename)
	return false, os.WriteFile(listPath, []byte(strings.Join(names, "\n")+"\n"), 0o644)
}

// renderPreview shows the combined input table with the annotate controls.
func (s *Server) renderPreview(c echo.Context, message string) error {
	data := pageData{Message: message}
	if table, err := readRawFile(filepath.Join(s.dataDir, inputFile)); err == nil {
		data.Header = table.Header
		data.Rows = table.Rows
	}

	html, err := renderPage(previewTmpl, data)
	if err != nil {
		return err
	}
	return c.HTML(http.StatusOK, html)
}
