package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo"
	"go.uber.org/zap"
)

// annotateData runs the two pipeline stages over the combined input table
// and renders the annotated result with patient filter controls.
func (s *Server) annotateData(c echo.Context) error {
	ctx := c.Request().Context()

	inputPath := filepath.Join(s.dataDir, inputFile)
	validatedPath := filepath.Join(s.dataDir, validatedFile)
	annotatedPath := filepath.Join(s.dataDir, annotatedFile)

	if _, err := os.Stat(inputPath); err != nil {
		return s.renderError(c, "no uploaded data found; upload a CSV first")
	}

	if _, err := s.validator.Run(ctx, inputPath, validatedPath); err != nil {
		return s.renderError(c, fmt.Sprintf("validation failed: %v", err))
	}
	s.logger.Info("validation stage complete")

	if _, err := s.annotator.Run(ctx, validatedPath, annotatedPath); err != nil {
		return s.renderError(c, fmt.Sprintf("annotation failed: %v", err))
	}
	s.logger.Info("annotation stage complete")

	table, err := readRawFile(annotatedPath)
	if err != nil {
		return s.renderError(c, fmt.Sprintf("could not read annotated data: %v", err))
	}

	html, err := renderPage(annotatedTmpl, pageData{
		PatientIDs: table.patientIDs(),
		Header:     table.Header,
		Rows:       table.Rows,
	})
	if err != nil {
		return err
	}
	return c.HTML(http.StatusOK, html)
}

// filterData filters the annotated table by the Patient_IDs ticked in the
// form. No selection shows all rows.
func (s *Server) filterData(c echo.Context) error {
	annotatedPath := filepath.Join(s.dataDir, annotatedFile)

	table, err := readRawFile(annotatedPath)
	if err != nil {
		return s.renderError(c, "no annotated data found; run annotation first")
	}
	if table.columnIndex(patientIDColumn) < 0 {
		return s.renderError(c, "annotated data has no Patient_ID column")
	}

	params, err := c.FormParams()
	if err != nil {
		return s.renderError(c, fmt.Sprintf("could not read form: %v", err))
	}
	selected := params["patient_id"]

	filtered := table.filterByPatientIDs(selected)
	if err := filtered.write(filepath.Join(s.dataDir, filteredFile)); err != nil {
		return s.renderError(c, fmt.Sprintf("could not store filtered data: %v", err))
	}

	appliedText := "No filter selected. Showing all rows."
	if len(selected) > 0 {
		appliedText = "Filtered by: "
		for i, id := range selected {
			if i > 0 {
				appliedText += ", "
			}
			appliedText += id
		}
		s.logger.Info("filter applied", zap.Strings("patient_ids", selected))
	}

	selectedSet := map[string]bool{}
	for _, id := range selected {
		selectedSet[id] = true
	}

	html, err := renderPage(annotatedTmpl, pageData{
		AppliedText: appliedText,
		PatientIDs:  table.patientIDs(),
		SelectedIDs: selectedSet,
		Header:      filtered.Header,
		Rows:        filtered.Rows,
	})
	if err != nil {
		return err
	}
	return c.HTML(http.StatusOK, html)
}

// refresh clears the session's data directory and returns to the upload
// page.
func (s *Server) refresh(c echo.Context) error {
	entries, err := os.ReadDir(s.dataDir)
	if err == nil {
		for _, entry := range entries {
			path := filepath.Join(s.dataDir, entry.Name())
			if err := os.Remove(path); err != nil {
				s.logger.Error("failed to delete session file", zap.String("path", path), zap.Error(err))
			}
		}
	}
	s.logger.Info("session refreshed")
	return c.Redirect(http.StatusSeeOther, "/")
}
