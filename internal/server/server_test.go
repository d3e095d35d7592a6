package server

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkvar/parkvar/internal/annotate"
	"github.com/parkvar/parkvar/internal/validate"
)

func newTestApp(t *testing.T, dataDir string, validatorURL, clinvarURL string) *Server {
	t.Helper()
	return New(Config{
		DataDir:   dataDir,
		Validator: validate.NewRunner(validate.NewClient(validatorURL, "GRCh38", 1000)),
		Annotator: annotate.NewRunner(annotate.NewClinVarClient(clinvarURL, 1000), nil),
	})
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestUploadTagsPatientAndDropsID(t *testing.T) {
	dataDir := t.TempDir()
	app := newTestApp(t, dataDir, "http://invalid", "http://invalid")

	body, contentType := multipartUpload(t, "patient1.csv",
		"#CHROM,POS,ID,REF,ALT\n4,89822254,rs104893877,C,T\n")

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := os.ReadFile(filepath.Join(dataDir, "input_data.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(stored)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Patient_ID,#CHROM,POS,REF,ALT", lines[0])
	assert.Equal(t, "patient1,4,89822254,C,T", lines[1])
}

func TestUploadDuplicateFilenameNotReappended(t *testing.T) {
	dataDir := t.TempDir()
	app := newTestApp(t, dataDir, "http://invalid", "http://invalid")

	content := "#CHROM,POS,REF,ALT\n4,89822254,C,T\n"
	for i := 0; i < 2; i++ {
		body, contentType := multipartUpload(t, "patient1.csv", content)
		req := httptest.NewRequest(http.MethodPost, "/", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		app.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		if i == 1 {
			assert.Contains(t, rec.Body.String(), "already been uploaded")
		}
	}

	stored, err := os.ReadFile(filepath.Join(dataDir, "input_data.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(stored)), "\n")
	assert.Len(t, lines, 2, "duplicate upload must not append rows")
}

func TestUploadNoFile(t *testing.T) {
	app := newTestApp(t, t.TempDir(), "http://invalid", "http://invalid")

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file uploaded")
}

func TestFilterByPatientID(t *testing.T) {
	dataDir := t.TempDir()
	app := newTestApp(t, dataDir, "http://invalid", "http://invalid")

	anno := "Patient_ID,#CHROM,POS,REF,ALT,t_hgvs,classification\n" +
		"patient1,4,89822254,C,T,NM_001377265.1:c.841G>T,Pathogenic\n" +
		"patient2,1,155235252,G,A,NM_000157.4:c.1226A>G,Likely pathogenic\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "anno_data.csv"), []byte(anno), 0o644))

	form := url.Values{"patient_id": {"patient1"}}
	req := httptest.NewRequest(http.MethodPost, "/filter", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Filtered by: patient1")
	assert.NotContains(t, rec.Body.String(), "Likely pathogenic") // patient2 row filtered out

	filtered, err := os.ReadFile(filepath.Join(dataDir, "filtered_data.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(filtered)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "patient1,"))
}

func TestFilterNoSelectionShowsAll(t *testing.T) {
	dataDir := t.TempDir()
	app := newTestApp(t, dataDir, "http://invalid", "http://invalid")

	anno := "Patient_ID,#CHROM,POS,REF,ALT,t_hgvs\n" +
		"patient1,4,89822254,C,T,NM_001377265.1:c.841G>T\n" +
		"patient2,1,155235252,G,A,NM_000157.4:c.1226A>G\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "anno_data.csv"), []byte(anno), 0o644))

	req := httptest.NewRequest(http.MethodPost, "/filter", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No filter selected")

	filtered, err := os.ReadFile(filepath.Join(dataDir, "filtered_data.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(filtered)), "\n")
	assert.Len(t, lines, 3)
}

func TestRefreshClearsDataDir(t *testing.T) {
	dataDir := t.TempDir()
	app := newTestApp(t, dataDir, "http://invalid", "http://invalid")
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "input_data.csv"), []byte("x"), 0o644))

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	entries, err := os.ReadDir(dataDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAnnotateEndToEnd(t *testing.T) {
	// Stub VariantValidator: one valid MANE Select transcript per variant.
	validator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		desc := parts[1]
		fmt.Fprintf(w, `{%q: {%q: {
		  "genomic_variant_error": null,
		  "g_hgvs": "NC_000004.12:g.89822254C>T",
		  "hgvs_t_and_p": {
		    "NM_001377265.1": {
		      "t_hgvs": "NM_001377265.1:c.841G>T",
		      "gene_info": {"hgnc_id": "HGNC:11138", "symbol": "SNCA"},
		      "p_hgvs_tlc": "NP_001364194.1:p.(Ala281Ser)"
		    }
		  }
		}}}`, desc, desc)
	}))
	defer validator.Close()

	// Stub ClinVar: one UID with a pathogenic classification.
	clinvar := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/esearch.fcgi":
			fmt.Fprint(w, `{"esearchresult": {"idlist": ["11111"]}}`)
		case "/esummary.fcgi":
			fmt.Fprint(w, `{"result": {"uids": ["11111"], "11111": {
			  "germline_classification": {
			    "description": "Pathogenic",
			    "review_status": "practice guideline",
			    "trait_set": [{"trait_name": "Parkinson disease 1", "trait_xrefs": [{"db_source": "OMIM", "db_id": "168601"}]}]
			  }
			}}}`)
		}
	}))
	defer clinvar.Close()

	dataDir := t.TempDir()
	app := newTestApp(t, dataDir, validator.URL, clinvar.URL)

	input := "Patient_ID,#CHROM,POS,REF,ALT\npatient1,4,89822254,C,T\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "input_data.csv"), []byte(input), 0o644))

	req := httptest.NewRequest(http.MethodPost, "/annotate", nil)
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Pathogenic")
	assert.Contains(t, body, "Parkinson disease 1")
	assert.Contains(t, body, "patient1")

	// Both stage outputs persisted.
	_, err := os.Stat(filepath.Join(dataDir, "validated_data.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dataDir, "anno_data.csv"))
	assert.NoError(t, err)
}
