package annotate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchHGVS(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/esearch.fcgi", r.URL.Path)
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"esearchresult": {"count": "2", "idlist": ["11111", "22222"]}}`)
	}))
	defer ts.Close()

	c := NewClinVarClient(ts.URL, 1000)
	uids := c.SearchHGVS(context.Background(), "NM_001377265.1:c.841G>T")

	assert.Equal(t, []string{"11111", "22222"}, uids)
	assert.Contains(t, gotQuery, "db=clinvar")
	assert.Contains(t, gotQuery, "retmode=json")
}

func TestSearchHGVSNoMatches(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"esearchresult": {"count": "0", "idlist": []}}`)
	}))
	defer ts.Close()

	c := NewClinVarClient(ts.URL, 1000)
	assert.Empty(t, c.SearchHGVS(context.Background(), "NM_1:c.1A>T"))
}

func TestSearchHGVSTransportFailureReturnsEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewClinVarClient(ts.URL, 1000)
	assert.Empty(t, c.SearchHGVS(context.Background(), "NM_1:c.1A>T"))
}

func TestSearchHGVSNetworkFailureReturnsEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused

	c := NewClinVarClient(ts.URL, 1000)
	assert.Empty(t, c.SearchHGVS(context.Background(), "NM_1:c.1A>T"))
}

func TestFetchSummary(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/esummary.fcgi", r.URL.Path)
		assert.Equal(t, "11111", r.URL.Query().Get("id"))
		fmt.Fprint(w, `{
		  "result": {
		    "uids": ["11111"],
		    "11111": {
		      "germline_classification": {
		        "description": "Pathogenic",
		        "review_status": "practice guideline",
		        "trait_set": [
		          {"trait_name": "Example Disease", "trait_xrefs": [{"db_source": "OMIM", "db_id": "123456"}]}
		        ]
		      }
		    }
		  }
		}`)
	}))
	defer ts.Close()

	c := NewClinVarClient(ts.URL, 1000)
	summary := c.FetchSummary(context.Background(), "11111")

	require.NotNil(t, summary.GermlineClassification)
	assert.Equal(t, "Pathogenic", summary.GermlineClassification.Description)
	require.Len(t, summary.GermlineClassification.TraitSet, 1)
	assert.Equal(t, "Example Disease", summary.GermlineClassification.TraitSet[0].TraitName)
}

func TestFetchSummaryMissingUIDIsEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result": {"uids": []}}`)
	}))
	defer ts.Close()

	c := NewClinVarClient(ts.URL, 1000)
	summary := c.FetchSummary(context.Background(), "99999")

	assert.Nil(t, summary.GermlineClassification)
	assert.Nil(t, summary.ClinicalSignificance)
}

func TestFetchSummaryTransportFailureIsEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer ts.Close()

	c := NewClinVarClient(ts.URL, 1000)
	summary := c.FetchSummary(context.Background(), "11111")

	assert.Nil(t, summary.GermlineClassification)
}
