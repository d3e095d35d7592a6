package annotate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultEutilsBase is the NCBI eutils endpoint serving ClinVar.
	DefaultEutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultRateLimit keeps request spacing at or above the ~0.34s NCBI
	// asks for (about 3 requests per second).
	DefaultRateLimit = 3

	clinvarDB = "clinvar"
)

// ClinVarClient queries the ClinVar esearch and esummary endpoints.
// Unlike the validation client, transport failures here are logged and
// swallowed: a missing annotation is a non-fatal enrichment gap.
type ClinVarClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClinVarClient creates a ClinVar client. An empty baseURL selects the
// public eutils endpoint; requestsPerSecond <= 0 selects the default limit.
func NewClinVarClient(baseURL string, requestsPerSecond float64) *ClinVarClient {
	if baseURL == "" {
		baseURL = DefaultEutilsBase
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRateLimit
	}

	return &ClinVarClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and error messages.
func (c *ClinVarClient) SetLogger(l *zap.Logger) {
	c.logger = l
}

// getJSON performs a paced GET against one eutils endpoint and decodes the
// JSON response into out.
func (c *ClinVarClient) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// SearchHGVS queries ClinVar with an HGVS expression and returns the
// matching UIDs, possibly empty. Failures are logged with full context and
// reported as no matches.
func (c *ClinVarClient) SearchHGVS(ctx context.Context, hgvs string) []string {
	params := url.Values{}
	params.Set("db", clinvarDB)
	params.Set("term", hgvs)
	params.Set("retmode", "json")

	var payload struct {
		ESearchResult struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := c.getJSON(ctx, "esearch.fcgi", params, &payload); err != nil {
		c.logger.Error("failed to search ClinVar",
			zap.String("endpoint", "esearch.fcgi"),
			zap.String("term", hgvs),
			zap.Error(err))
		return nil
	}

	return payload.ESearchResult.IDList
}

// Summary is the subset of a ClinVar esummary record the pipeline uses.
// Recent records carry germline_classification; older ones only the legacy
// clinical_significance object.
type Summary struct {
	GermlineClassification *Classification `json:"germline_classification"`
	ClinicalSignificance   *Classification `json:"clinical_significance"`
}

// Classification is the consensus call for one variant.
type Classification struct {
	Description  string  `json:"description"`
	ReviewStatus string  `json:"review_status"`
	TraitSet     []Trait `json:"trait_set"`
}

func (c *Classification) isEmpty() bool {
	return c.Description == "" && c.ReviewStatus == "" && len(c.TraitSet) == 0
}

// Trait is one disease/condition associated with a classification.
type Trait struct {
	TraitName  string      `json:"trait_name"`
	TraitXRefs []TraitXRef `json:"trait_xrefs"`
}

// TraitXRef links a trait to an external disease ontology entry.
type TraitXRef struct {
	DBSource string `json:"db_source"`
	DBID     string `json:"db_id"`
}

// FetchSummary retrieves the esummary record for one UID. A UID absent
// from the response payload yields an empty Summary (no data, not an
// error), as do transport failures, which are logged.
func (c *ClinVarClient) FetchSummary(ctx context.Context, uid string) Summary {
	params := url.Values{}
	params.Set("db", clinvarDB)
	params.Set("id", uid)
	params.Set("retmode", "json")

	// result holds the per-UID records plus a "uids" index array, so the
	// values cannot be decoded uniformly.
	var payload struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := c.getJSON(ctx, "esummary.fcgi", params, &payload); err != nil {
		c.logger.Error("failed to fetch ClinVar esummary",
			zap.String("endpoint", "esummary.fcgi"),
			zap.String("uid", uid),
			zap.Error(err))
		return Summary{}
	}

	raw, ok := payload.Result[uid]
	if !ok {
		return Summary{}
	}

	var summary Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		c.logger.Error("failed to decode ClinVar esummary",
			zap.String("uid", uid),
			zap.Error(err))
		return Summary{}
	}
	return summary
}
