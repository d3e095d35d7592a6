// Package validate normalizes raw genomic coordinates into HGVS
// nomenclature via the VariantValidator LOVD endpoint.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the VariantValidator LOVD endpoint.
	DefaultBaseURL = "https://rest.variantvalidator.org/LOVD/lovd"

	// DefaultRateLimit is the maximum requests per second permitted by
	// VariantValidator.
	DefaultRateLimit = 4

	transcriptModel   = "refseq"
	selectTranscripts = "mane_select"
)

// TransportError reports a network or HTTP-level failure talking to
// VariantValidator. Transport failures abort the validation batch;
// business failures are carried in Result instead.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("variantvalidator request failed: %v", e.Err)
	}
	return fmt.Sprintf("variantvalidator request %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Result is the outcome of normalizing one variant. FailureReason is set
// when the service responded but could not validate the variant; in that
// case all other fields are empty.
type Result struct {
	GHGVS    string
	THGVS    string
	HGNCID   string
	Symbol   string
	PHGVSTLC string

	FailureReason string
}

// OK reports whether the variant was validated.
func (r *Result) OK() bool { return r.FailureReason == "" }

// Client calls the VariantValidator LOVD endpoint. Requests are paced so
// successive calls stay under the service's rate limit.
type Client struct {
	baseURL     string
	genomeBuild string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a VariantValidator client for the given genome build.
// An empty baseURL selects the public endpoint; requestsPerSecond <= 0
// selects the default limit.
func NewClient(baseURL, genomeBuild string, requestsPerSecond float64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRateLimit
	}

	return &Client{
		baseURL:     baseURL,
		genomeBuild: genomeBuild,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and info messages.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

// lovdVariant is the per-descriptor object inside the LOVD response.
type lovdVariant struct {
	GenomicVariantError *string                   `json:"genomic_variant_error"`
	GHGVS               string                    `json:"g_hgvs"`
	HGVSTAndP           map[string]lovdTranscript `json:"hgvs_t_and_p"`
}

type lovdTranscript struct {
	THGVS    string `json:"t_hgvs"`
	GeneInfo struct {
		HGNCID string `json:"hgnc_id"`
		Symbol string `json:"symbol"`
	} `json:"gene_info"`
	PHGVSTLC string `json:"p_hgvs_tlc"`
}

// Normalize resolves a chrom/pos/ref/alt tuple to HGVS nomenclature,
// restricted to the MANE Select transcript. A transport failure returns a
// *TransportError; a variant the service could not validate returns a
// Result carrying the failure reason.
func (c *Client) Normalize(ctx context.Context, chrom string, pos int64, ref, alt string) (*Result, error) {
	desc := fmt.Sprintf("%s-%d-%s-%s", chrom, pos, ref, alt)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Err: err}
	}

	// checkonly and liftover are fixed off; the endpoint takes them as
	// path segments.
	url := fmt.Sprintf("%s/%s/%s/%s/%s/False/False?content-type=application/json",
		c.baseURL, c.genomeBuild, desc, transcriptModel, selectTranscripts)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("variantvalidator request failed", zap.String("variant", desc), zap.Error(err))
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("variantvalidator returned unexpected status",
			zap.String("variant", desc),
			zap.Int("status", resp.StatusCode))
		return nil, &TransportError{
			URL: url,
			Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)),
		}
	}

	// The response nests the per-variant object under the descriptor
	// twice; index explicitly rather than decoding the whole payload.
	var outer map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&outer); err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("decode response: %w", err)}
	}

	rawInner, ok := outer[desc]
	if !ok {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("response missing entry for %q", desc)}
	}

	var inner map[string]json.RawMessage
	if err := json.Unmarshal(rawInner, &inner); err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("decode response: %w", err)}
	}

	rawVariant, ok := inner[desc]
	if !ok {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("response missing nested entry for %q", desc)}
	}

	var lv lovdVariant
	if err := json.Unmarshal(rawVariant, &lv); err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("decode variant object: %w", err)}
	}

	return resultFrom(&lv), nil
}

// resultFrom applies the success conditions: no genomic error and exactly
// one MANE Select transcript mapping.
func resultFrom(lv *lovdVariant) *Result {
	if lv.GenomicVariantError != nil {
		return &Result{FailureReason: *lv.GenomicVariantError}
	}

	if len(lv.HGVSTAndP) != 1 {
		return &Result{
			FailureReason: fmt.Sprintf(
				"expected exactly 1 MANE Select transcript, got %d", len(lv.HGVSTAndP)),
		}
	}

	res := &Result{GHGVS: lv.GHGVS}
	for _, t := range lv.HGVSTAndP {
		res.THGVS = t.THGVS
		res.HGNCID = t.GeneInfo.HGNCID
		res.Symbol = t.GeneInfo.Symbol
		res.PHGVSTLC = t.PHGVSTLC
	}
	return res
}
