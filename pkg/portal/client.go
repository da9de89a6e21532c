// Package portal is the HTTP client for the government fiscal receipt
// portal. A scanned receipt URL leads to a server-rendered page whose
// inline script binds the invoice number and a short-lived access
// token; a follow-up form POST with the same session cookies returns
// the structured line items. The portal is not an API and degrades
// requests without plausible browser headers, so both calls carry a
// fixed Chrome header set.
package portal

import (
	"Apoteka-Backend/domain"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const DefaultBaseURL = "https://suf.purs.gov.rs"

const requestTimeout = 15 * time.Second

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36"

var (
	invoiceNumberPattern = regexp.MustCompile(`viewModel\.InvoiceNumber\(['"]([^'"]+)['"]\)`)
	tokenPattern         = regexp.MustCompile(`viewModel\.Token\(['"]([^'"]+)['"]\)`)
)

type (
	Client interface {
		// Host reports the portal host, used by callers for the cheap
		// receipt URL precondition before any network call.
		Host() string

		// FetchInvoice loads the receipt landing page, feeds its
		// Set-Cookie headers into jar and extracts the invoice number
		// and access token from the embedded script.
		FetchInvoice(ctx context.Context, receiptURL string, jar *CookieJar) (*domain.InvoiceReference, error)

		// FetchSpecifications replays the session cookies with the
		// extracted identifiers and returns the parsed line items.
		// Tokens are single-use and short-lived; a rejection means the
		// caller needs a fresh scan, not a retry.
		FetchSpecifications(ctx context.Context, receiptURL string, ref *domain.InvoiceReference, jar *CookieJar) (*domain.ReceiptSpecifications, error)
	}

	client struct {
		baseURL    string
		host       string
		httpClient *http.Client
	}
)

func NewClient(baseURL string) Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	host := baseURL
	if parsed, err := url.Parse(baseURL); err == nil && parsed.Host != "" {
		host = parsed.Host
	}
	return &client{
		baseURL:    baseURL,
		host:       host,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (c *client) Host() string {
	return c.host
}

func (c *client) FetchInvoice(ctx context.Context, receiptURL string, jar *CookieJar) (*domain.InvoiceReference, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, receiptURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	setBrowserHeaders(req)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %s", domain.ErrPortalFetchFailed, resp.Status)
	}

	jar.Ingest(resp.Header.Values("Set-Cookie"))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}

	invoiceMatch := invoiceNumberPattern.FindSubmatch(body)
	tokenMatch := tokenPattern.FindSubmatch(body)

	if invoiceMatch == nil && tokenMatch == nil {
		return nil, fmt.Errorf("%w: invoice number and token not found", domain.ErrExtractionFailed)
	}
	if invoiceMatch == nil {
		return nil, fmt.Errorf("%w: invoice number not found", domain.ErrExtractionFailed)
	}
	if tokenMatch == nil {
		return nil, fmt.Errorf("%w: token not found", domain.ErrExtractionFailed)
	}

	return &domain.InvoiceReference{
		InvoiceNumber: string(invoiceMatch[1]),
		Token:         string(tokenMatch[1]),
	}, nil
}

func (c *client) FetchSpecifications(ctx context.Context, receiptURL string, ref *domain.InvoiceReference, jar *CookieJar) (*domain.ReceiptSpecifications, error) {
	form := url.Values{}
	form.Set("invoiceNumber", ref.InvoiceNumber)
	form.Set("token", ref.Token)

	specsURL := c.baseURL + "/specifications"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, specsURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	setBrowserHeaders(req)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Cookie", jar.Serialize())
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Referer", receiptURL)
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %s", domain.ErrPortalFetchFailed, resp.Status)
	}

	var specs domain.ReceiptSpecifications
	if err := json.NewDecoder(resp.Body).Decode(&specs); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	if !specs.Success {
		return nil, domain.ErrUpstreamRejected
	}

	return &specs, nil
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,sr;q=0.8")
	req.Header.Set("Sec-Ch-Ua", `"Chromium";v="136", "Brave";v="136", "Not.A/Brand";v="99"`)
	req.Header.Set("Sec-Ch-Ua-Mobile", "?0")
	req.Header.Set("Sec-Ch-Ua-Platform", `"Windows"`)
	req.Header.Set("Sec-Gpc", "1")
	req.Header.Set("User-Agent", userAgent)
}
