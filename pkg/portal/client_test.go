package portal

import (
	"Apoteka-Backend/domain"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const landingPageFixture = `<!DOCTYPE html>
<html>
<head><title>Фискални рачун</title></head>
<body>
<script type="text/javascript">
    var viewModel = new InvoiceViewModel();
    viewModel.InvoiceNumber('AB12CD34-AB12CD34-1234');
    viewModel.Token("f81f1cbe-3e84-4bd9-a96d-668f1e7a1b3f");
    ko.applyBindings(viewModel);
</script>
</body>
</html>`

func TestFetchInvoiceExtractsIdentifiers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "ASP.NET_SessionId=abc123; path=/; HttpOnly")
		w.Write([]byte(landingPageFixture))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	jar := NewCookieJar()

	ref, err := client.FetchInvoice(context.Background(), server.URL+"/v/?vl=xyz", jar)
	if err != nil {
		t.Fatalf("FetchInvoice returned error: %v", err)
	}

	if ref.InvoiceNumber != "AB12CD34-AB12CD34-1234" {
		t.Errorf("InvoiceNumber = %q, expected %q", ref.InvoiceNumber, "AB12CD34-AB12CD34-1234")
	}
	if ref.Token != "f81f1cbe-3e84-4bd9-a96d-668f1e7a1b3f" {
		t.Errorf("Token = %q, expected %q", ref.Token, "f81f1cbe-3e84-4bd9-a96d-668f1e7a1b3f")
	}

	if !strings.Contains(jar.Serialize(), "ASP.NET_SessionId=abc123") {
		t.Errorf("jar = %q, expected captured session cookie", jar.Serialize())
	}
}

func TestFetchInvoiceIsDeterministic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(landingPageFixture))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	first, err := client.FetchInvoice(context.Background(), server.URL, NewCookieJar())
	if err != nil {
		t.Fatalf("first FetchInvoice returned error: %v", err)
	}
	second, err := client.FetchInvoice(context.Background(), server.URL, NewCookieJar())
	if err != nil {
		t.Fatalf("second FetchInvoice returned error: %v", err)
	}

	if *first != *second {
		t.Errorf("repeated parses diverged: %+v vs %+v", first, second)
	}
}

func TestFetchInvoiceFailures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expectedErr error
		detail      string
	}{
		{
			name:        "portal error status",
			status:      http.StatusInternalServerError,
			body:        "server error",
			expectedErr: domain.ErrPortalFetchFailed,
		},
		{
			name:        "invoice number missing",
			status:      http.StatusOK,
			body:        `<script>viewModel.Token('TOK1');</script>`,
			expectedErr: domain.ErrExtractionFailed,
			detail:      "invoice number",
		},
		{
			name:        "token missing",
			status:      http.StatusOK,
			body:        `<script>viewModel.InvoiceNumber('INV1');</script>`,
			expectedErr: domain.ErrExtractionFailed,
			detail:      "token",
		},
		{
			name:        "stale page without either identifier",
			status:      http.StatusOK,
			body:        `<html><body>Рачун није пронађен</body></html>`,
			expectedErr: domain.ErrExtractionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL)
			_, err := client.FetchInvoice(context.Background(), server.URL, NewCookieJar())
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("FetchInvoice error = %v, expected %v", err, tt.expectedErr)
			}
			if tt.detail != "" && !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("error %q does not name the missing identifier %q", err, tt.detail)
			}
		})
	}
}

func TestFetchInvoiceNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(server.URL)
	_, err := client.FetchInvoice(context.Background(), server.URL, NewCookieJar())
	if !errors.Is(err, domain.ErrNetworkFailure) {
		t.Fatalf("FetchInvoice error = %v, expected %v", err, domain.ErrNetworkFailure)
	}
}

func TestFetchSpecifications(t *testing.T) {
	var gotForm map[string]string
	var gotCookie, gotReferer string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/specifications" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
			return
		}
		gotForm = map[string]string{
			"invoiceNumber": r.PostFormValue("invoiceNumber"),
			"token":         r.PostFormValue("token"),
		}
		gotCookie = r.Header.Get("Cookie")
		gotReferer = r.Header.Get("Referer")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"items":[{"gtin":"8600097101011","name":"Lek A","quantity":2,"total":300,"unitPrice":150,"label":"Ђ","labelRate":20,"taxBaseAmount":250,"vatAmount":50}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	jar := NewCookieJar()
	jar.Ingest([]string{"ASP.NET_SessionId=abc123; path=/"})

	receiptURL := server.URL + "/v/?vl=xyz"
	ref := &domain.InvoiceReference{InvoiceNumber: "INV1", Token: "TOK1"}

	specs, err := client.FetchSpecifications(context.Background(), receiptURL, ref, jar)
	if err != nil {
		t.Fatalf("FetchSpecifications returned error: %v", err)
	}

	if gotForm["invoiceNumber"] != "INV1" || gotForm["token"] != "TOK1" {
		t.Errorf("form = %v, expected invoiceNumber=INV1 token=TOK1", gotForm)
	}
	if !strings.Contains(gotCookie, "ASP.NET_SessionId=abc123") || !strings.Contains(gotCookie, "localization=") {
		t.Errorf("Cookie header = %q, expected replayed session and localization cookies", gotCookie)
	}
	if gotReferer != receiptURL {
		t.Errorf("Referer = %q, expected %q", gotReferer, receiptURL)
	}

	if len(specs.Items) != 1 {
		t.Fatalf("len(items) = %d, expected 1", len(specs.Items))
	}
	item := specs.Items[0]
	if item.Name != "Lek A" || item.Quantity != 2 || item.Total != 300 || item.UnitPrice != 150 {
		t.Errorf("unexpected item: %+v", item)
	}
}

func TestFetchSpecificationsFailures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expectedErr error
	}{
		{
			name:        "portal error status",
			status:      http.StatusBadRequest,
			body:        "bad request",
			expectedErr: domain.ErrPortalFetchFailed,
		},
		{
			name:        "html error page instead of json",
			status:      http.StatusOK,
			body:        "<html>session expired</html>",
			expectedErr: domain.ErrMalformedResponse,
		},
		{
			name:        "expired token rejected upstream",
			status:      http.StatusOK,
			body:        `{"success":false}`,
			expectedErr: domain.ErrUpstreamRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL)
			ref := &domain.InvoiceReference{InvoiceNumber: "INV1", Token: "TOK1"}
			_, err := client.FetchSpecifications(context.Background(), server.URL, ref, NewCookieJar())
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("FetchSpecifications error = %v, expected %v", err, tt.expectedErr)
			}
		})
	}
}
