package azul

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// testClient points a Client at a local test server.
func testClient(url string) *Client {
	return &Client{
		cfg: Config{
			MerchantID:  "39038540035",
			Auth1:       "auth-one",
			Auth2:       "auth-two",
			Channel:     "EC",
			Environment: "sandbox",
		},
		base: url,
		http: http.DefaultClient,
	}
}

func TestProcessSaleRequestShape(t *testing.T) {
	var got map[string]string
	var auth1, auth2 string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth1 = r.Header.Get("Auth1")
		auth2 = r.Header.Get("Auth2")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(Response{IsoCode: "00", AzulOrderId: "12345", AuthorizationCode: "OK1234"})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	resp, err := c.ProcessSale(context.Background(), SaleRequest{
		CardNumber:      "4111111111111111",
		Expiration:      "202812",
		CVC:             "123",
		AmountCents:     30090,
		ItbisCents:      4590,
		CustomOrderID:   "ORDER-1",
		SaveToDataVault: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if auth1 != "auth-one" || auth2 != "auth-two" {
		t.Errorf("auth headers = %q/%q, want auth-one/auth-two", auth1, auth2)
	}
	want := map[string]string{
		"Channel":         "EC",
		"Store":           "39038540035",
		"TrxType":         "Sale",
		"Amount":          "30090",
		"Itbis":           "4590",
		"SaveToDataVault": "1",
		"PosInputMode":    "E-Commerce",
		"CustomOrderId":   "ORDER-1",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("field %s = %q, want %q", k, got[k], v)
		}
	}
	if !IsApproved(resp) {
		t.Errorf("expected approved response")
	}
}

func TestProcessTokenSaleSendsToken(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(Response{IsoCode: "00"})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	if _, err := c.ProcessTokenSale(context.Background(), "vault-token-1", 30090, 4590, "REC-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got["DataVaultToken"] != "vault-token-1" {
		t.Errorf("DataVaultToken = %q, want vault-token-1", got["DataVaultToken"])
	}
	if got["TrxType"] != "Sale" {
		t.Errorf("TrxType = %q, want Sale", got["TrxType"])
	}
	if got["CardNumber"] != "" {
		t.Errorf("token sale must not carry a card number, got %q", got["CardNumber"])
	}
}

func TestServerErrorIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	if _, err := c.ProcessTokenSale(context.Background(), "tok", 100, 18, "X"); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		iso      string
		approved bool
		threeDS  bool
	}{
		{"00", true, false},
		{"3D", false, true},
		{"3D2METHOD", false, true},
		{"51", false, false},
		{"99", false, false},
	}
	for _, tt := range tests {
		r := &Response{IsoCode: tt.iso}
		if IsApproved(r) != tt.approved {
			t.Errorf("IsApproved(%q) = %v, want %v", tt.iso, IsApproved(r), tt.approved)
		}
		if Requires3DS(r) != tt.threeDS {
			t.Errorf("Requires3DS(%q) = %v, want %v", tt.iso, Requires3DS(r), tt.threeDS)
		}
	}
	if IsApproved(nil) || Requires3DS(nil) {
		t.Error("nil response must classify as neither approved nor 3DS")
	}
}

func TestErrorMessagePrecedence(t *testing.T) {
	tests := []struct {
		name string
		resp *Response
		want string
	}{
		{"nil", nil, "Error desconocido"},
		{"description wins", &Response{ErrorDescription: "VALIDATION ERROR", IsoCode: "51"}, "VALIDATION ERROR"},
		{"iso map", &Response{IsoCode: "51"}, "Fondos insuficientes"},
		{"expired card", &Response{IsoCode: "54"}, "Tarjeta expirada"},
		{"response message fallback", &Response{IsoCode: "XX", ResponseMessage: "DECLINED"}, "DECLINED"},
		{"generic fallback", &Response{IsoCode: "XX"}, "Error desconocido"},
	}
	for _, tt := range tests {
		if got := ErrorMessage(tt.resp); got != tt.want {
			t.Errorf("%s: ErrorMessage = %q, want %q", tt.name, got, tt.want)
		}
	}
}
