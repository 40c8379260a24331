// Package azul is a client for the Azul payment gateway's Webservices JSON
// API (https://dev.azul.com.do). It translates domain payment intents into
// signed HTTP requests and classifies the gateway's responses.
//
// Transport and HTTP-level failures are returned as errors; business
// declines are well-formed responses the caller must branch on via the
// classifier functions.
package azul

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Gateway is the interface the workflows charge through. *Client is the
// real implementation; tests supply a mock.
type Gateway interface {
	ProcessSale(ctx context.Context, req SaleRequest) (*Response, error)
	ProcessTokenSale(ctx context.Context, token string, amountCents, itbisCents int, customOrderID string) (*Response, error)
	CreateToken(ctx context.Context, cardNumber, expiration, cvc string) (*Response, error)
	DeleteToken(ctx context.Context, token string) (*Response, error)
	VerifyTransaction(ctx context.Context, azulOrderID string) (*Response, error)
}

// Config holds the static gateway credentials, supplied at construction
// and validated once at startup.
type Config struct {
	MerchantID  string // Store/Merchant ID provided by Azul
	Auth1       string // authentication key 1, sent as a request header
	Auth2       string // authentication key 2, sent as a request header
	Channel     string // "EC" for e-commerce
	Environment string // "sandbox" or "production"
}

// Validate checks that all required credentials are present.
func (c Config) Validate() error {
	if c.MerchantID == "" || c.Auth1 == "" || c.Auth2 == "" {
		return fmt.Errorf("azul: MerchantID, Auth1 and Auth2 are required")
	}
	if c.Environment != "sandbox" && c.Environment != "production" {
		return fmt.Errorf("azul: environment must be sandbox or production, got %q", c.Environment)
	}
	return nil
}

// SaleRequest is a one-time sale, optionally vaulting the card for future
// token sales. Amount and Itbis are integer cents, pre-computed by the
// caller; the client performs no rounding itself.
type SaleRequest struct {
	CardNumber      string
	Expiration      string // YYYYMM
	CVC             string
	AmountCents     int
	ItbisCents      int
	OrderNumber     string
	CustomOrderID   string
	SaveToDataVault bool
	DataVaultToken  string // charge a saved card instead of raw card data
}

// RecurringRequest asks the gateway to schedule recurring charges on its
// side. Not used by the batch billing workflow (which charges saved tokens
// itself) but exposed for explicit recurring setups.
type RecurringRequest struct {
	CardNumber    string
	Expiration    string
	CVC           string
	AmountCents   int
	ItbisCents    int
	Frequency     string // "daily", "weekly" or "monthly"
	StartDate     time.Time
	EndDate       *time.Time
	CustomOrderID string
}

// Response is the gateway's JSON response envelope.
type Response struct {
	IsoCode             string           `json:"IsoCode"`
	ResponseMessage     string           `json:"ResponseMessage"`
	AuthorizationCode   string           `json:"AuthorizationCode"`
	AzulOrderId         string           `json:"AzulOrderId"`
	DateTime            string           `json:"DateTime"`
	RRN                 string           `json:"RRN"`
	CustomOrderId       string           `json:"CustomOrderId"`
	DataVaultToken      string           `json:"DataVaultToken"`
	DataVaultExpiration string           `json:"DataVaultExpiration"`
	DataVaultBrand      string           `json:"DataVaultBrand"`
	ErrorDescription    string           `json:"ErrorDescription"`
	Ticket              string           `json:"Ticket"`
	LotNumber           string           `json:"LotNumber"`
	ThreeDSMethod       *ThreeDSMethod   `json:"ThreeDSMethod,omitempty"`
	ThreeDSChallenge    *ThreeDSChallenge `json:"ThreeDSChallenge,omitempty"`
}

// ThreeDSMethod carries the hidden-iframe method form for 3DS device
// fingerprinting.
type ThreeDSMethod struct {
	MethodForm string `json:"MethodForm"`
}

// ThreeDSChallenge carries the step-up challenge the cardholder must
// complete before authorization.
type ThreeDSChallenge struct {
	CReq            string `json:"CReq"`
	RedirectPostUrl string `json:"RedirectPostUrl"`
	MD              string `json:"MD,omitempty"`
	PaReq           string `json:"PaReq,omitempty"`
}

const (
	sandboxBase    = "https://pruebas.azul.com.do/WebServices/JSON/default.aspx"
	productionBase = "https://pagos.azul.com.do/WebServices/JSON/default.aspx"
)

// Client talks to the Azul Webservices API. It holds no state beyond its
// configuration.
type Client struct {
	cfg  Config
	base string
	http *http.Client
}

// New creates a gateway client. The configuration must already be
// validated.
func New(cfg Config) *Client {
	base := sandboxBase
	if cfg.Environment == "production" {
		base = productionBase
	}
	return &Client{
		cfg:  cfg,
		base: base,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) makeRequest(ctx context.Context, url string, fields map[string]string) (*Response, error) {
	body := map[string]string{
		"Channel": c.cfg.Channel,
		"Store":   c.cfg.MerchantID,
	}
	for k, v := range fields {
		body[k] = v
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("azul: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("azul: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Auth1", c.cfg.Auth1)
	req.Header.Set("Auth2", c.cfg.Auth2)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azul: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("azul: API error: %d %s", resp.StatusCode, resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("azul: read response: %w", err)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("azul: decode response: %w", err)
	}
	return &out, nil
}

// ProcessSale processes a one-time sale, optionally saving the card to the
// DataVault.
func (c *Client) ProcessSale(ctx context.Context, req SaleRequest) (*Response, error) {
	save := "0"
	if req.SaveToDataVault {
		save = "1"
	}
	return c.makeRequest(ctx, c.base, map[string]string{
		"CardNumber":      req.CardNumber,
		"Expiration":      req.Expiration,
		"CVC":             req.CVC,
		"PosInputMode":    "E-Commerce",
		"TrxType":         "Sale",
		"Amount":          strconv.Itoa(req.AmountCents),
		"Itbis":           strconv.Itoa(req.ItbisCents),
		"OrderNumber":     req.OrderNumber,
		"CustomOrderId":   req.CustomOrderID,
		"SaveToDataVault": save,
		"DataVaultToken":  req.DataVaultToken,
	})
}

// ProcessTokenSale charges a previously saved DataVault token.
func (c *Client) ProcessTokenSale(ctx context.Context, token string, amountCents, itbisCents int, customOrderID string) (*Response, error) {
	return c.makeRequest(ctx, c.base, map[string]string{
		"DataVaultToken": token,
		"PosInputMode":   "E-Commerce",
		"TrxType":        "Sale",
		"Amount":         strconv.Itoa(amountCents),
		"Itbis":          strconv.Itoa(itbisCents),
		"CustomOrderId":  customOrderID,
	})
}

// CreateRecurring registers a gateway-side recurring subscription.
func (c *Client) CreateRecurring(ctx context.Context, req RecurringRequest) (*Response, error) {
	fields := map[string]string{
		"CardNumber":    req.CardNumber,
		"Expiration":    req.Expiration,
		"CVC":           req.CVC,
		"PosInputMode":  "E-Commerce",
		"Amount":        strconv.Itoa(req.AmountCents),
		"Itbis":         strconv.Itoa(req.ItbisCents),
		"StartDate":     req.StartDate.Format("20060102"),
		"CustomOrderId": req.CustomOrderID,
	}
	if req.EndDate != nil {
		fields["EndDate"] = req.EndDate.Format("20060102")
	} else {
		fields["EndDate"] = ""
	}

	switch req.Frequency {
	case "daily":
		fields["ScheduleType"] = "D"
		fields["TotalRecurrence"] = "0" // 0 = unlimited
	case "weekly":
		fields["ScheduleType"] = "W"
		fields["DayOfWeek"] = strconv.Itoa(int(req.StartDate.Weekday()))
		fields["TotalRecurrence"] = "0"
	case "monthly":
		fields["ScheduleType"] = "M"
		fields["DayOfMonth"] = strconv.Itoa(req.StartDate.Day())
		fields["TotalRecurrence"] = "0"
	default:
		return nil, fmt.Errorf("azul: unknown frequency %q", req.Frequency)
	}

	return c.makeRequest(ctx, c.base+"?recurringsubscriptioncreate", fields)
}

// CreateToken saves a card to the DataVault without charging it.
func (c *Client) CreateToken(ctx context.Context, cardNumber, expiration, cvc string) (*Response, error) {
	return c.makeRequest(ctx, c.base+"?ProcessDataVault", map[string]string{
		"CardNumber": cardNumber,
		"Expiration": expiration,
		"CVC":        cvc,
		"TrxType":    "CREATE",
	})
}

// DeleteToken removes a saved card from the DataVault.
func (c *Client) DeleteToken(ctx context.Context, token string) (*Response, error) {
	return c.makeRequest(ctx, c.base+"?ProcessDataVault", map[string]string{
		"DataVaultToken": token,
		"TrxType":        "DELETE",
	})
}

// VerifyTransaction checks the outcome of a transaction by its AzulOrderId.
// Used to resume 3DS step-up flows.
func (c *Client) VerifyTransaction(ctx context.Context, azulOrderID string) (*Response, error) {
	return c.makeRequest(ctx, c.base+"?VerifyPayment", map[string]string{
		"AzulOrderId": azulOrderID,
	})
}

// IsApproved reports whether the gateway approved the transaction.
func IsApproved(r *Response) bool {
	return r != nil && r.IsoCode == "00"
}

// Requires3DS reports whether the gateway is demanding 3-D-Secure
// authentication before it will authorize.
func Requires3DS(r *Response) bool {
	return r != nil && (r.IsoCode == "3D" || r.IsoCode == "3D2METHOD")
}

var isoMessages = map[string]string{
	"00": "Transacción aprobada",
	"01": "Referir a emisor",
	"02": "Referir a emisor",
	"03": "Comercio inválido",
	"04": "Tarjeta retenida",
	"05": "Transacción rechazada",
	"12": "Transacción inválida",
	"13": "Monto inválido",
	"14": "Tarjeta inválida",
	"51": "Fondos insuficientes",
	"54": "Tarjeta expirada",
	"55": "PIN incorrecto",
	"57": "Transacción no permitida",
	"58": "Transacción no permitida para terminal",
	"61": "Excede límite de retiro",
	"62": "Tarjeta restringida",
	"65": "Excede límite de frecuencia",
	"75": "Excede intentos de PIN",
	"78": "Tarjeta no activada",
	"91": "Emisor no disponible",
	"96": "Error del sistema",
	"99": "Transacción declinada",
}

// ErrorMessage maps a response to a human-readable reason: the gateway's
// own description first, then the fixed IsoCode map, then the raw response
// message, then a generic fallback.
func ErrorMessage(r *Response) string {
	if r == nil {
		return "Error desconocido"
	}
	if r.ErrorDescription != "" {
		return r.ErrorDescription
	}
	if msg, ok := isoMessages[r.IsoCode]; ok {
		return msg
	}
	if r.ResponseMessage != "" {
		return r.ResponseMessage
	}
	return "Error desconocido"
}
