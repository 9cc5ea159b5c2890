package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fruitbox-be/internal/config"
	"fruitbox-be/internal/logger"
	"fruitbox-be/internal/metrics"

	"go.uber.org/zap"
)

const (
	razorpayBaseURL       = "https://api.razorpay.com"
	defaultGatewayTimeout = 15 * time.Second
	maxResponseBytes      = 1 << 20
)

type razorpayGateway struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

type razorpayOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

type razorpayOrder struct {
	ID         string `json:"id"`
	Entity     string `json:"entity"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"`
	Attempts   int    `json:"attempts"`
	CreatedAt  int64  `json:"created_at"`
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// ----------------- Constructor -----------------

func NewRazorpayGateway(cfg config.RazorpayConfig) Gateway {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		logger.L().Warn("Razorpay credentials are incomplete")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}

	return &razorpayGateway{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   razorpayBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ----------------- CreateOrder -----------------

func (g *razorpayGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*ProviderOrder, error) {
	log := logger.FromCtx(ctx).With(
		zap.Int64("amount", amountMinor),
		zap.String("currency", currency),
		zap.String("receipt", receipt),
	)

	body, err := json.Marshal(razorpayOrderRequest{
		Amount:         amountMinor,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		log.Error("Failed to marshal order request", zap.Error(err))
		return nil, fmt.Errorf("%w: encode request: %v", ErrGateway, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, fmt.Errorf("%w: build request: %v", ErrGateway, err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Info("Sending order request to Razorpay")

	order, err := g.do(req, "create_order", log)
	if err != nil {
		return nil, err
	}

	log.Info("Razorpay order created",
		zap.String("provider_order_id", order.ID),
		zap.String("status", order.Status),
	)

	return order.toProviderOrder(g.keyID), nil
}

// ----------------- FetchOrder -----------------

func (g *razorpayGateway) FetchOrder(ctx context.Context, providerOrderID string) (*ProviderOrder, error) {
	log := logger.FromCtx(ctx).With(zap.String("provider_order_id", providerOrderID))

	endpoint := g.baseURL + "/v1/orders/" + url.PathEscape(providerOrderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Error("Failed building request", zap.Error(err))
		return nil, fmt.Errorf("%w: build request: %v", ErrGateway, err)
	}

	order, err := g.do(req, "fetch_order", log)
	if err != nil {
		return nil, err
	}
	return order.toProviderOrder(g.keyID), nil
}

// do sends an authenticated request and decodes an order entity. Every
// failure is wrapped in ErrGateway; provider bodies are logged, not returned.
func (g *razorpayGateway) do(req *http.Request, operation string, log *zap.Logger) (*razorpayOrder, error) {
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Set("Accept", "application/json")

	timer := metrics.StartTimer()

	resp, err := g.httpClient.Do(req)
	if err != nil {
		timer.ObserveGateway(operation, "transport_error")
		if isTimeout(err) {
			log.Error("Razorpay request timed out", zap.Duration("elapsed", timer.Duration()))
			return nil, fmt.Errorf("%w: request timed out", ErrGateway)
		}
		log.Error("Razorpay request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		timer.ObserveGateway(operation, "read_error")
		log.Error("Failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("%w: read response: %v", ErrGateway, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		timer.ObserveGateway(operation, fmt.Sprintf("%d", resp.StatusCode))

		var apiErr razorpayError
		_ = json.Unmarshal(bodyBytes, &apiErr)
		log.Error("Razorpay returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("error_code", apiErr.Error.Code),
			zap.ByteString("response", bodyBytes),
		)
		return nil, fmt.Errorf("%w: provider responded with status %d", ErrGateway, resp.StatusCode)
	}

	var order razorpayOrder
	if err := json.Unmarshal(bodyBytes, &order); err != nil {
		timer.ObserveGateway(operation, "decode_error")
		log.Error("Failed decoding Razorpay response", zap.Error(err))
		return nil, fmt.Errorf("%w: decode response: %v", ErrGateway, err)
	}
	if order.ID == "" {
		timer.ObserveGateway(operation, "decode_error")
		log.Error("Razorpay response has no order id", zap.ByteString("response", bodyBytes))
		return nil, fmt.Errorf("%w: response missing order id", ErrGateway)
	}

	timer.ObserveGateway(operation, "ok")
	return &order, nil
}

func (o *razorpayOrder) toProviderOrder(keyID string) *ProviderOrder {
	return &ProviderOrder{
		ProviderOrderID: o.ID,
		Receipt:         o.Receipt,
		AmountMinor:     o.Amount,
		Currency:        o.Currency,
		Status:          o.Status,
		KeyID:           keyID,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
