package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"fruitbox-be/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func newTestGateway() *razorpayGateway {
	return NewRazorpayGateway(config.RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: testSecret,
		Timeout:   time.Second,
	}).(*razorpayGateway)
}

func TestRazorpayGateway_CreateOrder(t *testing.T) {
	gw := newTestGateway()

	t.Run("Success", func(t *testing.T) {
		respBody := `{
			"id": "order_abc",
			"entity": "order",
			"amount": 25000,
			"amount_paid": 0,
			"amount_due": 25000,
			"currency": "INR",
			"receipt": "rcpt_1",
			"status": "created",
			"attempts": 0,
			"created_at": 1718000000
		}`

		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "https://api.razorpay.com/v1/orders", req.URL.String())

			user, pass, ok := req.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "rzp_test_key", user)
			assert.Equal(t, testSecret, pass)

			var sent map[string]interface{}
			require.NoError(t, json.NewDecoder(req.Body).Decode(&sent))
			assert.Equal(t, float64(25000), sent["amount"])
			assert.Equal(t, "INR", sent["currency"])
			assert.Equal(t, "rcpt_1", sent["receipt"])
			assert.Equal(t, float64(1), sent["payment_capture"])

			return jsonResponse(http.StatusOK, respBody)
		})

		order, err := gw.CreateOrder(context.Background(), 25000, "INR", "rcpt_1")
		require.NoError(t, err)
		assert.Equal(t, "order_abc", order.ProviderOrderID)
		assert.Equal(t, int64(25000), order.AmountMinor)
		assert.Equal(t, "INR", order.Currency)
		assert.Equal(t, "rcpt_1", order.Receipt)
		assert.Equal(t, ProviderStatusCreated, order.Status)
		assert.Equal(t, "rzp_test_key", order.KeyID)
	})

	t.Run("APIError", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusBadRequest,
				`{"error":{"code":"BAD_REQUEST_ERROR","description":"The amount must be atleast INR 1.00"}}`)
		})

		order, err := gw.CreateOrder(context.Background(), 50, "INR", "rcpt_1")
		assert.Nil(t, order)
		assert.ErrorIs(t, err, ErrGateway)
		assert.Contains(t, err.Error(), "400")
		assert.NotContains(t, err.Error(), "atleast")
		assert.NotContains(t, err.Error(), testSecret)
	})

	t.Run("AuthError", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusUnauthorized,
				`{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`)
		})

		_, err := gw.CreateOrder(context.Background(), 25000, "INR", "rcpt_1")
		assert.ErrorIs(t, err, ErrGateway)
	})

	t.Run("NetworkError", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})

		_, err := gw.CreateOrder(context.Background(), 25000, "INR", "rcpt_1")
		assert.ErrorIs(t, err, ErrGateway)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("Timeout", func(t *testing.T) {
		slow := newTestGateway()
		slow.httpClient.Timeout = 20 * time.Millisecond
		slow.httpClient.Transport = MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		})

		start := time.Now()
		order, err := slow.CreateOrder(context.Background(), 25000, "INR", "rcpt_1")

		assert.Nil(t, order)
		assert.ErrorIs(t, err, ErrGateway)
		assert.Contains(t, err.Error(), "timed out")
		assert.NotContains(t, err.Error(), testSecret)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("InvalidJSONResponse", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{invalid-json`)
		})

		_, err := gw.CreateOrder(context.Background(), 25000, "INR", "rcpt_1")
		assert.ErrorIs(t, err, ErrGateway)
	})

	t.Run("MissingOrderID", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{"entity":"order","amount":25000}`)
		})

		_, err := gw.CreateOrder(context.Background(), 25000, "INR", "rcpt_1")
		assert.ErrorIs(t, err, ErrGateway)
	})
}

func TestRazorpayGateway_FetchOrder(t *testing.T) {
	gw := newTestGateway()

	t.Run("Success", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, "https://api.razorpay.com/v1/orders/order_abc", req.URL.String())
			_, _, ok := req.BasicAuth()
			assert.True(t, ok)

			return jsonResponse(http.StatusOK,
				`{"id":"order_abc","amount":25000,"amount_paid":25000,"currency":"INR","status":"paid"}`)
		})

		order, err := gw.FetchOrder(context.Background(), "order_abc")
		require.NoError(t, err)
		assert.Equal(t, ProviderStatusPaid, order.Status)
	})

	t.Run("EscapesID", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, "/v1/orders/order%2F..%2Fpayments", req.URL.EscapedPath())
			return jsonResponse(http.StatusNotFound, `{"error":{"code":"BAD_REQUEST_ERROR"}}`)
		})

		_, err := gw.FetchOrder(context.Background(), "order/../payments")
		assert.ErrorIs(t, err, ErrGateway)
	})

	t.Run("NotFound", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusNotFound, `{"error":{"code":"BAD_REQUEST_ERROR","description":"The id provided does not exist"}}`)
		})

		_, err := gw.FetchOrder(context.Background(), "order_missing")
		assert.ErrorIs(t, err, ErrGateway)
	})
}

func TestNewRazorpayGateway_DefaultTimeout(t *testing.T) {
	gw := NewRazorpayGateway(config.RazorpayConfig{KeyID: "k", KeySecret: "s"}).(*razorpayGateway)
	assert.Equal(t, defaultGatewayTimeout, gw.httpClient.Timeout)
}
