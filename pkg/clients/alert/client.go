package alert

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client exposes the alert delivery operation used by the scheduler.
type Client interface {
	SendStockAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert is the JSON payload posted to the configured webhook.
type StockAlert struct {
	Title string          `json:"title"`
	Body  string          `json:"body"`
	Items []StockAlertRow `json:"items"`
}

// StockAlertRow is one low-stock line in the alert.
type StockAlertRow struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

// WebhookClient is a resty-backed implementation of Client that posts alerts
// to a generic JSON webhook.
type WebhookClient struct {
	httpClient *resty.Client
	webhookURL string
}

// NewWebhookClient builds an alert client for the given webhook URL.
func NewWebhookClient(webhookURL string) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &WebhookClient{
		httpClient: restyClient,
		webhookURL: webhookURL,
	}
}

// SendStockAlert posts the alert payload to the webhook.
func (c *WebhookClient) SendStockAlert(ctx context.Context, alert StockAlert) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(alert).
		Post(c.webhookURL)
	if err != nil {
		return fmt.Errorf("send stock alert: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("alert webhook error: status=%d, body=%s", resp.StatusCode(), resp.String())
	}

	return nil
}
