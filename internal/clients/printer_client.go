package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/receipt"
)

// PrintJob is the body posted to the printer service.
type PrintJob struct {
	OrderID string       `json:"order_id"`
	Kind    receipt.Kind `json:"kind"`
	Text    string       `json:"text"`
}

// HTTPReceiptPrinter sends rendered receipts to a network print service.
type HTTPReceiptPrinter struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *logging.LoggerV2
}

// NewHTTPReceiptPrinter creates a printer client for the print service.
func NewHTTPReceiptPrinter(cfg config.ServiceConfig, logger *logging.LoggerV2) *HTTPReceiptPrinter {
	return &HTTPReceiptPrinter{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

func (c *HTTPReceiptPrinter) PrintReceipt(ctx context.Context, order *models.Order, settings *models.Settings) error {
	return c.send(ctx, order, settings, receipt.KindReceipt)
}

func (c *HTTPReceiptPrinter) PrintInvoice(ctx context.Context, order *models.Order, settings *models.Settings) error {
	return c.send(ctx, order, settings, receipt.KindInvoice)
}

func (c *HTTPReceiptPrinter) send(ctx context.Context, order *models.Order, settings *models.Settings, kind receipt.Kind) error {
	c.logger.Debug("Sending print job", logging.Fields{
		"order_id": order.ID,
		"kind":     kind,
	})

	body, err := json.Marshal(PrintJob{
		OrderID: order.ID,
		Kind:    kind,
		Text:    receipt.Render(order, settings, kind),
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/print-jobs", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	c.setHeaders(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to send print job", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("printer service returned status %d", resp.StatusCode)
	}

	c.logger.Info("Print job sent", logging.Fields{
		"order_id": order.ID,
		"kind":     kind,
	})
	return nil
}

func (c *HTTPReceiptPrinter) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(middleware.RequestIDHeader, requestID)
	}
}

// ConsolePrinter writes receipts to the log. It is used when no print
// service is configured.
type ConsolePrinter struct {
	logger *logging.LoggerV2
}

func NewConsolePrinter(logger *logging.LoggerV2) *ConsolePrinter {
	return &ConsolePrinter{logger: logger}
}

func (p *ConsolePrinter) PrintReceipt(ctx context.Context, order *models.Order, settings *models.Settings) error {
	p.logger.Info("Simulating receipt print", logging.Fields{
		"order_id": order.ID,
		"receipt":  receipt.Render(order, settings, receipt.KindReceipt),
	})
	return nil
}

func (p *ConsolePrinter) PrintInvoice(ctx context.Context, order *models.Order, settings *models.Settings) error {
	p.logger.Info("Simulating invoice print", logging.Fields{
		"order_id": order.ID,
		"invoice":  receipt.Render(order, settings, receipt.KindInvoice),
	})
	return nil
}
