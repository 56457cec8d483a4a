// Package prediction is the client for the external book-condition model server.
package prediction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bookmarket/internal/observability"

	"github.com/go-resty/resty/v2"
)

const predictPath = "/predict-image"

// ErrEmptyImage is returned when Predict is called without image content.
var ErrEmptyImage = errors.New("prediction: image content is empty")

// Input is one grading request.
type Input struct {
	Image    []byte
	Filename string
	BuyPrice float64
}

// Result is the model's assessment of a book image.
type Result struct {
	WornOut          bool
	Ripped           bool
	WornOutRatio     float64
	RippedRatio      float64
	OverallRatio     float64
	RecommendedPrice float64
}

// wireResult mirrors the model server's JSON field names.
type wireResult struct {
	Wornout          bool    `json:"Wornout"`
	Ripped           bool    `json:"Ripped"`
	RasioWornout     float64 `json:"Rasio_Wornout"`
	RasioRipped      float64 `json:"Rasio_Ripped"`
	OverallRatio     float64 `json:"Overall_Ratio"`
	RecommendedPrice float64 `json:"Recommended_Price"`
}

// Predictor grades a book image against a purchase price.
type Predictor interface {
	Predict(ctx context.Context, in Input) (*Result, error)
}

// ClientOpts configures the model server address and request timeout.
type ClientOpts struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the model server over HTTP. It never retries.
type Client struct {
	httpClient *resty.Client
}

// NewClient builds a Client for the model server at opts.BaseURL.
func NewClient(opts ClientOpts) *Client {
	httpClient := resty.New().
		SetDebug(false).
		SetBaseURL(opts.BaseURL).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}
	return &Client{httpClient: httpClient}
}

// Predict uploads the image and purchase price and decodes the grading.
func (c *Client) Predict(ctx context.Context, in Input) (*Result, error) {
	if len(in.Image) == 0 {
		return nil, ErrEmptyImage
	}
	filename := in.Filename
	if filename == "" {
		filename = "book.jpg"
	}

	start := time.Now()
	wire := &wireResult{}
	res, err := c.httpClient.NewRequest().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(in.Image)).
		SetFormData(map[string]string{
			"purchase_price": strconv.FormatFloat(in.BuyPrice, 'f', -1, 64),
		}).
		SetResult(wire).
		Post(predictPath)
	observability.PredictionLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		observability.PredictionRequests.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("prediction request failed: %w", err)
	}
	if res.IsError() {
		observability.PredictionRequests.WithLabelValues("http_error").Inc()
		return nil, fmt.Errorf("prediction request failed: %s %s (status: %d)", res.Request.Method, res.Request.URL, res.StatusCode())
	}
	observability.PredictionRequests.WithLabelValues("ok").Inc()

	return &Result{
		WornOut:          wire.Wornout,
		Ripped:           wire.Ripped,
		WornOutRatio:     wire.RasioWornout,
		RippedRatio:      wire.RasioRipped,
		OverallRatio:     wire.OverallRatio,
		RecommendedPrice: wire.RecommendedPrice,
	}, nil
}
