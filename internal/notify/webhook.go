package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"time"

	"overwatch-tracker/internal/config"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const chartFilename = "chart.png"

// WebhookSink delivers a change summary plus the rendered chart to a fixed
// Discord channel webhook.
type WebhookSink struct {
	url    string
	client *fasthttp.Client
	logger zerolog.Logger
}

func NewWebhookSink(cfg *config.Config, logger zerolog.Logger) *WebhookSink {
	return &WebhookSink{
		url: cfg.WebhookURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     10,
			ReadTimeout:         15 * time.Second,
			WriteTimeout:        15 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

type webhookPayload struct {
	Embeds []Embed `json:"embeds"`
}

// Send posts one embed with the chart attached. The embed's image is
// rewired to reference the attachment, matching Discord's multipart webhook
// contract.
func (s *WebhookSink) Send(ctx context.Context, embed Embed, image []byte) error {
	embed.Image = &EmbedMedia{URL: "attachment://" + chartFilename}

	payload, err := json.Marshal(webhookPayload{Embeds: []Embed{embed}})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("payload_json", string(payload)); err != nil {
		return fmt.Errorf("failed to write payload field: %w", err)
	}
	part, err := writer.CreateFormFile("files[0]", chartFilename)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return fmt.Errorf("failed to write chart image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(writer.FormDataContentType())
	req.SetBody(body.Bytes())

	deadline, ok := ctx.Deadline()
	if ok {
		err = s.client.DoDeadline(req, resp, deadline)
	} else {
		err = s.client.Do(req, resp)
	}
	if err != nil {
		return fmt.Errorf("failed to deliver webhook: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return fmt.Errorf("webhook rejected with status %d", status)
	}

	s.logger.Debug().
		Str("title", embed.Title).
		Int("status", status).
		Msg("notification delivered")
	return nil
}
