package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"petbudget/model"
)

const emailTimeout = 10 * time.Second

// EmailService posts budget-confirmation emails to the hosted email API:
// one JSON request, one JSON response, nothing stored locally.
type EmailService struct {
	endpoint   string
	serviceID  string
	templateID string
	publicKey  string
	http       *http.Client
}

// NewEmailServiceFromEnv reads EMAIL_API_URL, EMAIL_SERVICE_ID,
// EMAIL_TEMPLATE_ID and EMAIL_PUBLIC_KEY.
func NewEmailServiceFromEnv() (*EmailService, error) {
	endpoint := os.Getenv("EMAIL_API_URL")
	if endpoint == "" {
		return nil, fmt.Errorf("missing required EMAIL_API_URL environment variable")
	}
	return &EmailService{
		endpoint:   endpoint,
		serviceID:  os.Getenv("EMAIL_SERVICE_ID"),
		templateID: os.Getenv("EMAIL_TEMPLATE_ID"),
		publicKey:  os.Getenv("EMAIL_PUBLIC_KEY"),
		http:       &http.Client{Timeout: emailTimeout},
	}, nil
}

// NewEmailService builds a client against an explicit endpoint. Tests use
// this with an httptest server.
func NewEmailService(endpoint string, client *http.Client) *EmailService {
	if client == nil {
		client = &http.Client{Timeout: emailTimeout}
	}
	return &EmailService{endpoint: endpoint, http: client}
}

type emailPayload struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// SendBudgetEmail delivers the estimate summary to the owner.
func (s *EmailService) SendBudgetEmail(ctx context.Context, owner model.OwnerData, plan string, precio float64) error {
	payload := emailPayload{
		ServiceID:  s.serviceID,
		TemplateID: s.templateID,
		UserID:     s.publicKey,
		TemplateParams: map[string]string{
			"nombre":   owner.Name,
			"email":    owner.Email,
			"telefono": owner.Phone,
			"plan":     plan,
			"precio":   fmt.Sprintf("%.2f", precio),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("email: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("email: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("email: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email: status %d: %s", resp.StatusCode, snippet)
	}

	// Success responses carry a JSON object; a malformed body still counts
	// as delivered.
	var ack map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil && err != io.EOF {
		return nil
	}
	return nil
}
