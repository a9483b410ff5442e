package resume

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/credverse/credential-portal/internal/domain"
)

// Client forwards credential data to the external resume-generation
// service. The portal performs no processing of its own beyond the
// non-empty check done by the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ domain.ResumeGenerator = (*Client)(nil)

// NewClient builds a resume service client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Identity    *domain.UserIdentity `json:"identity"`
	Credentials []domain.Credential  `json:"credentials"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate forwards the identity and credential list and returns the
// generated resume text.
func (c *Client) Generate(ctx context.Context, identity *domain.UserIdentity, credentials []domain.Credential) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("resume service not configured")
	}

	body, err := json.Marshal(generateRequest{
		Identity:    identity,
		Credentials: credentials,
	})
	if err != nil {
		return "", fmt.Errorf("encode resume request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build resume request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("resume service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("resume service returned %d: %s", resp.StatusCode, snippet)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode resume response: %w", err)
	}
	return out.Text, nil
}
