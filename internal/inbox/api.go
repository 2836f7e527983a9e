package inbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"taskboard/internal/domain/notification"
)

// APIClient talks to the notification REST surface on behalf of the inbox.
type APIClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type listEnvelope struct {
	Success bool                      `json:"success"`
	Data    notification.ListResponse `json:"data"`
	Error   string                    `json:"error"`
}

type statusEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// List fetches the persisted notification history.
func (c *APIClient) List(ctx context.Context, limit int) ([]notification.Notification, error) {
	url := fmt.Sprintf("%s/api/v1/notifications?limit=%d", c.baseURL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var env listEnvelope
	if err := c.do(req, &env); err != nil {
		return nil, err
	}
	return env.Data.Notifications, nil
}

// MarkRead flips one notification's read flag server-side.
func (c *APIClient) MarkRead(ctx context.Context, id int64) error {
	body, _ := json.Marshal(map[string]any{"id": id, "read": true})
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/api/v1/notifications", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var env statusEnvelope
	return c.do(req, &env)
}

// Delete removes one notification server-side.
func (c *APIClient) Delete(ctx context.Context, id int64) error {
	url := fmt.Sprintf("%s/api/v1/notifications?id=%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	var env statusEnvelope
	return c.do(req, &env)
}

func (c *APIClient) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notifications api: status %d", resp.StatusCode)
	}
	return nil
}
