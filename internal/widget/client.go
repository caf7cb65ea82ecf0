package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"deathbydinner-backend/internal/models"
)

// RelayClient posts histories to a relay endpoint over HTTP.
type RelayClient struct {
	baseURL    string
	persona    string
	httpClient *http.Client
}

// NewRelayClient targets <baseURL>/api/<persona>-chat. A nil httpClient
// uses http.DefaultClient, whose lack of timeout matches the relay contract.
func NewRelayClient(baseURL, persona string, httpClient *http.Client) *RelayClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RelayClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		persona:    persona,
		httpClient: httpClient,
	}
}

func (c *RelayClient) endpoint() string {
	return c.baseURL + "/api/" + c.persona + "-chat"
}

// Send implements Sender. Any non-2xx status or a body without a string
// reply is an error.
func (c *RelayClient) Send(ctx context.Context, history []models.Turn) (string, error) {
	if history == nil {
		history = []models.Turn{}
	}
	payload, err := json.Marshal(models.ChatRequest{History: history})
	if err != nil {
		return "", errors.Wrap(err, "failed to encode chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "failed to build chat request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "chat request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return "", errors.Errorf("request failed: status=%d error=%q", resp.StatusCode, apiErr.Error)
	}

	var body struct {
		Reply *string `json:"reply"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errors.Wrap(err, "invalid response")
	}
	if body.Reply == nil {
		return "", errors.New("invalid response: missing reply")
	}
	return *body.Reply, nil
}

// FetchPersona reads the persona's public config from the relay.
func (c *RelayClient) FetchPersona(ctx context.Context) (models.PersonaInfo, error) {
	var info models.PersonaInfo

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint()+"/config", nil)
	if err != nil {
		return info, errors.Wrap(err, "failed to build persona request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return info, errors.Wrap(err, "persona request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return info, errors.Errorf("persona request failed: status=%d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return info, errors.Wrap(err, "invalid persona response")
	}
	return info, nil
}
