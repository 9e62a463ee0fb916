package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/roomie-match/matchcore/internal/domain"
)

// HTTPDirectory resolves recipients against the external account service
// over HTTP (spec §1 "out of scope" — the account/profile service is a
// separate system this package only reads from at its boundary).
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDirectory builds a directory client against baseURL, e.g.
// "https://accounts.internal/api".
func NewHTTPDirectory(baseURL string, client *http.Client) *HTTPDirectory {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPDirectory{baseURL: baseURL, client: client}
}

type recipientResponse struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

func (d *HTTPDirectory) Lookup(ctx context.Context, userID domain.UserID) (Recipient, error) {
	u := fmt.Sprintf("%s/users/%s", d.baseURL, url.PathEscape(string(userID)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Recipient{}, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return Recipient{}, fmt.Errorf("notify: directory lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Recipient{}, ErrRecipientNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Recipient{}, fmt.Errorf("notify: directory lookup: status %d", resp.StatusCode)
	}

	var body recipientResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Recipient{}, fmt.Errorf("notify: directory lookup: decode: %w", err)
	}
	return Recipient{Email: body.Email, Nickname: body.Nickname}, nil
}

var _ RecipientDirectory = (*HTTPDirectory)(nil)
