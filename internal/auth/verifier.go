package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Identity is what the external identity provider asserts about a caller.
type Identity struct {
	Email   string
	Name    string
	Picture string
}

// ErrDomainNotAllowed is returned when the asserted email is outside the
// configured campus domain.
var ErrDomainNotAllowed = errors.New("email domain not allowed")

// Verifier checks an identity provider token and returns the asserted
// identity. The server never authenticates users itself; it only trusts
// what a verifier reports.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// GoogleVerifier validates Google ID tokens against Google's tokeninfo
// endpoint and restricts sign-in to a single email domain.
type GoogleVerifier struct {
	ClientID      string
	AllowedDomain string // e.g. "ugrad.example.edu"; empty allows any
	HTTPClient    *http.Client
	Endpoint      string // overridable for tests
}

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// Verify checks the token's signature (delegated to Google), audience, and
// email domain.
func (g *GoogleVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = googleTokenInfoURL
	}
	client := g.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		endpoint+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return nil, fmt.Errorf("building tokeninfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling tokeninfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invalid identity token (tokeninfo status %d)", resp.StatusCode)
	}

	var payload struct {
		Aud           string `json:"aud"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding tokeninfo response: %w", err)
	}

	if g.ClientID != "" && payload.Aud != g.ClientID {
		return nil, fmt.Errorf("identity token issued for a different client")
	}
	if payload.Email == "" || payload.EmailVerified != "true" {
		return nil, fmt.Errorf("identity token has no verified email")
	}
	if g.AllowedDomain != "" && !strings.HasSuffix(payload.Email, "@"+g.AllowedDomain) {
		return nil, ErrDomainNotAllowed
	}

	name := payload.Name
	if name == "" {
		name = strings.SplitN(payload.Email, "@", 2)[0]
	}
	return &Identity{Email: payload.Email, Name: name, Picture: payload.Picture}, nil
}

// StaticVerifier maps tokens to fixed identities. Test use only.
type StaticVerifier struct {
	Identities map[string]Identity
}

func (s *StaticVerifier) Verify(_ context.Context, idToken string) (*Identity, error) {
	id, ok := s.Identities[idToken]
	if !ok {
		return nil, fmt.Errorf("invalid identity token")
	}
	return &id, nil
}
