package splunk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tphakala/go-panw"
	"github.com/tphakala/go-panw/internal/transport"
)

// Credential is one entry from Splunk's password storage. The password is
// returned in clear text for the caller's immediate use and never retained
// by this package.
type Credential struct {
	Username string
	Password string
	Realm    string
}

// Credentials lists every stored credential visible in the client's
// namespace.
func (c *Client) Credentials(ctx context.Context) ([]Credential, error) {
	query := url.Values{}
	query.Set("output_mode", "json")
	query.Set("count", "0")

	result, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodGet,
		URL:    c.url("storage", "passwords"),
		Query:  query,
		Header: c.authHeader(),
	})
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	var parsed struct {
		Entry []struct {
			Content struct {
				Username string `json:"username"`
				Password string `json:"clear_password"`
				Realm    string `json:"realm"`
			} `json:"content"`
		} `json:"entry"`
	}
	if err := result.JSON(&parsed); err != nil {
		return nil, fmt.Errorf("splunk: parsing passwords response: %w", err)
	}

	creds := make([]Credential, 0, len(parsed.Entry))
	for _, e := range parsed.Entry {
		creds = append(creds, Credential{
			Username: e.Content.Username,
			Password: e.Content.Password,
			Realm:    e.Content.Realm,
		})
	}
	return creds, nil
}

// Credential returns the stored credential matching realm and username.
// An empty username matches the first credential in the realm. Earlier
// versions of this add-on guessed the firewall credential by excluding the
// WildFire key's username; lookups here are always explicit by realm.
func (c *Client) Credential(ctx context.Context, realm, username string) (*Credential, error) {
	if realm == "" {
		return nil, &panw.ValidationError{Field: "realm", Message: "cannot be empty"}
	}

	creds, err := c.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	for _, cred := range creds {
		if cred.Realm != realm {
			continue
		}
		if username == "" || cred.Username == username {
			return &cred, nil
		}
	}
	return nil, &panw.CredentialNotFoundError{Realm: realm, Username: username}
}
