package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/vichithchamodya/product-catalog/internal/model"
)

// OAuthUser is the normalized identity returned by an upstream provider
// after a successful code exchange. Subject is the provider's stable user
// identifier (Google "sub", GitHub numeric ID rendered as a string).
type OAuthUser struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// OAuthProvider runs the Authorization Code flow against one upstream
// identity provider:
//
//  1. The server redirects the browser to the provider's authorization page,
//     carrying a random state stored in a short-lived cookie.
//  2. The provider redirects back to the callback URL with a one-time code.
//  3. The server exchanges the code for an access token (server-to-server,
//     using the client secret, so the token never reaches the browser) and
//     fetches the user's profile with it.
type OAuthProvider struct {
	name        string
	userInfoURL string
	config      *oauth2.Config
}

// googleUserInfo is the slice of Google's userinfo response we care about.
type googleUserInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// githubUserInfo is the slice of GitHub's /user response we care about.
// The primary email is empty when the user hides it in their settings.
type githubUserInfo struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NewGoogleProvider creates an OAuthProvider for Google sign-in.
// callbackURL must exactly match an authorized redirect URI of the OAuth
// client registered in the Google Cloud console.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *OAuthProvider {
	return &OAuthProvider{
		name:        model.ProviderGoogle,
		userInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// NewGitHubProvider creates an OAuthProvider for GitHub sign-in.
// callbackURL must match the "Authorization callback URL" of the registered
// GitHub OAuth App.
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *OAuthProvider {
	return &OAuthProvider{
		name:        model.ProviderGitHub,
		userInfoURL: "https://api.github.com/user",
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
	}
}

// Name returns the provider identifier used in routes and user rows
// ("google" or "github").
func (p *OAuthProvider) Name() string {
	return p.name
}

// AuthURL returns the URL to redirect the user to for authorization.
//
// The state is a random string stored in a cookie before redirecting; the
// callback handler verifies the returned state matches it. A mismatch means
// the callback was not initiated by this server (CSRF).
func (p *OAuthProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow: trades the authorization code for a
// normalized user identity.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*OAuthUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code with %s: %w", p.name, err)
	}

	// oauth2.Config.Client returns an *http.Client that attaches the
	// "Authorization: Bearer <token>" header to every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: fetching %s user info: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: %s user info returned status %d", p.name, resp.StatusCode)
	}

	switch p.name {
	case model.ProviderGoogle:
		var info googleUserInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return nil, fmt.Errorf("auth: decoding Google user info: %w", err)
		}
		if info.Sub == "" {
			return nil, fmt.Errorf("auth: Google returned an empty subject")
		}
		return &OAuthUser{
			Provider: p.name,
			Subject:  info.Sub,
			Email:    info.Email,
			Name:     info.Name,
		}, nil

	case model.ProviderGitHub:
		var info githubUserInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return nil, fmt.Errorf("auth: decoding GitHub user info: %w", err)
		}
		if info.ID == 0 {
			return nil, fmt.Errorf("auth: GitHub returned an invalid user (ID = 0)")
		}
		name := info.Name
		if name == "" {
			name = info.Login
		}
		return &OAuthUser{
			Provider: p.name,
			Subject:  fmt.Sprintf("%d", info.ID),
			Email:    info.Email,
			Name:     name,
		}, nil

	default:
		return nil, fmt.Errorf("auth: unknown provider %q", p.name)
	}
}

// ProviderRegistry holds the configured OAuth providers keyed by name.
// Providers with missing credentials are simply not registered; the login
// page only offers the ones present.
type ProviderRegistry map[string]*OAuthProvider

// Register adds a provider to the registry.
func (r ProviderRegistry) Register(p *OAuthProvider) {
	r[p.Name()] = p
}

// Lookup returns the provider for the given name, or an error for names we
// never configured (including garbage from the URL).
func (r ProviderRegistry) Lookup(name string) (*OAuthProvider, error) {
	p, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("auth: unsupported OAuth provider %q", name)
	}
	return p, nil
}
