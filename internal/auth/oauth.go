package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/YisakTolla/VolunteerSync-sub001/pkg/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const ProviderGoogle = "google"

var ErrOAuthExchange = errors.New("oauth exchange failed")

// Identity is what an external provider tells us about a user.
type Identity struct {
	Provider      string
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}

type GoogleProvider struct {
	config *oauth2.Config
}

func NewGoogleProvider(cfg *config.OAuthConfig) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{oauth2api.UserinfoEmailScope, oauth2api.UserinfoProfileScope},
			Endpoint:     endpoints.Google,
		},
	}
}

func (p *GoogleProvider) Name() string {
	return ProviderGoogle
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}

	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(p.config.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("creating userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetching userinfo: %w", err)
	}

	return &Identity{
		Provider:      ProviderGoogle,
		Subject:       info.Id,
		Email:         info.Email,
		Name:          info.Name,
		EmailVerified: info.VerifiedEmail != nil && *info.VerifiedEmail,
	}, nil
}
