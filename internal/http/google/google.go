package google

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	oauthapi "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var ErrEmailNotVerified = errors.New("google account email is not verified")

// UserInfo is the subset of the Google profile used to sign a user in.
type UserInfo struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

type UserInfoFetcher interface {
	UserInfo(ctx context.Context, accessToken string) (UserInfo, error)
}

// Client resolves Google access tokens issued to the web client.
type Client struct {
	config *oauth2.Config
}

func NewClient(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				oauthapi.UserinfoEmailScope,
				oauthapi.UserinfoProfileScope,
			},
			Endpoint: googleoauth.Endpoint,
		},
	}
}

func (c *Client) UserInfo(ctx context.Context, accessToken string) (UserInfo, error) {
	ts := c.config.TokenSource(ctx, &oauth2.Token{AccessToken: accessToken})

	svc, err := oauthapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return UserInfo{}, err
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return UserInfo{}, err
	}
	if info.VerifiedEmail != nil && !*info.VerifiedEmail {
		return UserInfo{}, ErrEmailNotVerified
	}

	return UserInfo{
		ID:        info.Id,
		Email:     info.Email,
		Name:      info.Name,
		AvatarURL: info.Picture,
	}, nil
}
