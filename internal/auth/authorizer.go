package auth

import (
	"context"
	"fmt"

	"github.com/authorizerdev/authorizer-go"

	"casedocs/internal/config"
	"casedocs/internal/model"
)

// authorizerAdapter implements Authenticator against an Authorizer instance.
// The SDK is a GraphQL client and does not take a context per call; the
// ctx parameters are kept on the port so another implementation can honor
// cancellation.
type authorizerAdapter struct {
	client *authorizer.AuthorizerClient
}

// NewAuthorizer builds the Credential Service Adapter from config.
func NewAuthorizer(cfg config.AuthorizerConfig) (Authenticator, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("authorizer url is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("authorizer client id is required")
	}

	cli, err := authorizer.NewAuthorizerClient(cfg.ClientID, cfg.URL, cfg.RedirectURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create authorizer client: %w", err)
	}
	return &authorizerAdapter{client: cli}, nil
}

func (a *authorizerAdapter) Login(ctx context.Context, email, password string) (*model.Session, string, error) {
	res, err := a.client.Login(&authorizer.LoginInput{
		Email:    &email,
		Password: password,
	})
	if err != nil {
		return nil, "", classify("login", err)
	}
	return sessionFromToken(res)
}

func (a *authorizerAdapter) Register(ctx context.Context, email, password string) (*model.Session, string, error) {
	res, err := a.client.SignUp(&authorizer.SignUpInput{
		Email:           &email,
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		return nil, "", classify("register", err)
	}
	return sessionFromToken(res)
}

func (a *authorizerAdapter) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_, err := a.client.Logout(map[string]string{
		"Authorization": "Bearer " + token,
	})
	if err != nil {
		// An already-dead token achieves what logout wanted anyway.
		return nil
	}
	return nil
}

func (a *authorizerAdapter) Validate(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}
	res, err := a.client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: token,
	})
	if err != nil || res == nil || !res.IsValid || res.User == nil {
		return nil, ErrSessionInvalid
	}
	return &model.Session{
		Email:     res.User.Email,
		SubjectID: res.User.ID,
	}, nil
}

// sessionFromToken converts a provider auth-token response into the local
// Session plus the opaque token the browser will carry.
func sessionFromToken(res *authorizer.AuthTokenResponse) (*model.Session, string, error) {
	if res == nil || res.User == nil || res.AccessToken == nil {
		return nil, "", ErrSessionInvalid
	}
	sess := &model.Session{
		Email:     res.User.Email,
		SubjectID: res.User.ID,
	}
	return sess, *res.AccessToken, nil
}
