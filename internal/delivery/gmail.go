package delivery

import (
	"context"
	"encoding/base64"
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailConfig holds the OAuth client and the user's refresh token.
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// GmailSender sends raw messages through the Gmail API as the token's owner.
type GmailSender struct {
	svc *gmail.Service
}

// NewGmailSender creates a sender whose access tokens are refreshed from cfg.RefreshToken.
func NewGmailSender(ctx context.Context, cfg GmailConfig, opts ...option.ClientOption) (*GmailSender, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, &Error{Message: "gmail client id, secret and refresh token are required"}
	}
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	svc, err := gmail.NewService(ctx, append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)...)
	if err != nil {
		return nil, &Error{Message: "failed to create gmail service", Cause: err}
	}
	return &GmailSender{svc: svc}, nil
}

// SendRaw sends an RFC 822 message and returns the Gmail message ID.
func (s *GmailSender) SendRaw(ctx context.Context, raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("message is empty")
	}
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	sent, err := s.svc.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return "", &Error{Message: "gmail send failed", Cause: err}
	}
	return sent.Id, nil
}
