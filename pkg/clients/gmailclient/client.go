package gmailclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/jakechorley/interview-allocator/pkg/utils"
)

// Client wraps the Gmail API client
type Client struct {
	service *gmail.Service
	ctx     context.Context
	userID  string
	from    string

	lastSendTime time.Time
	sendMutex    sync.Mutex
}

// NewClient creates a Gmail client sending as userID ("me" for the authorised account).
// from, when set, is used as the From header.
func NewClient(ctx context.Context, auth *utils.Authenticator, userID, from string) (*Client, error) {
	token, err := auth.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth token: %w", err)
	}

	httpClient := auth.Config().Client(ctx, token)

	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &Client{
		service: service,
		ctx:     ctx,
		userID:  userID,
		from:    from,
	}, nil
}
