package client

import (
	"context"

	"github.com/dmitrijs2005/authdash/internal/client/models"
)

// Client is the transport-agnostic contract of the remote auth API.
// Implementations never touch local state.
type Client interface {
	Login(ctx context.Context, creds models.Credentials) (string, error)
	Register(ctx context.Context, creds models.Credentials) (string, error)
	GetCurrentUser(ctx context.Context, token string) (*models.UserRecord, error)
	ListUsers(ctx context.Context, token string) ([]models.UserRecord, error)
}
