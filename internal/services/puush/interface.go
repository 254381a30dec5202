package puush

import (
	"context"
	"io"
)

// AccountAPI defines the operations available on a puush account.
// It mirrors the concrete account so it can be mocked in tests.
type AccountAPI interface {
	APIKey() string
	Premium() PremiumStatus
	Upload(ctx context.Context, r io.Reader, filename string) (*File, error)
	UploadFile(ctx context.Context, path string) (*File, error)
	Delete(ctx context.Context, id string) error
	Thumbnail(ctx context.Context, id string) ([]byte, error)
	History(ctx context.Context) ([]*File, error)
}
