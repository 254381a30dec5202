package puush

import (
	"context"
	"fmt"
	"time"
)

// TimeLayout is the format of File.UploadTime.
const TimeLayout = "2006-01-02 15:04:05"

// File is an upload on a puush account.
type File struct {
	ID         string
	URL        string
	Filename   string
	UploadTime string
	Views      int

	account *Account
}

// UploadedAt parses UploadTime in the local time zone.
func (f *File) UploadedAt() (time.Time, error) {
	return time.ParseInLocation(TimeLayout, f.UploadTime, time.Local)
}

// Delete removes the file from the account that listed or uploaded it.
func (f *File) Delete(ctx context.Context) error {
	if f.account == nil {
		return newError("del", ErrInvalidInput, "file is not attached to an account", nil)
	}
	return f.account.Delete(ctx, f.ID)
}

// Thumbnail returns the file's 100x100 PNG thumbnail.
func (f *File) Thumbnail(ctx context.Context) ([]byte, error) {
	if f.account == nil {
		return nil, newError("thumb", ErrInvalidInput, "file is not attached to an account", nil)
	}
	return f.account.Thumbnail(ctx, f.ID)
}

func (f *File) String() string {
	return fmt.Sprintf("<puush file %s: %q>", f.ID, f.Filename)
}
