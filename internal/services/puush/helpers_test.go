package puush

import (
	"context"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type stubCall struct {
	endpoint  string
	fields    url.Values
	fileField string
	filename  string
	content   []byte
}

// stubPoster answers each endpoint with a canned body and records calls.
type stubPoster struct {
	mu        sync.Mutex
	responses map[string][]byte
	err       error
	calls     []stubCall
}

func newStubPoster(responses map[string]string) *stubPoster {
	s := &stubPoster{responses: make(map[string][]byte)}
	for endpoint, body := range responses {
		s.responses[endpoint] = []byte(body)
	}
	return s
}

func (s *stubPoster) Post(_ context.Context, endpoint string, fields url.Values, file *Attachment) ([]byte, error) {
	call := stubCall{endpoint: endpoint, fields: url.Values{}}
	for k, v := range fields {
		call.fields[k] = append([]string(nil), v...)
	}
	if file != nil {
		call.fileField = file.Field
		call.filename = file.Filename
		data, err := io.ReadAll(file.Content)
		if err != nil {
			return nil, err
		}
		call.content = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	if s.err != nil {
		return nil, s.err
	}
	return s.responses[endpoint], nil
}

func (s *stubPoster) lastCall() stubCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func (s *stubPoster) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func withClock(now func() time.Time) Option {
	return func(s *settings) error {
		s.now = now
		return nil
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newStubAccount returns an unverified key-based account over poster.
func newStubAccount(poster Poster, opts ...Option) *Account {
	opts = append([]Option{
		WithTransport(poster),
		WithKeyVerification(false),
		WithLogger(quietLogger()),
	}, opts...)
	account, err := NewAccount(context.Background(), "KEY123", opts...)
	if err != nil {
		panic(err)
	}
	return account
}
