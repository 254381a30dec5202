package puush

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://puush.me/api/"
	DefaultTimeout = 30 * time.Second
	userAgent      = "gopuush"
)

// Attachment is a file part sent along with the form fields.
type Attachment struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Poster sends one form POST to an API endpoint and returns the raw body.
type Poster interface {
	Post(ctx context.Context, endpoint string, fields url.Values, file *Attachment) ([]byte, error)
}

// Transport posts forms to a fixed puush API base URL.
type Transport struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *logrus.Logger
}

var _ Poster = (*Transport)(nil)

// NewTransport creates a transport rooted at baseURL. A nil httpClient gets a
// client with DefaultTimeout; a nil logger uses the logrus standard logger.
func NewTransport(baseURL string, httpClient *http.Client, logger *logrus.Logger) (*Transport, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, newError("transport", ErrInvalidInput, "bad base URL", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, newError("transport", ErrInvalidInput, fmt.Sprintf("base URL %q is not absolute", baseURL), nil)
	}
	// Endpoints resolve relative to the base, so it has to look like a directory.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Transport{
		baseURL:    u,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the URL endpoints are resolved against.
func (t *Transport) BaseURL() string {
	return t.baseURL.String()
}

// Post sends fields (and file, if non-nil) to endpoint. Forms without a file
// are url-encoded; with a file the body is multipart and streamed.
func (t *Transport) Post(ctx context.Context, endpoint string, fields url.Values, file *Attachment) ([]byte, error) {
	target := t.baseURL.ResolveReference(&url.URL{Path: endpoint})

	var (
		body        io.Reader
		contentType string
	)
	if file == nil {
		body = strings.NewReader(fields.Encode())
		contentType = "application/x-www-form-urlencoded"
	} else {
		pr, pw := io.Pipe()
		writer := multipart.NewWriter(pw)
		go func() {
			pw.CloseWithError(writeMultipart(writer, fields, file))
		}()
		body = pr
		contentType = writer.FormDataContentType()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), body)
	if err != nil {
		return nil, newError(endpoint, ErrTransport, "building request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, newError(endpoint, ErrTransport, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(endpoint, ErrTransport, "reading response", err)
	}

	t.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
		"bytes":    len(data),
	}).Debug("puush request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(endpoint, ErrTransport, resp.Status, nil)
	}

	return data, nil
}

func writeMultipart(writer *multipart.Writer, fields url.Values, file *Attachment) error {
	for name, values := range fields {
		for _, v := range values {
			if err := writer.WriteField(name, v); err != nil {
				return err
			}
		}
	}

	part, err := writer.CreateFormFile(file.Field, file.Filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return err
	}

	return writer.Close()
}
