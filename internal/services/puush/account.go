package puush

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// The up endpoint requires a "z" field; its value is ignored.
const uploadFiller = "poop"

// PremiumStatus is an account's tier when it is known. Only logging in with
// e-mail and password reveals it.
type PremiumStatus struct {
	known   bool
	premium bool
}

// UnknownPremium is the status of accounts built from an API key.
var UnknownPremium = PremiumStatus{}

// KnownPremium returns a resolved status.
func KnownPremium(premium bool) PremiumStatus {
	return PremiumStatus{known: true, premium: premium}
}

// Get returns the flag and whether it is known.
func (p PremiumStatus) Get() (premium, known bool) {
	return p.premium, p.known
}

func (p PremiumStatus) String() string {
	switch {
	case !p.known:
		return "unknown"
	case p.premium:
		return "premium"
	default:
		return "free"
	}
}

// Account is an authenticated puush account. It is immutable after
// construction and safe for concurrent use.
type Account struct {
	apiKey   string
	premium  PremiumStatus
	session  *AuthResult
	poster   Poster
	sendHash bool
	logger   *logrus.Logger
	now      func() time.Time
}

var _ AccountAPI = (*Account)(nil)

type settings struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	poster     Poster
	sendHash   bool
	verifyKey  bool
	logger     *logrus.Logger
	now        func() time.Time
}

// Option customizes account construction.
type Option func(*settings) error

// WithBaseURL points the account at a different API root.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) error {
		if baseURL == "" {
			return fmt.Errorf("base URL cannot be empty")
		}
		s.baseURL = baseURL
		return nil
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive")
		}
		s.timeout = timeout
		return nil
	}
}

// WithHTTPClient replaces the HTTP client. WithTimeout is ignored when set.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) error {
		if client == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		s.httpClient = client
		return nil
	}
}

// WithTransport replaces the whole transport, e.g. with a test double.
func WithTransport(poster Poster) Option {
	return func(s *settings) error {
		if poster == nil {
			return fmt.Errorf("transport cannot be nil")
		}
		s.poster = poster
		return nil
	}
}

// WithHashSubmission controls whether uploads carry the MD5 "c" field
// (default: enabled). Older server revisions do not expect it.
func WithHashSubmission(enabled bool) Option {
	return func(s *settings) error {
		s.sendHash = enabled
		return nil
	}
}

// WithKeyVerification controls whether NewAccount checks the key against the
// auth endpoint before returning (default: enabled).
func WithKeyVerification(enabled bool) Option {
	return func(s *settings) error {
		s.verifyKey = enabled
		return nil
	}
}

// WithLogger overrides the logrus standard logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

func buildSettings(opts []Option) (*settings, error) {
	s := &settings{
		baseURL:   DefaultBaseURL,
		timeout:   DefaultTimeout,
		sendHash:  true,
		verifyKey: true,
		logger:    logrus.StandardLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, newError("account", ErrInvalidInput, "", err)
		}
	}

	if s.poster == nil {
		client := s.httpClient
		if client == nil {
			client = &http.Client{Timeout: s.timeout}
		}
		transport, err := NewTransport(s.baseURL, client, s.logger)
		if err != nil {
			return nil, err
		}
		s.poster = transport
	}

	return s, nil
}

func newAccount(apiKey string, premium PremiumStatus, session *AuthResult, s *settings) *Account {
	return &Account{
		apiKey:   apiKey,
		premium:  premium,
		session:  session,
		poster:   s.poster,
		sendHash: s.sendHash,
		logger:   s.logger,
		now:      s.now,
	}
}

// NewAccount builds an account from an API key. Unless disabled with
// WithKeyVerification(false), the key is checked against the server first
// so a bad key fails here rather than on first use.
func NewAccount(ctx context.Context, apiKey string, opts ...Option) (*Account, error) {
	s, err := buildSettings(opts)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, newError("account", ErrInvalidInput, "API key is empty", nil)
	}

	if s.verifyKey {
		if _, err := Authenticate(ctx, s.poster, KeyCredentials(apiKey)); err != nil {
			return nil, err
		}
		s.logger.Debug("puush API key verified")
	}

	return newAccount(apiKey, UnknownPremium, nil, s), nil
}

// Login authenticates with e-mail and password and returns an account using
// the key the server hands back.
func Login(ctx context.Context, email, password string, opts ...Option) (*Account, error) {
	s, err := buildSettings(opts)
	if err != nil {
		return nil, err
	}

	res, err := Authenticate(ctx, s.poster, PasswordCredentials(email, password))
	if err != nil {
		return nil, err
	}
	s.logger.WithField("premium", res.Premium).Debug("logged in to puush")

	return newAccount(res.APIKey, KnownPremium(res.Premium), res, s), nil
}

// APIKey returns the key sent with every request.
func (a *Account) APIKey() string {
	return a.apiKey
}

// Premium returns the account tier, which is unknown for key-built accounts.
func (a *Account) Premium() PremiumStatus {
	return a.premium
}

// IsPremium reports the account tier, or ErrPremiumUnknown.
func (a *Account) IsPremium() (bool, error) {
	premium, known := a.premium.Get()
	if !known {
		return false, newError("account", ErrPremiumUnknown, "", nil)
	}
	return premium, nil
}

// Session returns the full login response, or nil for key-built accounts.
func (a *Account) Session() *AuthResult {
	if a.session == nil {
		return nil
	}
	res := *a.session
	return &res
}

func (a *Account) post(ctx context.Context, endpoint string, fields url.Values, file *Attachment) ([]byte, error) {
	if fields == nil {
		fields = url.Values{}
	}
	fields.Set("k", a.apiKey)
	return a.poster.Post(ctx, endpoint, fields, file)
}

func (a *Account) request(ctx context.Context, endpoint string, fields url.Values, file *Attachment) ([]Row, error) {
	body, err := a.post(ctx, endpoint, fields, file)
	if err != nil {
		return nil, err
	}
	return parseRows(endpoint, body)
}

func (a *Account) newFile(id, fileURL, filename, uploadTime string, views int) *File {
	return &File{
		ID:         id,
		URL:        fileURL,
		Filename:   filename,
		UploadTime: uploadTime,
		Views:      views,
		account:    a,
	}
}

// Upload sends r under filename. Seekable readers are rewound before the
// hash is computed and again before the bytes are sent; anything else is
// buffered in memory once.
func (a *Account) Upload(ctx context.Context, r io.Reader, filename string) (*File, error) {
	if r == nil {
		return nil, newError("up", ErrInvalidInput, "nil reader", nil)
	}
	name := SanitizeFilename(filename)

	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, newError("up", ErrInvalidInput, "reading upload", err)
		}
		rs = bytes.NewReader(data)
	}

	fields := url.Values{"z": {uploadFiller}}
	if a.sendHash {
		sum, err := md5Hex(rs)
		if err != nil {
			return nil, newError("up", ErrInvalidInput, "hashing upload", err)
		}
		fields.Set("c", sum)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, newError("up", ErrInvalidInput, "rewinding upload", err)
	}

	rows, err := a.request(ctx, "up", fields, &Attachment{Field: "f", Filename: name, Content: rs})
	if err != nil {
		return nil, err
	}
	row := rows[0]

	switch status := row.Status(); {
	case status == "-1":
		return nil, newError("up", ErrUpload, "", nil)
	case status == "-3":
		return nil, newError("up", ErrUpload, "", ErrHashMismatch)
	case strings.HasPrefix(status, "-"):
		return nil, newError("up", ErrUpload, "server status "+status, nil)
	}
	if len(row) < 4 {
		return nil, newError("up", ErrParse, fmt.Sprintf("expected 4 fields, got %d", len(row)), nil)
	}

	f := a.newFile(row[2], row[1], name, a.now().Format(TimeLayout), 0)
	a.logger.WithFields(logrus.Fields{"id": f.ID, "filename": f.Filename, "size": row[3]}).Debug("uploaded file to puush")
	return f, nil
}

// UploadFile uploads the file at path under its base name.
func (a *Account) UploadFile(ctx context.Context, path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, newError("up", ErrInvalidInput, "opening upload", err)
	}
	defer fh.Close()

	return a.Upload(ctx, fh, path)
}

// Delete removes the file with the given id.
func (a *Account) Delete(ctx context.Context, id string) error {
	rows, err := a.request(ctx, "del", url.Values{"i": {id}}, nil)
	if err != nil {
		return err
	}
	if rows[0].Status() == "-1" {
		return newError("del", ErrDeletion, "id "+id, nil)
	}
	return nil
}

// Thumbnail returns the raw thumbnail image (usually PNG) of a file.
func (a *Account) Thumbnail(ctx context.Context, id string) ([]byte, error) {
	data, err := a.post(ctx, "thumb", url.Values{"i": {id}}, nil)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, newError("thumb", ErrThumbnail, "empty response for id "+id, nil)
	}
	return data, nil
}

// History returns the most recent uploads in the order the server lists them.
func (a *Account) History(ctx context.Context) ([]*File, error) {
	rows, err := a.request(ctx, "hist", nil, nil)
	if err != nil {
		return nil, err
	}
	if rows[0].Status() == "-1" {
		return nil, newError("hist", ErrHistory, "", nil)
	}

	files := make([]*File, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) == 1 && row[0] == "" {
			continue
		}
		if len(row) < 5 {
			return nil, newError("hist", ErrParse, fmt.Sprintf("line %d: expected 6 fields, got %d", i+2, len(row)), nil)
		}
		views, err := strconv.Atoi(row[4])
		if err != nil {
			return nil, newError("hist", ErrParse, fmt.Sprintf("line %d: views is not an integer", i+2), err)
		}
		files = append(files, a.newFile(row[0], row[2], row[3], row[1], views))
	}
	return files, nil
}

func md5Hex(rs io.ReadSeeker) (string, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	h := md5.New()
	if _, err := io.Copy(h, rs); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
