package puush

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Credentials identify an account to the auth endpoint. Build them with
// KeyCredentials or PasswordCredentials.
type Credentials struct {
	apiKey   string
	email    string
	password string
	byKey    bool
}

// KeyCredentials authenticates with an existing API key.
func KeyCredentials(apiKey string) Credentials {
	return Credentials{apiKey: apiKey, byKey: true}
}

// PasswordCredentials authenticates with the account's e-mail and password.
func PasswordCredentials(email, password string) Credentials {
	return Credentials{email: email, password: password}
}

func (c Credentials) form() url.Values {
	if c.byKey {
		return url.Values{"k": {c.apiKey}}
	}
	return url.Values{"e": {c.email}, "p": {c.password}}
}

func (c Credentials) validate() error {
	if c.byKey {
		if c.apiKey == "" {
			return newError("auth", ErrInvalidInput, "API key is empty", nil)
		}
		return nil
	}
	if c.email == "" || c.password == "" {
		return newError("auth", ErrInvalidInput, "e-mail and password are required", nil)
	}
	return nil
}

// AuthResult is the decoded first row of an auth response.
type AuthResult struct {
	Premium bool
	APIKey  string
	// Expires and SizeSum are passed through exactly as the server sent them;
	// their format is undocumented.
	Expires string
	SizeSum string
}

// Authenticate exchanges credentials for the account's canonical API key.
// It issues exactly one request.
func Authenticate(ctx context.Context, poster Poster, creds Credentials) (*AuthResult, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}

	body, err := poster.Post(ctx, "auth", creds.form(), nil)
	if err != nil {
		return nil, err
	}

	rows, err := parseRows("auth", body)
	if err != nil {
		return nil, err
	}
	row := rows[0]

	if row.Status() == "-1" {
		if creds.byKey {
			return nil, newError("auth", ErrAuthentication, "invalid API key", nil)
		}
		return nil, newError("auth", ErrAuthentication, "no account with the provided credentials", nil)
	}
	if len(row) < 4 {
		return nil, newError("auth", ErrParse, fmt.Sprintf("expected 4 fields, got %d", len(row)), nil)
	}

	premium, err := strconv.Atoi(row[0])
	if err != nil {
		return nil, newError("auth", ErrParse, "premium flag is not an integer", err)
	}

	return &AuthResult{
		Premium: premium != 0,
		APIKey:  row[1],
		Expires: row[2],
		SizeSum: row[3],
	}, nil
}
