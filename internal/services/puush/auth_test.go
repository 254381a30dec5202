package puush

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateParsesFields(t *testing.T) {
	poster := newStubPoster(map[string]string{"auth": "1,ABCDEF123,1234567890,42"})

	res, err := Authenticate(context.Background(), poster, PasswordCredentials("a@b.c", "pw"))
	require.NoError(t, err)

	assert.Equal(t, &AuthResult{
		Premium: true,
		APIKey:  "ABCDEF123",
		Expires: "1234567890",
		SizeSum: "42",
	}, res)

	call := poster.lastCall()
	assert.Equal(t, "auth", call.endpoint)
	assert.Equal(t, "a@b.c", call.fields.Get("e"))
	assert.Equal(t, "pw", call.fields.Get("p"))
	assert.Empty(t, call.fields.Get("k"))
}

func TestAuthenticateKeyIsStable(t *testing.T) {
	for _, key := range []string{"ABCDEF123", "0000", "k-with-dashes"} {
		t.Run(key, func(t *testing.T) {
			poster := newStubPoster(map[string]string{"auth": "0," + key + ",,0\n"})

			res, err := Authenticate(context.Background(), poster, KeyCredentials(key))
			require.NoError(t, err)
			assert.Equal(t, key, res.APIKey)
			assert.False(t, res.Premium)
			assert.Equal(t, key, poster.lastCall().fields.Get("k"))
		})
	}
}

func TestAuthenticateRejected(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		message string
	}{
		{"api key", KeyCredentials("bad"), "invalid API key"},
		{"password", PasswordCredentials("a@b.c", "wrong"), "no account with the provided credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poster := newStubPoster(map[string]string{"auth": "-1"})

			res, err := Authenticate(context.Background(), poster, tt.creds)
			assert.Nil(t, res)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAuthentication)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.message)
			assert.Equal(t, 1, poster.callCount())
		})
	}
}

func TestAuthenticateMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"too few fields", "1,ABC"},
		{"empty body", ""},
		{"non-integer flag", "yes,ABC,0,0"},
		{"non-ASCII", "1,ÄBC,0,0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poster := newStubPoster(map[string]string{"auth": tt.body})

			_, err := Authenticate(context.Background(), poster, KeyCredentials("k"))
			assert.ErrorIs(t, err, ErrParse)
			assert.NotErrorIs(t, err, ErrAuthentication)
		})
	}
}

func TestAuthenticateRequiresCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
	}{
		{"empty key", KeyCredentials("")},
		{"empty password", PasswordCredentials("a@b.c", "")},
		{"empty email", PasswordCredentials("", "pw")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poster := newStubPoster(nil)

			_, err := Authenticate(context.Background(), poster, tt.creds)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Zero(t, poster.callCount())
		})
	}
}

func TestAuthenticateTransportFailure(t *testing.T) {
	poster := newStubPoster(nil)
	poster.err = newError("auth", ErrTransport, "", errors.New("connection refused"))

	_, err := Authenticate(context.Background(), poster, KeyCredentials("k"))
	assert.ErrorIs(t, err, ErrTransport)
}
