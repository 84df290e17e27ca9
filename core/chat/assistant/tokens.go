package assistant

import (
	"context"
	"fmt"
	"os"
)

// TokenSource supplies the bearer credential attached to every request. It is
// the boundary to whatever session-management layer owns credentials: when the
// server answers with an authentication failure the client calls Invalidate so
// stored credentials are not reused.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate(ctx context.Context)
}

// StaticToken is a fixed credential. Invalidate is a no-op; there is nothing
// to refresh.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

func (t StaticToken) Invalidate(context.Context) {}

// EnvToken reads the credential from the named environment variable on every
// request.
type EnvToken string

func (t EnvToken) Token(context.Context) (string, error) {
	token, ok := os.LookupEnv(string(t))
	if !ok {
		return "", fmt.Errorf("environment variable %s not set", string(t))
	}
	return token, nil
}

func (t EnvToken) Invalidate(context.Context) {}
