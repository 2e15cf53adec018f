package param

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fetcherFunc func(context.Context, string) (string, error)

func (f fetcherFunc) Fetch(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

func envOf(vars map[string]string) *EnvFetcher {
	return &EnvFetcher{Lookup: func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}}
}

func TestEnvFetcher(t *testing.T) {
	env := envOf(map[string]string{"FAL_KEY": "abc"})

	v, err := env.Fetch(context.Background(), "FAL_KEY")
	assert.NoError(t, err)
	assert.Equal(t, "abc", v)

	v, err = env.Fetch(context.Background(), "MISSING")
	assert.NoError(t, err)
	assert.Empty(t, v)
}

func TestCredentialFromEnv(t *testing.T) {
	store := func() (Fetcher, error) {
		t.Fatal("parameter store should not be consulted")
		return nil, nil
	}
	key := Credential(context.Background(), envOf(map[string]string{"FAL_KEY": "abc"}), "FAL_KEY", store, "")
	assert.Equal(t, "abc", key)
}

func TestCredentialFromStore(t *testing.T) {
	store := func() (Fetcher, error) {
		return fetcherFunc(func(_ context.Context, path string) (string, error) {
			assert.Equal(t, "/falbot/key", path)
			return "from-ssm", nil
		}), nil
	}
	key := Credential(context.Background(), envOf(map[string]string{"FAL_KEY": "abc"}), "FAL_KEY", store, "/falbot/key")
	assert.Equal(t, "from-ssm", key)
}

func TestCredentialStoreFailures(t *testing.T) {
	env := envOf(map[string]string{"FAL_KEY": "abc"})

	unavailable := func() (Fetcher, error) { return nil, errors.New("no aws config") }
	assert.Empty(t, Credential(context.Background(), env, "FAL_KEY", unavailable, "/falbot/key"))

	failing := func() (Fetcher, error) {
		return fetcherFunc(func(context.Context, string) (string, error) {
			return "", errors.New("ParameterNotFound")
		}), nil
	}
	assert.Empty(t, Credential(context.Background(), env, "FAL_KEY", failing, "/falbot/key"))
}
