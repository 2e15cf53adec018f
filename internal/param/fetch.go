package param

import (
	"context"
	"os"

	"github.com/dmorgan81/falbot/internal/log"
)

// Fetcher looks up a single named secret or setting. A missing value is "",
// not an error.
type Fetcher interface {
	Fetch(context.Context, string) (string, error)
}

// EnvFetcher reads from the process environment.
type EnvFetcher struct {
	Lookup func(string) (string, bool)
}

func (f *EnvFetcher) Fetch(ctx context.Context, name string) (string, error) {
	lookup := f.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(name)
	if !ok {
		log.FromContextOrDiscard(ctx).WithGroup("env").Debug("variable not set", "name", name)
	}
	return v, nil
}

// Credential fetches the API key from store when path is set, otherwise from
// env under name. Failures degrade to an empty key so startup continues.
func Credential(ctx context.Context, env Fetcher, name string, store func() (Fetcher, error), path string) string {
	log := log.FromContextOrDiscard(ctx).WithGroup("credential")
	if path == "" {
		key, _ := env.Fetch(ctx, name)
		return key
	}

	f, err := store()
	if err == nil {
		var key string
		if key, err = f.Fetch(ctx, path); err == nil {
			return key
		}
	}
	log.Error("failed to fetch credential, continuing without it", "path", path, "error", err)
	return ""
}
