package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmorgan81/falbot/internal/log"
	"github.com/samber/do"
)

const (
	prefixLength = 30
	extension    = ".png"
)

// FetchError is a non-2xx response while downloading an image.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %s", e.URL, e.Status)
}

type PersistParams struct {
	URL    string
	Prompt string
	Model  string
	// Index is the zero-based position in the batch. Nil omits the suffix.
	Index *int
}

// Persister downloads an image and saves it under the resolved directory.
// Mirror, when set, receives a copy after the local write succeeds.
type Persister struct {
	Client   *http.Client
	Resolver *DirResolver
	Local    Uploader
	Mirror   Uploader
	Now      func() time.Time
}

func NewPersister(i *do.Injector) (*Persister, error) {
	p := &Persister{
		Client:   do.MustInvoke[*http.Client](i),
		Resolver: do.MustInvoke[*DirResolver](i),
		Local:    &FileUploader{},
		Now:      time.Now,
	}
	if do.MustInvokeNamed[string](i, "s3_bucket") != "" {
		p.Mirror = do.MustInvoke[*S3Uploader](i)
	}
	return p, nil
}

// Persist returns the absolute path of the saved file. Errors are returned
// as-is and never retried; logging them is left to the caller.
func (p *Persister) Persist(ctx context.Context, params PersistParams) (string, error) {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	path := filepath.Join(p.Resolver.Resolve(), FileName(params.Prompt, now(), params.Index))
	log := log.FromContextOrDiscard(ctx).WithGroup("Persister").With("url", params.URL, "path", path)

	data, err := p.fetch(ctx, params.URL)
	if err != nil {
		return "", err
	}

	upload := UploadParams{
		Name:        path,
		Data:        data,
		ContentType: "image/png",
		Metadata:    map[string]string{"model": params.Model, "source": params.URL},
	}
	if err := p.Local.Upload(ctx, upload); err != nil {
		return "", err
	}
	log.Info("downloaded image")

	if p.Mirror != nil {
		if err := p.Mirror.Upload(ctx, upload); err != nil {
			log.Warn("failed to mirror image", "error", err)
		}
	}
	return path, nil
}

func (p *Persister) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return io.ReadAll(resp.Body)
}

// FileName builds <prefix>_<timestamp>[_<n>].png. The prefix is the first 30
// characters of prompt with anything outside [a-zA-Z0-9] replaced by an
// underscore, lower-cased. The timestamp is UTC ISO-8601 with ':' and '.'
// turned into '-'. n is index+1.
func FileName(prompt string, at time.Time, index *int) string {
	runes := []rune(prompt)
	if len(runes) > prefixLength {
		runes = runes[:prefixLength]
	}
	var b strings.Builder
	for _, r := range runes {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	prefix := strings.ToLower(b.String())

	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(at.UTC().Format("2006-01-02T15:04:05.000Z"))
	name := prefix + "_" + stamp
	if index != nil {
		name += "_" + strconv.Itoa(*index+1)
	}
	return name + extension
}
