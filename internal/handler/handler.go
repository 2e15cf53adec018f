package handler

import (
	"context"
	"encoding/json"

	"github.com/dmorgan81/falbot/internal/image"
	"github.com/dmorgan81/falbot/internal/log"
	"github.com/dmorgan81/falbot/internal/store"
	"github.com/samber/do"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// ProgressSink receives provider log lines while a job is in progress.
type ProgressSink func(line string)

type Persister interface {
	Persist(context.Context, store.PersistParams) (string, error)
}

// Image is one generated image. LocalPath is empty when saving failed.
type Image struct {
	URL       string
	LocalPath string
	Metadata  map[string]any
}

func (i Image) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Metadata)+2)
	for k, v := range i.Metadata {
		out[k] = v
	}
	if i.URL != "" {
		out["url"] = i.URL
	}
	if i.LocalPath != "" {
		out["localPath"] = i.LocalPath
	}
	return json.Marshal(out)
}

// Result is the provider's result with every image enriched with its local
// path. Images keep the provider's order.
type Result struct {
	Images   []Image
	Metadata map[string]any
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Metadata)+1)
	for k, v := range r.Metadata {
		out[k] = v
	}
	out["images"] = lo.Ternary(r.Images == nil, []Image{}, r.Images)
	return json.Marshal(out)
}

type Handler struct {
	generator image.Generator
	persister Persister
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return &Handler{
		generator: do.MustInvoke[image.Generator](i),
		persister: do.MustInvoke[*store.Persister](i),
	}, nil
}

// Generate submits req to the provider, relays in-progress log lines to sink
// and saves every returned image. Provider failures are returned unchanged;
// a failed save only leaves that image without a LocalPath.
func (h *Handler) Generate(ctx context.Context, req image.Request, sink ProgressSink) (*Result, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("Handler").With("model", req.Model, "num_images", req.NumImages)
	log.Info("generating images")

	out, err := h.generator.Generate(ctx, req.Model, req.ToInput(), func(u image.Update) {
		log.Debug("job status", "request_id", u.RequestID, "status", u.Status)
		if u.Status != image.StatusInProgress || sink == nil {
			return
		}
		for _, line := range u.Logs {
			sink(line)
		}
	})
	if err != nil {
		log.Error("generation failed", "error", err)
		return nil, err
	}
	log.Info("generation completed", "images", len(out.Images))

	images := make([]Image, len(out.Images))
	var group errgroup.Group
	for idx, desc := range out.Images {
		group.Go(func() error {
			images[idx] = h.persist(ctx, req, idx, desc)
			return nil
		})
	}
	_ = group.Wait()

	return &Result{Images: images, Metadata: out.Metadata}, nil
}

func (h *Handler) persist(ctx context.Context, req image.Request, idx int, desc map[string]any) Image {
	log := log.FromContextOrDiscard(ctx).WithGroup("Handler").With("image", idx+1)

	url, _ := desc["url"].(string)
	img := Image{URL: url, Metadata: make(map[string]any, len(desc))}
	for k, v := range desc {
		if k != "url" || url == "" {
			img.Metadata[k] = v
		}
	}
	if url == "" {
		log.Warn("image has no url, skipping download")
		return img
	}

	path, err := h.persister.Persist(ctx, store.PersistParams{
		URL:    url,
		Prompt: req.Prompt,
		Model:  req.Model,
		Index:  lo.ToPtr(idx),
	})
	if err != nil {
		log.Error("failed to save image", "url", url, "error", err)
		return img
	}
	log.Info("image saved", "path", path)
	img.LocalPath = path
	return img
}
