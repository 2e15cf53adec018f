package inject

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/falbot/internal/handler"
	"github.com/dmorgan81/falbot/internal/image"
	"github.com/dmorgan81/falbot/internal/log"
	"github.com/dmorgan81/falbot/internal/param"
	"github.com/dmorgan81/falbot/internal/store"
	"github.com/dmorgan81/falbot/internal/tool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samber/do"
	"github.com/samber/lo"
)

const (
	ServerName    = "image-generator"
	ServerVersion = "1.0.0"
)

// Setup registers every component. lookup reads configuration; pass
// os.LookupEnv outside of tests.
func Setup(ctx context.Context, lookup func(string) (string, bool)) *do.Injector {
	log := log.FromContextOrDiscard(ctx)
	getenv := func(name, fallback string) string {
		v, ok := lookup(name)
		return lo.Ternary(ok && v != "", v, fallback)
	}

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return config.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.ProvideValue[*http.Client](injector, http.DefaultClient)

	do.ProvideValue[param.Fetcher](injector, &param.EnvFetcher{Lookup: lookup})
	do.Provide[*param.ParameterStoreFetcher](injector, param.NewParameterStoreFetcher)
	do.ProvideNamed[string](injector, "fal_key", func(i *do.Injector) (string, error) {
		key := param.Credential(ctx, do.MustInvoke[param.Fetcher](i), "FAL_KEY", func() (param.Fetcher, error) {
			f, err := do.Invoke[*param.ParameterStoreFetcher](i)
			if err != nil {
				return nil, err
			}
			return f, nil
		}, getenv("FAL_KEY_PARAM", ""))
		if key == "" {
			log.Warn("FAL_KEY environment variable is not set. API calls will fail.")
		}
		return key, nil
	})
	do.ProvideNamedValue[string](injector, "output_dir", getenv("FAL_IMAGES_OUTPUT_DIR", ""))
	do.ProvideNamedValue[string](injector, "s3_bucket", getenv("FAL_IMAGES_S3_BUCKET", ""))
	do.ProvideNamedValue[string](injector, "queue_url", getenv("FAL_QUEUE_URL", image.DefaultQueueURL))
	do.ProvideNamedValue[string](injector, "poll_interval", getenv("FAL_POLL_INTERVAL", "1s"))

	do.Provide[image.Generator](injector, image.NewFalGenerator)
	do.Provide[*store.DirResolver](injector, store.NewDirResolver)
	do.Provide[*store.S3Uploader](injector, store.NewS3Uploader)
	do.Provide[*store.Persister](injector, store.NewPersister)
	do.Provide[*handler.Handler](injector, handler.NewHandler)
	do.Provide[*tool.ImageTool](injector, tool.NewImageTool)
	do.Provide[*mcp.Server](injector, func(i *do.Injector) (*mcp.Server, error) {
		imageTool, err := do.Invoke[*tool.ImageTool](i)
		if err != nil {
			return nil, err
		}
		server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil)
		imageTool.Register(ctx, server)
		return server, nil
	})

	return injector
}
