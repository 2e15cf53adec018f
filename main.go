package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmorgan81/falbot/internal/image"
	"github.com/dmorgan81/falbot/internal/inject"
	"github.com/dmorgan81/falbot/internal/log"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samber/do"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(os.Stderr, log.ParseLevel(os.Getenv("FAL_LOG_LEVEL")))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.NewContext(ctx, logger)

	injector := inject.Setup(ctx, os.LookupEnv)
	defer func() { _ = injector.Shutdown() }()

	// resolve the credential now so a missing key is reported at startup
	_ = do.MustInvokeNamed[string](injector, "fal_key")
	server, err := do.Invoke[*mcp.Server](injector)
	if err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	logger.Info("Text-to-Image MCP Server running on stdio", "models", image.ModelSummary())
	if err = server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		logger.Error("server stopped", "error", err)
		_ = injector.Shutdown()
		os.Exit(1)
	}
}
