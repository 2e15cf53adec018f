package image

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/dmorgan81/falbot/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationField(t *testing.T, err error) string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Field
}

func TestValidateDefaults(t *testing.T) {
	req, err := Validate(context.Background(), map[string]any{"prompt": "a red apple"})
	require.NoError(t, err)
	assert.Equal(t, Request{
		Prompt:              "a red apple",
		Model:               "fal-ai/recraft-v3",
		Size:                SizeLandscape43,
		NumInferenceSteps:   28,
		GuidanceScale:       3.5,
		NumImages:           1,
		EnableSafetyChecker: true,
	}, req)
}

func TestValidateBlankPrompt(t *testing.T) {
	for _, args := range []map[string]any{
		nil,
		{},
		{"prompt": ""},
		{"prompt": "   \t\n"},
		{"prompt": 42},
		{"prompt": nil},
	} {
		_, err := Validate(context.Background(), args)
		assert.Equal(t, "prompt", validationField(t, err), "args %v", args)
	}
}

func TestValidateSize(t *testing.T) {
	for _, size := range Sizes {
		req, err := Validate(context.Background(), map[string]any{"prompt": "x", "image_size": string(size)})
		require.NoError(t, err)
		assert.Equal(t, size, req.Size)
	}

	for _, bad := range []any{"huge", "SQUARE", "", 4} {
		_, err := Validate(context.Background(), map[string]any{"prompt": "x", "image_size": bad})
		require.Error(t, err)
		assert.Equal(t, "image_size", validationField(t, err))
		for _, size := range Sizes {
			assert.Contains(t, err.Error(), string(size))
		}
	}
}

func TestValidateNumImages(t *testing.T) {
	for _, n := range []any{1, 5, 3.0, json.Number("2")} {
		_, err := Validate(context.Background(), map[string]any{"prompt": "x", "num_images": n})
		assert.NoError(t, err, "num_images %v", n)
	}

	for _, n := range []any{6, 10, 100.0, 5.5, 1e20, 1e300, json.Number("1e19"), math.Inf(1)} {
		_, err := Validate(context.Background(), map[string]any{"prompt": "x", "num_images": n})
		require.Error(t, err)
		assert.Equal(t, "num_images", validationField(t, err))
		assert.Contains(t, err.Error(), "5")
		assert.Contains(t, err.Error(), "exceed")
	}

	for _, n := range []any{0, -1, 2.5, "2", -1e20, math.NaN()} {
		_, err := Validate(context.Background(), map[string]any{"prompt": "x", "num_images": n})
		assert.Equal(t, "num_images", validationField(t, err), "num_images %v", n)
		assert.NotContains(t, err.Error(), "exceed", "num_images %v", n)
	}
}

func TestValidateSafetyChecker(t *testing.T) {
	req, err := Validate(context.Background(), map[string]any{"prompt": "x", "enable_safety_checker": false})
	require.NoError(t, err)
	assert.False(t, req.EnableSafetyChecker)

	for _, v := range []any{"false", "true", 0, 1} {
		_, err := Validate(context.Background(), map[string]any{"prompt": "x", "enable_safety_checker": v})
		assert.Equal(t, "enable_safety_checker", validationField(t, err), "value %v", v)
	}
}

func TestValidateStepsAndGuidance(t *testing.T) {
	req, err := Validate(context.Background(), map[string]any{
		"prompt":              "x",
		"num_inference_steps": 40.0,
		"guidance_scale":      7,
	})
	require.NoError(t, err)
	assert.Equal(t, 40, req.NumInferenceSteps)
	assert.Equal(t, 7.0, req.GuidanceScale)

	_, err = Validate(context.Background(), map[string]any{"prompt": "x", "num_inference_steps": 0})
	assert.Equal(t, "num_inference_steps", validationField(t, err))

	_, err = Validate(context.Background(), map[string]any{"prompt": "x", "num_inference_steps": 1e20})
	assert.Equal(t, "num_inference_steps", validationField(t, err))
	assert.Contains(t, err.Error(), "too large")

	_, err = Validate(context.Background(), map[string]any{"prompt": "x", "guidance_scale": -1})
	assert.Equal(t, "guidance_scale", validationField(t, err))
}

func TestValidateOrder(t *testing.T) {
	_, err := Validate(context.Background(), map[string]any{
		"prompt":     " ",
		"image_size": "huge",
		"num_images": 10,
	})
	assert.Equal(t, "prompt", validationField(t, err))

	_, err = Validate(context.Background(), map[string]any{
		"prompt":     "x",
		"image_size": "huge",
		"num_images": 10,
	})
	assert.Equal(t, "image_size", validationField(t, err))
}

func TestValidateUnlistedModelPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	ctx := log.NewContext(context.Background(), log.New(&buf, slog.LevelDebug))

	req, err := Validate(ctx, map[string]any{"prompt": "x", "model": "fal-ai/some-new-model"})
	require.NoError(t, err)
	assert.Equal(t, "fal-ai/some-new-model", req.Model)
	assert.Contains(t, buf.String(), "fal-ai/some-new-model")
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestValidateListedModelIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	ctx := log.NewContext(context.Background(), log.New(&buf, slog.LevelDebug))

	req, err := Validate(ctx, map[string]any{"prompt": "x", "model": "fal-ai/kolors"})
	require.NoError(t, err)
	assert.Equal(t, "fal-ai/kolors", req.Model)
	assert.Zero(t, buf.Len())
}

func TestValidateBadModel(t *testing.T) {
	for _, v := range []any{"", "  ", 7} {
		_, err := Validate(context.Background(), map[string]any{"prompt": "x", "model": v})
		assert.Equal(t, "model", validationField(t, err), "model %v", v)
	}
}

func TestValidateKeepsPromptVerbatim(t *testing.T) {
	req, err := Validate(context.Background(), map[string]any{"prompt": "  padded prompt "})
	require.NoError(t, err)
	assert.Equal(t, "  padded prompt ", req.Prompt)
	assert.True(t, strings.HasPrefix(req.ToInput().Prompt, "  padded"))
}

func TestListSupportedModelsIsACopy(t *testing.T) {
	models := ListSupportedModels()
	require.Len(t, models, 8)
	models[0].ID = "changed"
	assert.Equal(t, "fal-ai/recraft-v3", SupportedModels[0].ID)
	assert.Contains(t, ModelSummary(), "Recraft V3 (fal-ai/recraft-v3)")
}
