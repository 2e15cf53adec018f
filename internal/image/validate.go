package image

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/dmorgan81/falbot/internal/log"
	"github.com/samber/lo"
)

// Validate turns raw tool arguments into a Request. Checks run in a fixed
// order and the first failure is returned as a *ValidationError. A model id
// missing from SupportedModels is logged and passed through unchanged.
func Validate(ctx context.Context, args map[string]any) (Request, error) {
	req := Request{
		Model:               DefaultModel,
		Size:                DefaultSize,
		NumInferenceSteps:   DefaultSteps,
		GuidanceScale:       DefaultGuidance,
		NumImages:           DefaultNumImages,
		EnableSafetyChecker: DefaultSafetyChecker,
	}

	prompt, _ := arg(args, "prompt").(string)
	if strings.TrimSpace(prompt) == "" {
		return Request{}, invalid("prompt", "prompt is required and must be a non-empty description of the image")
	}
	req.Prompt = prompt

	if v := arg(args, "image_size"); v != nil {
		size, ok := v.(string)
		if !ok || !lo.Contains(Sizes, Size(size)) {
			return Request{}, invalid("image_size", "invalid image_size %v; valid sizes are: %s",
				quote(v), strings.Join(SizeNames(), ", "))
		}
		req.Size = Size(size)
	}

	if v := arg(args, "num_images"); v != nil {
		f, ok := number(v)
		switch {
		case ok && f > MaxNumImages:
			return Request{}, invalid("num_images", "num_images cannot exceed %d (got %s); the maximum is %d images per request",
				MaxNumImages, quote(v), MaxNumImages)
		case !ok || !integral(f):
			return Request{}, invalid("num_images", "num_images must be an integer between 1 and %d", MaxNumImages)
		case f < 1:
			return Request{}, invalid("num_images", "num_images must be at least 1 (got %s)", quote(v))
		}
		req.NumImages = int(f)
	}

	if v := arg(args, "enable_safety_checker"); v != nil {
		b, ok := v.(bool)
		if !ok {
			return Request{}, invalid("enable_safety_checker", "enable_safety_checker must be a boolean (true or false), got %v", quote(v))
		}
		req.EnableSafetyChecker = b
	}

	if v := arg(args, "num_inference_steps"); v != nil {
		f, ok := number(v)
		switch {
		case !ok || !integral(f) || f < 1:
			return Request{}, invalid("num_inference_steps", "num_inference_steps must be a positive integer, got %v", quote(v))
		case f > math.MaxInt32:
			return Request{}, invalid("num_inference_steps", "num_inference_steps is too large (got %v)", quote(v))
		}
		req.NumInferenceSteps = int(f)
	}

	if v := arg(args, "guidance_scale"); v != nil {
		f, ok := number(v)
		if !ok || f <= 0 {
			return Request{}, invalid("guidance_scale", "guidance_scale must be a positive number, got %v", quote(v))
		}
		req.GuidanceScale = f
	}

	if v := arg(args, "model"); v != nil {
		model, ok := v.(string)
		if !ok || strings.TrimSpace(model) == "" {
			return Request{}, invalid("model", "model must be a non-empty model id string")
		}
		req.Model = model
	}
	if _, ok := FindModel(req.Model); !ok {
		log.FromContextOrDiscard(ctx).WithGroup("validate").Warn("model is not in the recommended list, passing it through",
			"model", req.Model)
	}

	return req, nil
}

// arg returns the named argument, treating JSON null as absent.
func arg(args map[string]any, name string) any {
	if args == nil {
		return nil
	}
	return args[name]
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func integral(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}

func quote(v any) string {
	if s, ok := v.(string); ok {
		return `"` + s + `"`
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "an unsupported value"
	}
	return string(b)
}
