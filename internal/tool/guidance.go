package tool

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmorgan81/falbot/internal/image"
)

const examplePrompt = `A cute cat, sitting and looking at the camera, highly detailed, photorealistic.`

// argumentExamples holds a valid value for each argument that has no
// dedicated hint.
var argumentExamples = map[string]string{
	"num_images":            `"num_images": 4`,
	"enable_safety_checker": `"enable_safety_checker": false`,
	"num_inference_steps":   `"num_inference_steps": 28`,
	"guidance_scale":        `"guidance_scale": 3.5`,
}

// hint is appended to an error message unless the message already contains
// marker.
type hint struct {
	text   string
	marker string
}

func newHint(text string) hint {
	return hint{text: text, marker: text}
}

func sizesHint() hint {
	sizes := strings.Join(image.SizeNames(), ", ")
	return hint{text: "Valid image sizes: " + sizes + ".", marker: sizes}
}

func exampleHint() hint {
	return newHint(`Example: {"prompt": "` + examplePrompt + `"}`)
}

func argumentHint(field string) hint {
	example, ok := argumentExamples[field]
	if !ok {
		return exampleHint()
	}
	return newHint(`Example: {"prompt": "` + examplePrompt + `", ` + example + `}`)
}

func modelsHint() hint {
	return hint{
		text: "Recommended models: " + image.ModelSummary() + ".\n" +
			"Any model id hosted by fal.ai can be used; see " + image.ModelsDocURL + " for the full catalog.",
		marker: image.ModelSummary(),
	}
}

func credentialHint() hint {
	return newHint("Set FAL_KEY (or FAL_KEY_PARAM to read it from AWS SSM) to a valid fal.ai API key.")
}

// errorText is the message shown to the caller: the failure itself followed
// by any hints that apply to it.
func errorText(err error) string {
	msg := err.Error()
	parts := []string{"Error generating image: " + msg}
	for _, h := range hintsFor(err) {
		if !strings.Contains(msg, h.marker) {
			parts = append(parts, h.text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// hintsFor picks hints by field for validation failures, and by matching the
// message text for everything else.
func hintsFor(err error) []hint {
	var verr *image.ValidationError
	if errors.As(err, &verr) {
		switch verr.Field {
		case "image_size":
			return []hint{sizesHint()}
		case "prompt":
			return []hint{exampleHint()}
		case "model":
			return []hint{modelsHint()}
		}
		return []hint{argumentHint(verr.Field)}
	}

	var hints []hint
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "size") {
		hints = append(hints, sizesHint())
	}
	if strings.Contains(msg, "prompt") {
		hints = append(hints, exampleHint())
	}
	if strings.Contains(msg, "model") {
		hints = append(hints, modelsHint())
	}

	var perr *image.ProviderError
	if errors.Is(err, image.ErrMissingCredential) ||
		(errors.As(err, &perr) && (perr.StatusCode == http.StatusUnauthorized || perr.StatusCode == http.StatusForbidden)) {
		hints = append(hints, credentialHint())
	}
	return hints
}
