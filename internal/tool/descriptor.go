package tool

import (
	"github.com/dmorgan81/falbot/internal/image"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Name = "generate-image"

// Descriptor is the tools/list entry for Name.
func Descriptor() *mcp.Tool {
	return &mcp.Tool{
		Name:        Name,
		Description: "Generate an image from a text prompt using a selectable text-to-image model.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prompt": map[string]any{
					"type":        "string",
					"description": "Text prompt describing the image to generate",
				},
				"model": map[string]any{
					"type":        "string",
					"default":     image.DefaultModel,
					"description": "ID of the text-to-image model to use. Recommended: " + image.ModelSummary() + ". Other fal.ai model ids are accepted.",
				},
				"image_size": map[string]any{
					"type":        "string",
					"enum":        image.SizeNames(),
					"default":     string(image.DefaultSize),
					"description": "Size of the generated image",
				},
				"num_images": map[string]any{
					"type":        "integer",
					"default":     image.DefaultNumImages,
					"minimum":     1,
					"maximum":     image.MaxNumImages,
					"description": "Number of images to generate",
				},
				"num_inference_steps": map[string]any{
					"type":        "integer",
					"default":     image.DefaultSteps,
					"description": "Number of inference steps",
				},
				"guidance_scale": map[string]any{
					"type":        "number",
					"default":     image.DefaultGuidance,
					"description": "Classifier Free Guidance scale",
				},
				"enable_safety_checker": map[string]any{
					"type":        "boolean",
					"default":     image.DefaultSafetyChecker,
					"description": "Enable the safety checker",
				},
			},
			"required": []string{"prompt"},
		},
	}
}
