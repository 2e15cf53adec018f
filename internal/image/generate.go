package image

import "context"

type Size string

const (
	SizeSquareHD     Size = "square_hd"
	SizeSquare       Size = "square"
	SizePortrait43   Size = "portrait_4_3"
	SizePortrait169  Size = "portrait_16_9"
	SizeLandscape43  Size = "landscape_4_3"
	SizeLandscape169 Size = "landscape_16_9"
)

const (
	DefaultSize          = SizeLandscape43
	DefaultSteps         = 28
	DefaultGuidance      = 3.5
	DefaultNumImages     = 1
	MaxNumImages         = 5
	DefaultSafetyChecker = true
)

// Sizes lists every accepted image_size in the order shown to callers.
var Sizes = []Size{
	SizeSquareHD,
	SizeSquare,
	SizePortrait43,
	SizePortrait169,
	SizeLandscape43,
	SizeLandscape169,
}

// Request is a validated set of generation parameters.
type Request struct {
	Prompt              string
	Model               string
	Size                Size
	NumInferenceSteps   int
	GuidanceScale       float64
	NumImages           int
	EnableSafetyChecker bool
}

// Input is the job payload submitted to the provider.
type Input struct {
	Prompt              string  `json:"prompt"`
	ImageSize           Size    `json:"image_size"`
	NumInferenceSteps   int     `json:"num_inference_steps"`
	GuidanceScale       float64 `json:"guidance_scale"`
	NumImages           int     `json:"num_images"`
	EnableSafetyChecker bool    `json:"enable_safety_checker"`
}

func (r Request) ToInput() Input {
	return Input{
		Prompt:              r.Prompt,
		ImageSize:           r.Size,
		NumInferenceSteps:   r.NumInferenceSteps,
		GuidanceScale:       r.GuidanceScale,
		NumImages:           r.NumImages,
		EnableSafetyChecker: r.EnableSafetyChecker,
	}
}

type Status string

const (
	StatusInQueue    Status = "IN_QUEUE"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Update is one status report for a running job. Logs holds only lines not
// reported by an earlier update.
type Update struct {
	RequestID string
	Status    Status
	Logs      []string
}

// Output is the terminal result of a job. Each image is the provider's
// descriptor as-is and carries at least a "url" key.
type Output struct {
	Images   []map[string]any
	Metadata map[string]any
}

type Generator interface {
	Generate(ctx context.Context, model string, input Input, onUpdate func(Update)) (Output, error)
}
