package image

import (
	"strings"

	"github.com/samber/lo"
)

// ModelsDocURL is where callers can browse every model id the provider hosts.
const ModelsDocURL = "https://fal.ai/models"

type SupportedModel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SupportedModels is the recommended list. It is advisory: ids outside it are
// still submitted to the provider.
var SupportedModels = []SupportedModel{
	{ID: "fal-ai/recraft-v3", Name: "Recraft V3", Description: "SOTA vector and brand-style image generator"},
	{ID: "fal-ai/stable-diffusion-v35-large", Name: "Stable Diffusion 3.5 Large", Description: "High-quality, resource-efficient diffusion model"},
	{ID: "fal-ai/flux-lora", Name: "FLUX.1 [dev] with LoRAs", Description: "Super fast FLUX.1 [dev] model with LoRA support"},
	{ID: "fal-ai/flux-general", Name: "FLUX General", Description: "General-purpose text-to-image model"},
	{ID: "fal-ai/kolors", Name: "Kolors", Description: "Model with vivid color and artistic style"},
	{ID: "fal-ai/stable-cascade", Name: "Stable Cascade", Description: "Cascade-style diffusion model"},
	{ID: "fal-ai/aura-flow", Name: "Aura Flow", Description: "Artistic flow-based image generator"},
	{ID: "fal-ai/flux-pro/v1.1", Name: "FLUX Pro v1.1", Description: "Professional-grade FLUX model"},
}

var DefaultModel = SupportedModels[0].ID

func ListSupportedModels() []SupportedModel {
	return append([]SupportedModel(nil), SupportedModels...)
}

func FindModel(id string) (SupportedModel, bool) {
	return lo.Find(SupportedModels, func(m SupportedModel) bool {
		return m.ID == id
	})
}

// ModelSummary renders the list as "Name (id), Name (id), ...".
func ModelSummary() string {
	return strings.Join(lo.Map(SupportedModels, func(m SupportedModel, _ int) string {
		return m.Name + " (" + m.ID + ")"
	}), ", ")
}

func SizeNames() []string {
	return lo.Map(Sizes, func(s Size, _ int) string {
		return string(s)
	})
}
