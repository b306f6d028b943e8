package ai

// Free-tier model pool. The first text model and the vision model form the
// failover chain for ordinary chat; the role-tagged coder models power the
// multi-agent pipeline.
const (
	ModelGeneralText = "xiaomi/mimo-v2-flash:free"
	ModelVision      = "nvidia/nemotron-nano-12b-v2-vl:free"
	ModelCoderPro    = "kwaipilot/kat-coder-pro:free"
	ModelDevstral    = "mistralai/devstral-2512:free"

	// ModelAuto asks the engine to pick for the caller.
	ModelAuto = "auto"
)

// Registry is the static pool of candidate models for one deployment.
type Registry struct {
	models []ModelDescriptor
}

// DefaultRegistry returns the free-tier pool used in production.
func DefaultRegistry() *Registry {
	return &Registry{models: []ModelDescriptor{
		{
			ID:         ModelGeneralText,
			Name:       "Xiaomi Mimo V2",
			Provider:   "Xiaomi",
			Capability: CapabilityText,
			AgentRole:  RoleArchitect,
		},
		{
			ID:         ModelVision,
			Name:       "Nemotron Vision",
			Provider:   "NVIDIA",
			Capability: CapabilityVision,
		},
		{
			ID:         ModelCoderPro,
			Name:       "KAT Coder Pro",
			Provider:   "Kwaipilot",
			Capability: CapabilityText,
			AgentRole:  RoleFrontend,
		},
		{
			ID:         ModelDevstral,
			Name:       "Devstral",
			Provider:   "Mistral",
			Capability: CapabilityText,
			AgentRole:  RoleBackend,
		},
	}}
}

// All returns every descriptor in pool order.
func (r *Registry) All() []ModelDescriptor {
	out := make([]ModelDescriptor, len(r.models))
	copy(out, r.models)
	return out
}

// TextModel returns the general-purpose text model id.
func (r *Registry) TextModel() string {
	for _, m := range r.models {
		if m.Capability == CapabilityText {
			return m.ID
		}
	}
	return ModelGeneralText
}

// VisionModel returns the vision-capable model id.
func (r *Registry) VisionModel() string {
	for _, m := range r.models {
		if m.Capability == CapabilityVision {
			return m.ID
		}
	}
	return ModelVision
}

// ChatPool returns the ordered failover chain for ordinary chat turns:
// the general text model first, then the vision model.
func (r *Registry) ChatPool() []string {
	return []string{r.TextModel(), r.VisionModel()}
}

// ForAgentRole returns the model id tagged for a pipeline role, falling back
// to the general text model when the role is untagged.
func (r *Registry) ForAgentRole(role AgentRole) string {
	for _, m := range r.models {
		if m.AgentRole == role {
			return m.ID
		}
	}
	return r.TextModel()
}

// Contains reports whether id is part of the static pool.
func (r *Registry) Contains(id string) bool {
	for _, m := range r.models {
		if m.ID == id {
			return true
		}
	}
	return false
}
