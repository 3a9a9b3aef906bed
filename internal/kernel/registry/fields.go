package registry

import "github.com/agentmesh/swarmkernel/internal/kernel/model"

// Fields carries the subset of Agent an Update call is permitted to
// change. Runtime state — status, thinking, metrics, history — has no
// field here: Update cannot touch it by construction, not by filtering.
// Zero-value pointers are left untouched; a non-nil pointer replaces the
// corresponding Agent field, including with its zero value.
type Fields struct {
	Name         *string
	Role         *string
	Description  *string
	Provider     *model.ProviderKind
	Model        *string
	Endpoint     *string
	Credential   *string
	Instructions *string

	Temperature     *float64
	MaxOutputTokens *int

	ProjectName *string
	Leader      *bool

	Icon   *string
	Colour *string
}

func (f Fields) applyTo(a *model.Agent) {
	if f.Name != nil {
		a.Name = *f.Name
	}
	if f.Role != nil {
		a.Role = *f.Role
	}
	if f.Description != nil {
		a.Description = *f.Description
	}
	if f.Provider != nil {
		a.Provider = *f.Provider
	}
	if f.Model != nil {
		a.Model = *f.Model
	}
	if f.Endpoint != nil {
		a.Endpoint = *f.Endpoint
	}
	if f.Credential != nil {
		a.Credential = *f.Credential
	}
	if f.Instructions != nil {
		a.Instructions = *f.Instructions
	}
	if f.Temperature != nil {
		a.Temperature = *f.Temperature
	}
	if f.MaxOutputTokens != nil {
		a.MaxOutputTokens = *f.MaxOutputTokens
	}
	if f.ProjectName != nil {
		a.ProjectName = *f.ProjectName
	}
	if f.Leader != nil {
		a.Leader = *f.Leader
	}
	if f.Icon != nil {
		a.Icon = *f.Icon
	}
	if f.Colour != nil {
		a.Colour = *f.Colour
	}
}
