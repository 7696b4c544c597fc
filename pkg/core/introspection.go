package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Table          string `json:"table"`
	Mappings       int    `json:"mappings"`
	Workers        int    `json:"workers"`
	Runs           int    `json:"runs"`
	Failures       int    `json:"failures"`
	LastInput      string `json:"last_input,omitempty"`
	RepositoryType string `json:"repository_type"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repoType := "unknown"
	if s.repo != nil {
		repoType = "repository"
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
	}

	st := ServiceState{
		Workers:        s.workers,
		Runs:           s.runs,
		Failures:       s.failures,
		LastInput:      s.last,
		RepositoryType: repoType,
	}
	if s.table != nil {
		st.Table = s.table.Name()
		st.Mappings = s.table.Len()
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
