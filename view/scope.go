package view

import "maps"

// Scope defines an interface for passing arguments to a view. Scopes are organized in a
// hierarchical structure: a template spawns a child scope for every loop iteration, so that
// loop variables do not leak into the parent.
//
// The interface allows custom implementations carrying extra data such as the HTTP request
// or the navigation state of a page session.
type Scope interface {
	// Spawn creates a new child scope. The child sees the parent's variables overridden by vars.
	Spawn(vars map[string]any) Scope

	// Vars provides access to variables stored in the scope.
	Vars() map[string]any
}

// BaseScope is a base implementation of the Scope interface. For extra functionality, this type
// can be wrapped (embedded) in a custom scope implementation.
type BaseScope struct {
	vars map[string]any
}

var _ Scope = (*BaseScope)(nil)

func NewScope(vars map[string]any) *BaseScope {
	if vars == nil {
		vars = map[string]any{}
	}
	return &BaseScope{vars: vars}
}

func (s *BaseScope) Spawn(vars map[string]any) Scope {
	merged := make(map[string]any, len(s.vars)+len(vars))
	maps.Copy(merged, s.vars)
	maps.Copy(merged, vars)
	return &BaseScope{vars: merged}
}

func (s *BaseScope) Vars() map[string]any {
	return s.vars
}
