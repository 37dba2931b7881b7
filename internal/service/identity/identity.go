// Package identity resolves the caller's client identity for row-level
// access decisions. The identity is trusted configuration, never user
// input from the request.
package identity

import "os"

// EnvProvider reads the client identity from a process environment
// variable.
type EnvProvider struct {
	varName string
}

// FromEnv creates a provider backed by the named environment variable.
func FromEnv(varName string) *EnvProvider {
	return &EnvProvider{varName: varName}
}

// CurrentClientIdentity returns the configured identity. ok is false
// when the variable is unset or empty.
func (p *EnvProvider) CurrentClientIdentity() (string, bool) {
	v := os.Getenv(p.varName)
	return v, v != ""
}

// StaticProvider returns a fixed identity.
type StaticProvider struct {
	id string
}

// Static creates a provider with a fixed identity. An empty id yields a
// provider that reports no identity.
func Static(id string) *StaticProvider {
	return &StaticProvider{id: id}
}

// CurrentClientIdentity returns the fixed identity.
func (p *StaticProvider) CurrentClientIdentity() (string, bool) {
	return p.id, p.id != ""
}
