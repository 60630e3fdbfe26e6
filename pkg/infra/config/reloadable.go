package config

// Reloadable is implemented by components that can apply a new
// configuration at runtime. Implementations validate the incoming
// value and apply it atomically, returning an error to reject it.
type Reloadable interface {
	OnConfigChange(newConfig interface{}) error
}
