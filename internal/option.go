package internal

import "github.com/starford/kondate/internal/oracle"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	generator oracle.Generator
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithGenerator replaces the Gemini transport, e.g. with a local stub.
func WithGenerator(gen oracle.Generator) Option {
	return func(a *application) {
		a.generator = gen
	}
}
