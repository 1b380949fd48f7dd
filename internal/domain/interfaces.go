package domain

import (
	"context"
)

// TextExtractor turns an uploaded document into raw report text.
// fileType is "pdf" or an image subtype such as "png".
type TextExtractor interface {
	Extract(ctx context.Context, document []byte, fileType string) (string, error)
}

// Translator renders strings into a target language. Implementations return
// exactly one output per input, in order, and fall back to the original
// string on any failure.
type Translator interface {
	Translate(ctx context.Context, texts []string, targetLanguage string) []string
}

// ReferenceLookup resolves test names against the reference dictionary
type ReferenceLookup interface {
	All() []TestReference
	Lookup(name string) (TestReference, bool)
	Resolve(nameOrAlias string) (TestReference, bool)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetAnalysisConfig() *AnalysisConfig
	Validate() error
	IsProduction() bool
}
