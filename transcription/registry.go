package transcription

import "github.com/kbukum/audioscribe/provider"

// NewRegistry creates a registry of transcription backends keyed by name.
func NewRegistry() *provider.Registry[Loader] {
	return provider.NewRegistry[Loader]()
}
