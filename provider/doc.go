// Package provider is the small generic framework the speech backends plug
// into: a named Provider, a factory Registry for runtime backend selection,
// and RequestResponse middleware for logging, metrics, tracing and retries.
//
// Backends register a Factory under their name and are created from the
// config section of the same name:
//
//	reg := transcription.NewRegistry()
//	reg.RegisterFactory(whisper.ProviderName, whisper.Factory(log))
//	loader, err := reg.Create("whisper", settings["whisper"])
//
// # Middleware
//
// Middleware[I, O] wraps a RequestResponse provider. Chain composes them,
// the first one being outermost:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithMetrics[In, Out](metrics),
//	    provider.WithTracing[In, Out]("audioscribe"),
//	    provider.Resilient[In, Out](provider.ResilienceConfig{Retry: &retryCfg}),
//	)(rawProvider)
package provider
