// Package transcription defines the speech-to-text backend contract.
//
// A backend is registered as a Loader. Loading a model tier is the
// expensive step and happens once per run; the returned Provider is then
// reused for every audio file.
//
// # Backends
//
//   - transcription/whisper: faster-whisper HTTP sidecar
//   - transcription/openai: OpenAI audio transcription API
//   - transcription/whispercli: local whisper command-line program
//
// # Usage
//
//	reg := transcription.NewRegistry()
//	reg.RegisterFactory(whisper.ProviderName, whisper.Factory(log))
//	loader, err := reg.Create("whisper", cfg)
//	model, err := loader.Load(ctx, "medium")
//	resp, err := model.Transcribe(ctx, transcription.TranscriptionRequest{AudioPath: "talk.mp3", Language: "fr"})
package transcription
