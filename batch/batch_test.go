package batch

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/audioscribe/diarization"
	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/storage/local"
	"github.com/kbukum/audioscribe/transcription"
)

// --- test doubles ---

type fakeModel struct {
	texts map[string]string
	fail  map[string]error
	calls []string
	hook  func(path string)
}

func (m *fakeModel) Name() string                     { return "fake" }
func (m *fakeModel) IsAvailable(context.Context) bool { return true }

func (m *fakeModel) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	base := filepath.Base(req.AudioPath)
	m.calls = append(m.calls, base)
	if m.hook != nil {
		m.hook(base)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.fail[base]; err != nil {
		return nil, err
	}
	if text, ok := m.texts[base]; ok {
		return &transcription.TranscriptionResponse{Text: text}, nil
	}
	return &transcription.TranscriptionResponse{Text: "text of " + base}, nil
}

type countingLoader struct {
	model *fakeModel
	loads int
	tiers []string
	err   error
}

func (l *countingLoader) Name() string                     { return "fake" }
func (l *countingLoader) IsAvailable(context.Context) bool { return true }

func (l *countingLoader) Load(_ context.Context, tier string) (transcription.Provider, error) {
	l.loads++
	l.tiers = append(l.tiers, tier)
	if l.err != nil {
		return nil, l.err
	}
	return l.model, nil
}

type fakeDiarizer struct {
	resp *diarization.DiarizationResponse
	err  error
	reqs []diarization.DiarizationRequest
}

func (f *fakeDiarizer) Name() string                     { return "fake-diarizer" }
func (f *fakeDiarizer) IsAvailable(context.Context) bool { return true }

func (f *fakeDiarizer) Diarize(_ context.Context, req diarization.DiarizationRequest) (*diarization.DiarizationResponse, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

// --- helpers ---

func touch(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("audio"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func outSink(t *testing.T) (*StorageSink, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "out")
	s, err := local.NewStorage(dir)
	if err != nil {
		t.Fatal(err)
	}
	return NewStorageSink(s), dir
}

func newDriver(t *testing.T, cfg Config, loader *countingLoader, sink Sink, opts ...Option) *Driver {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Nop())}, opts...)
	d, err := New(cfg, loader, sink, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// --- Resolve ---

func TestResolveDirectoryFiltersAndOrders(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "b.WAV", "a.mp3", "sub/c.flac", "sub/d.m4a", "e.aac", "notes.txt", "cover.png", "sub/readme")

	sources, err := Resolve(root, "en", logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, s := range sources {
		rel, _ := filepath.Rel(root, s.Path)
		got = append(got, filepath.ToSlash(rel))
		if s.Language != "en" {
			t.Errorf("language not propagated: %+v", s)
		}
	}
	want := []string{"a.mp3", "b.WAV", "e.aac", "sub/c.flac", "sub/d.m4a"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
	if sources[1].Format != "wav" {
		t.Errorf("expected lower-case format, got %q", sources[1].Format)
	}
}

func TestResolveSingleFileAnyExtension(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "memo.ogg")

	sources, err := Resolve(filepath.Join(root, "memo.ogg"), "fr", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 || sources[0].Format != "ogg" {
		t.Errorf("unexpected sources %+v", sources)
	}
}

func TestResolveMissing(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nope.mp3"), "fr", nil)
	if !errors.HasCode(err, errors.ErrCodeAudioNotFound) {
		t.Errorf("expected AUDIO_NOT_FOUND, got %v", err)
	}
}

func TestResolveUnsupported(t *testing.T) {
	if _, err := os.Stat("/dev/null"); err != nil {
		t.Skip("no /dev/null")
	}
	_, err := Resolve("/dev/null", "fr", nil)
	if !errors.HasCode(err, errors.ErrCodeUnsupportedPath) {
		t.Errorf("expected UNSUPPORTED_PATH, got %v", err)
	}
}

func TestResolveFollowsFileSymlinks(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "real/talk.mp3")
	dir := filepath.Join(root, "in")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "real", "talk.mp3"), filepath.Join(dir, "link.mp3")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(dir, "linked-dir")); err != nil {
		t.Fatal(err)
	}

	sources, err := Resolve(dir, "en", logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 || filepath.Base(sources[0].Path) != "link.mp3" {
		t.Errorf("expected only the file symlink, got %+v", sources)
	}
}

func TestResolveSkipsDanglingSymlink(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.mp3")
	if err := os.Symlink(filepath.Join(root, "gone.mp3"), filepath.Join(root, "b.mp3")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "warn", Format: logger.FormatJSON}, "audioscribe", &buf)
	sources, err := Resolve(root, "en", log)
	if err != nil {
		t.Fatalf("a dangling entry should not fail the walk: %v", err)
	}
	if len(sources) != 1 || filepath.Base(sources[0].Path) != "a.mp3" {
		t.Errorf("unexpected sources %+v", sources)
	}
	if !strings.Contains(buf.String(), "b.mp3") {
		t.Errorf("expected a warning naming the skipped entry, got %q", buf.String())
	}
}

func TestResolveSkipsUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := t.TempDir()
	touch(t, root, "a.mp3", "locked/b.mp3", "z/c.wav")
	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	sources, err := Resolve(root, "en", logger.Nop())
	if err != nil {
		t.Fatalf("an unreadable subdirectory should not fail the walk: %v", err)
	}
	var got []string
	for _, s := range sources {
		got = append(got, filepath.Base(s.Path))
	}
	if strings.Join(got, ",") != "a.mp3,c.wav" {
		t.Errorf("got %v, want [a.mp3 c.wav]", got)
	}
}

func TestOutputName(t *testing.T) {
	tests := map[string]string{
		"/a/talk.mp3":        "talk.txt",
		"rec.2024.01.wav":    "rec.2024.01.txt",
		"noext":              "noext.txt",
		"/x/y/Interview.M4A": "Interview.txt",
	}
	for in, want := range tests {
		if got := OutputName(AudioSource{Path: in}); got != want {
			t.Errorf("OutputName(%q) = %q, want %q", in, got, want)
		}
	}
}

// --- Driver ---

func TestRunDirectoryWritesOneOutputPerAudioFile(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.mp3", "b.wav", "sub/c.flac", "notes.txt", "cover.jpg")
	sink, out := outSink(t)
	loader := &countingLoader{model: &fakeModel{}}

	report, err := newDriver(t, Config{Tier: "base"}, loader, sink).Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 outputs, got %d", len(entries))
	}
	if got := readFile(t, filepath.Join(out, "c.txt")); got != "text of c.flac" {
		t.Errorf("unexpected transcript %q", got)
	}
	if report.Counts.OK != 3 || len(report.Results) != 3 {
		t.Errorf("unexpected counts %+v", report.Counts)
	}
	if loader.loads != 1 || loader.tiers[0] != "base" {
		t.Errorf("expected one load of tier base, got %d %v", loader.loads, loader.tiers)
	}
	if report.RunID == "" || report.Language != transcription.DefaultLanguage {
		t.Errorf("unexpected report header %+v", report)
	}
}

func TestRunSiblingSink(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "sub/talk.mp3")
	loader := &countingLoader{model: &fakeModel{texts: map[string]string{"talk.mp3": "bonjour"}}}

	report, err := newDriver(t, Config{}, loader, SiblingSink{}).Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, "sub", "talk.txt")
	if got := readFile(t, want); got != "bonjour" {
		t.Errorf("got %q", got)
	}
	if !strings.HasSuffix(report.Results[0].Output, filepath.Join("sub", "talk.txt")) {
		t.Errorf("unexpected output location %q", report.Results[0].Output)
	}
}

func TestRunContinuesAfterFailure(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.mp3", "b.mp3", "c.mp3")
	sink, out := outSink(t)
	model := &fakeModel{fail: map[string]error{
		"b.mp3": errors.ExternalServiceError("whisper", stderrors.New("boom")),
	}}

	report, err := newDriver(t, Config{}, &countingLoader{model: model}, sink).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("expected no run error without fail-fast, got %v", err)
	}
	if report.Counts != (Counts{OK: 2, Failed: 1}) {
		t.Errorf("unexpected counts %+v", report.Counts)
	}
	if !report.HasFailures() {
		t.Error("expected HasFailures")
	}
	failed := report.Results[1]
	if failed.Status != StatusFailed || failed.Code != string(errors.ErrCodeExternalService) {
		t.Errorf("unexpected failed result %+v", failed)
	}
	if _, err := os.Stat(filepath.Join(out, "c.txt")); err != nil {
		t.Errorf("expected c.txt after the failure: %v", err)
	}
}

func TestRunFailFastStopsAndSkipsRest(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.mp3", "b.mp3", "c.mp3")
	sink, _ := outSink(t)
	cause := errors.ExternalServiceError("whisper", stderrors.New("boom"))
	model := &fakeModel{fail: map[string]error{"b.mp3": cause}}

	report, err := newDriver(t, Config{FailFast: true}, &countingLoader{model: model}, sink).Run(context.Background(), root)
	if !stderrors.Is(err, cause) {
		t.Fatalf("expected the failing item's error, got %v", err)
	}
	if len(model.calls) != 2 {
		t.Errorf("expected the run to stop after b.mp3, calls %v", model.calls)
	}
	if report.Results[2].Status != StatusSkipped || report.Results[2].Reason != reasonNotProcessed {
		t.Errorf("expected c.mp3 skipped, got %+v", report.Results[2])
	}
	if report.Counts != (Counts{OK: 1, Failed: 1, Skipped: 1}) {
		t.Errorf("unexpected counts %+v", report.Counts)
	}
}

func TestRunCancellation(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.mp3", "b.mp3", "c.mp3")
	sink, _ := outSink(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	model := &fakeModel{hook: func(name string) {
		if name == "b.mp3" {
			cancel()
		}
	}}

	report, err := newDriver(t, Config{}, &countingLoader{model: model}, sink).Run(ctx, root)
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	got := []Status{report.Results[0].Status, report.Results[1].Status, report.Results[2].Status}
	want := []Status{StatusOK, StatusFailed, StatusSkipped}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("statuses %v, want %v", got, want)
		}
	}
}

func TestRunSkipExisting(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.mp3", "b.mp3")
	sink, out := outSink(t)
	if err := os.WriteFile(filepath.Join(out, "a.txt"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	model := &fakeModel{}

	report, err := newDriver(t, Config{SkipExisting: true}, &countingLoader{model: model}, sink).Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(out, "a.txt")); got != "old" {
		t.Errorf("existing output overwritten: %q", got)
	}
	if report.Results[0].Reason != reasonOutputExists || len(model.calls) != 1 {
		t.Errorf("unexpected results %+v calls %v", report.Results, model.calls)
	}
}

func TestRunSkipExistingAllDoneDoesNotLoad(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.mp3")
	sink, out := outSink(t)
	if err := os.WriteFile(filepath.Join(out, "a.txt"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	loader := &countingLoader{model: &fakeModel{}}

	report, err := newDriver(t, Config{SkipExisting: true}, loader, sink).Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if loader.loads != 0 {
		t.Errorf("expected no model load, got %d", loader.loads)
	}
	if report.Counts.Skipped != 1 {
		t.Errorf("unexpected counts %+v", report.Counts)
	}
}

func TestRunModelLoadFailure(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.mp3")
	sink, _ := outSink(t)
	loader := &countingLoader{err: errors.ModelLoadFailed("fake", "medium", stderrors.New("no gpu"))}

	report, err := newDriver(t, Config{}, loader, sink).Run(context.Background(), root)
	if !errors.HasCode(err, errors.ErrCodeModelLoadFailed) {
		t.Fatalf("expected MODEL_LOAD_FAILED, got %v", err)
	}
	if report.Results[0].Reason != reasonModelLoad {
		t.Errorf("unexpected result %+v", report.Results[0])
	}
}

func TestRunResolveError(t *testing.T) {
	sink, _ := outSink(t)
	loader := &countingLoader{model: &fakeModel{}}
	_, err := newDriver(t, Config{}, loader, sink).Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.HasCode(err, errors.ErrCodeAudioNotFound) {
		t.Fatalf("expected AUDIO_NOT_FOUND, got %v", err)
	}
	if loader.loads != 0 {
		t.Error("model loaded for an unresolvable input")
	}
}

func TestRunDiarizeInsertsMarkers(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "talk.wav")
	sink, out := outSink(t)
	model := &fakeModel{texts: map[string]string{"talk.wav": "a b c d"}}
	diar := &fakeDiarizer{resp: &diarization.DiarizationResponse{
		Segments: []diarization.Segment{{Speaker: "A", Start: 1.5, End: 2.5}},
		Duration: 4,
	}}

	cfg := Config{Diarize: true, NumSpeakers: 2}
	report, err := newDriver(t, cfg, &countingLoader{model: model}, sink, WithDiarizer(diar)).Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(out, "talk.txt")); got != "a b [Speaker Change: Speaker A] c d" {
		t.Errorf("got %q", got)
	}
	if report.Results[0].Markers != 1 {
		t.Errorf("expected 1 marker, got %d", report.Results[0].Markers)
	}
	if diar.reqs[0].NumSpeakers != 2 {
		t.Errorf("speaker count not forwarded: %+v", diar.reqs[0])
	}
}

func TestRunDiarizeDurationFallsBackToCoverage(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "talk.wav")
	sink, out := outSink(t)
	model := &fakeModel{texts: map[string]string{"talk.wav": "a b c d"}}
	diar := &fakeDiarizer{resp: &diarization.DiarizationResponse{
		Segments: []diarization.Segment{
			{Speaker: "A", Start: 0, End: 2},
			{Speaker: "B", Start: 2, End: 4},
		},
	}}

	_, err := newDriver(t, Config{Diarize: true}, &countingLoader{model: model}, sink, WithDiarizer(diar)).Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	// coverage 4s, 1s per word: A at index 1, B at index 3 on the grown list
	want := "a [Speaker Change: Speaker A] b [Speaker Change: Speaker B] c d"
	if got := readFile(t, filepath.Join(out, "talk.txt")); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRunDiarizeEmptyTranscript(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "silence.wav")
	sink, out := outSink(t)
	model := &fakeModel{texts: map[string]string{"silence.wav": ""}}
	diar := &fakeDiarizer{resp: &diarization.DiarizationResponse{
		Segments: []diarization.Segment{{Speaker: "A", Start: 0, End: 1}},
		Duration: 1,
	}}

	report, err := newDriver(t, Config{Diarize: true}, &countingLoader{model: model}, sink, WithDiarizer(diar)).Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(out, "silence.txt")); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
	if report.Results[0].Status != StatusOK {
		t.Errorf("empty transcript should not fail: %+v", report.Results[0])
	}
}

func TestRunDiarizeFailureFailsFile(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "talk.wav")
	sink, _ := outSink(t)
	diar := &fakeDiarizer{err: errors.ServiceUnavailable("pyannote")}

	report, err := newDriver(t, Config{Diarize: true}, &countingLoader{model: &fakeModel{}}, sink, WithDiarizer(diar)).Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if report.Results[0].Code != string(errors.ErrCodeServiceUnavailable) {
		t.Errorf("unexpected result %+v", report.Results[0])
	}
}

func TestRunModelWrapper(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.mp3")
	sink, _ := outSink(t)
	wrapped := 0
	wrap := func(p transcription.Provider) transcription.Provider {
		wrapped++
		return p
	}

	if _, err := newDriver(t, Config{}, &countingLoader{model: &fakeModel{}}, sink, WithModelWrapper(wrap)).Run(context.Background(), root); err != nil {
		t.Fatal(err)
	}
	if wrapped != 1 {
		t.Errorf("expected the model to be wrapped once, got %d", wrapped)
	}
}

func TestNewValidation(t *testing.T) {
	sink, _ := outSink(t)
	loader := &countingLoader{model: &fakeModel{}}

	tests := []struct {
		name   string
		cfg    Config
		loader transcription.Loader
		sink   Sink
	}{
		{"unknown tier", Config{Tier: "huge"}, loader, sink},
		{"negative speakers", Config{MinSpeakers: -1}, loader, sink},
		{"min above max", Config{MinSpeakers: 4, MaxSpeakers: 2}, loader, sink},
		{"diarize without diarizer", Config{Diarize: true}, loader, sink},
		{"no loader", Config{}, nil, sink},
		{"no sink", Config{}, loader, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.cfg, tc.loader, tc.sink, WithLogger(logger.Nop()))
			if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestWriteReport(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.mp3", "b.mp3")
	sink, _ := outSink(t)
	model := &fakeModel{fail: map[string]error{"b.mp3": errors.Timeout("transcribe")}}

	report, err := newDriver(t, Config{}, &countingLoader{model: model}, sink).Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	dir, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteReport(context.Background(), dir, "report.yaml", report); err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		RunID   string `yaml:"run_id"`
		Counts  Counts `yaml:"counts"`
		Results []struct {
			Status string `yaml:"status"`
			Code   string `yaml:"code"`
		} `yaml:"results"`
	}
	data := readFile(t, filepath.Join(dir.BasePath(), "report.yaml"))
	if err := yaml.Unmarshal([]byte(data), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.RunID != report.RunID || decoded.Counts != (Counts{OK: 1, Failed: 1}) {
		t.Errorf("unexpected report %+v", decoded)
	}
	if decoded.Results[1].Status != "failed" || decoded.Results[1].Code != string(errors.ErrCodeTimeout) {
		t.Errorf("unexpected result entry %+v", decoded.Results[1])
	}
}
