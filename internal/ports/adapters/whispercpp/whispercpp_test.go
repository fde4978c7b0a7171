package whispercpp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/forPelevin/highcut/internal/faults"
)

// fakeWhisper writes an SRT next to the -of prefix, like whisper.cpp does.
const fakeWhisper = `#!/bin/sh
of=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-of" ]; then of="$2"; shift; fi
  shift
done
printf '1\n00:00:00,000 --> 00:00:01,500\nhello\n\n' > "$of.srt"
`

func writeBin(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell fakes need a POSIX shell")
	}
	p := filepath.Join(t.TempDir(), "whisper")
	if err := os.WriteFile(p, []byte(script), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestTranscribeWritesSRT(t *testing.T) {
	bin := writeBin(t, fakeWhisper)
	out := filepath.Join(t.TempDir(), "talk.srt")
	if err := New(bin, "model.bin", "en").Transcribe(context.Background(), "talk.wav", out); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "hello") {
		t.Fatalf("unexpected srt: %q", b)
	}
}

func TestTranscribeRequiresModel(t *testing.T) {
	err := New("whisper", "", "").Transcribe(context.Background(), "a.wav", "a.srt")
	if !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestTranscribeSurfacesToolFailure(t *testing.T) {
	bin := writeBin(t, "#!/bin/sh\necho 'failed to load model' >&2\nexit 3\n")
	err := New(bin, "model.bin", "").Transcribe(context.Background(), "a.wav", filepath.Join(t.TempDir(), "a.srt"))
	if !errors.Is(err, faults.ErrExternalTool) || !strings.Contains(err.Error(), "failed to load model") {
		t.Fatalf("unexpected error: %v", err)
	}
}
