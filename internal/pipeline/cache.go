package pipeline

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"lukechampine.com/blake3"

	"github.com/forPelevin/highcut/internal/ports"
)

// transcriptCache reuses the SRT of audio it has already seen. Entries are
// keyed by the blake3 fingerprint of the audio bytes plus a salt naming the
// transcription settings.
type transcriptCache struct {
	next   ports.Transcriber
	dir    string
	salt   string
	logger *slog.Logger
}

var _ ports.Transcriber = (*transcriptCache)(nil)

func (c *transcriptCache) Transcribe(ctx context.Context, audioPath, outSRT string) error {
	key, err := fingerprint(audioPath, c.salt)
	if err != nil {
		c.logger.Warn("transcript cache disabled for this file", "error", err)
		return c.next.Transcribe(ctx, audioPath, outSRT)
	}
	cached := filepath.Join(c.dir, key+".srt")
	if err := copyAtomic(cached, outSRT); err == nil {
		c.logger.Info("transcript cache hit", "key", key[:12])
		return nil
	}

	if err := c.next.Transcribe(ctx, audioPath, outSRT); err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		c.logger.Warn("transcript cache store failed", "error", err)
		return nil
	}
	if err := copyAtomic(outSRT, cached); err != nil {
		c.logger.Warn("transcript cache store failed", "error", err)
	}
	return nil
}

func fingerprint(path, salt string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New(32, nil)
	_, _ = io.WriteString(h, salt)
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("calculating blake3 hash from file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func copyAtomic(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
