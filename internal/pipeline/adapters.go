package pipeline

import (
	"log/slog"
	"time"

	"github.com/forPelevin/highcut/internal/config"
	"github.com/forPelevin/highcut/internal/faults"
	"github.com/forPelevin/highcut/internal/logging"
	"github.com/forPelevin/highcut/internal/ports"
	"github.com/forPelevin/highcut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/highcut/internal/ports/adapters/whisperasr"
	"github.com/forPelevin/highcut/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/highcut/internal/prompts"
)

// NewMedia returns the ffmpeg-backed media adapter.
func NewMedia(cfg *config.Config) *ffmpeg.Adapter {
	return ffmpeg.New(cfg.Media.FFmpeg, cfg.Media.FFprobe)
}

// NewTranscriber builds the configured transcription backend, wrapped in the
// transcript cache when enabled.
func NewTranscriber(cfg *config.Config, logger *slog.Logger) (ports.Transcriber, error) {
	t := cfg.Transcription
	var (
		base ports.Transcriber
		salt string
	)
	switch t.Backend {
	case config.TranscriberASR:
		base = whisperasr.New(whisperasr.Options{
			BaseURL:  t.URL,
			Language: t.Language,
			Timeout:  time.Duration(t.TimeoutSeconds) * time.Second,
		})
		salt = "asr|" + t.Language + "|"
	case config.TranscriberWhisperCPP:
		base = whispercpp.New(t.Bin, t.Model, t.Language)
		salt = "whispercpp|" + t.Model + "|" + t.Language + "|"
	default:
		return nil, faults.Wrap(faults.ErrConfiguration, "", "transcription", "unknown backend "+t.Backend, nil)
	}
	if !t.Cache || cfg.Paths.CacheDir == "" {
		return base, nil
	}
	return &transcriptCache{
		next:   base,
		dir:    cfg.Paths.CacheDir,
		salt:   salt,
		logger: logging.Component(logger, "transcript-cache"),
	}, nil
}

// Templates resolves the detection and classification prompt texts.
type Templates struct {
	Detect   prompts.Template
	Classify prompts.Template
}

// LoadTemplates resolves prompts from cfg. detectName, when set, overrides
// the configured detection prompt.
func LoadTemplates(cfg *config.Config, detectName string, logger *slog.Logger) (Templates, error) {
	logger = logging.Component(logger, "prompts")
	catalog := prompts.NewCatalog(cfg.Paths.PromptsDir)

	var (
		out Templates
		err error
	)
	switch {
	case detectName != "":
		out.Detect, err = catalog.Load(prompts.KindDetect, detectName)
	case cfg.Detection.PromptFile != "":
		out.Detect, err = prompts.LoadFile(prompts.KindDetect, cfg.Detection.PromptFile)
	default:
		out.Detect, err = catalog.Load(prompts.KindDetect, cfg.Detection.Prompt)
	}
	if err != nil {
		return out, err
	}
	if out.Detect.Fallback {
		logger.Warn("detection prompt not found, using default", "requested", firstNonEmpty(detectName, cfg.Detection.Prompt), "source", out.Detect.Source)
	}

	if out.Classify, err = catalog.Load(prompts.KindClassify, cfg.Classification.Prompt); err != nil {
		return out, err
	}
	if out.Classify.Fallback {
		logger.Warn("classification prompt not found, using default", "requested", cfg.Classification.Prompt, "source", out.Classify.Source)
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
