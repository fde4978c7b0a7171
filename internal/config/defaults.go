package config

const (
	defaultOutputDir       = "processed"
	defaultWorkDir         = "~/.cache/highcut/work"
	defaultCacheDir        = "~/.cache/highcut/transcripts"
	defaultMinLen          = 3
	defaultMaxLen          = 30
	defaultPrompt          = "default"
	defaultThreshold       = 7
	defaultOllamaURL       = "http://localhost:11434"
	defaultOllamaModel     = "llama3.1"
	defaultOllamaTimeout   = 2400
	defaultPullTimeout     = 600
	defaultPollInterval    = 5
	defaultPollAttempts    = 60
	defaultRemoteBaseURL   = "https://api.openai.com/v1"
	defaultRemoteModel     = "gpt-4o-mini"
	defaultRemoteTimeout   = 300
	defaultASRURL          = "http://localhost:9000"
	defaultASRLanguage     = "pt"
	defaultASRTimeout      = 2400
	defaultWhisperBin      = "whisper-cli"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultRemoteReferer   = "https://github.com/forPelevin/highcut"
	defaultRemoteTitle     = "highcut"
	defaultLocalNumCtx     = 8192
	defaultLocalTemp       = 0.2
	defaultRepeatPenalty   = 1.1
	defaultTranscriberName = "asr"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			CacheDir:  defaultCacheDir,
		},
		Segmentation: Segmentation{
			MinLen: defaultMinLen,
			MaxLen: defaultMaxLen,
		},
		Detection: Detection{
			Mode:   ModeLLM,
			Prompt: defaultPrompt,
		},
		Classification: Classification{
			Enabled:   true,
			Prompt:    defaultPrompt,
			Threshold: defaultThreshold,
		},
		LLM: LLM{
			Backend: BackendLocal,
			Local: Local{
				URL:                 defaultOllamaURL,
				Model:               defaultOllamaModel,
				TimeoutSeconds:      defaultOllamaTimeout,
				PullTimeoutSeconds:  defaultPullTimeout,
				PollIntervalSeconds: defaultPollInterval,
				PollAttempts:        defaultPollAttempts,
				Temperature:         defaultLocalTemp,
				TopP:                0.9,
				TopK:                40,
				RepeatPenalty:       defaultRepeatPenalty,
				NumCtx:              defaultLocalNumCtx,
			},
			Remote: Remote{
				BaseURL:        defaultRemoteBaseURL,
				Model:          defaultRemoteModel,
				TimeoutSeconds: defaultRemoteTimeout,
				Referer:        defaultRemoteReferer,
				Title:          defaultRemoteTitle,
			},
		},
		Transcription: Transcription{
			Backend:        defaultTranscriberName,
			URL:            defaultASRURL,
			Language:       defaultASRLanguage,
			TimeoutSeconds: defaultASRTimeout,
			Bin:            defaultWhisperBin,
			Cache:          true,
		},
		Media: Media{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// Recognized enum values.
const (
	ModeLLM   = "llm"
	ModeRules = "rules"

	BackendLocal  = "local"
	BackendRemote = "remote"

	TranscriberASR        = "asr"
	TranscriberWhisperCPP = "whispercpp"
)
