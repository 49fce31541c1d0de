package config

const (
	defaultWorkspaceDir       = "~/.local/share/clipforge/workspace"
	defaultOutputDir          = "~/clipforge-exports"
	defaultLogDir             = "~/.local/share/clipforge/logs"
	defaultAITimeoutSeconds   = 60
	defaultFitMode            = "cover"
	defaultFPS                = 30
	defaultInterJobDelay      = 2
	defaultCaptionStyle       = "bottom"
	defaultCaptionLanguage    = "original"
	defaultDubbingVoiceGender = "female"
	defaultConvertFormat      = "mp4"
	defaultArchiveMaxEntries  = 50
	defaultArchiveMaxMiB      = 500
	defaultQueuePollInterval  = 2
	defaultErrorRetryInterval = 5
	defaultLogFormat          = "auto"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir: defaultWorkspaceDir,
			OutputDir:    defaultOutputDir,
			LogDir:       defaultLogDir,
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		AI: AI{
			TimeoutSeconds: defaultAITimeoutSeconds,
		},
		Render: Render{
			FitMode:              defaultFitMode,
			FPS:                  defaultFPS,
			InterJobDelaySeconds: defaultInterJobDelay,
		},
		Framing: Framing{
			AIEnabled: true,
		},
		Captions: Captions{
			Style:    defaultCaptionStyle,
			Language: defaultCaptionLanguage,
		},
		Dubbing: Dubbing{
			VoiceGender: defaultDubbingVoiceGender,
		},
		Convert: Convert{
			Enabled: true,
			Format:  defaultConvertFormat,
		},
		Archive: Archive{
			MaxEntries: defaultArchiveMaxEntries,
			MaxMiB:     defaultArchiveMaxMiB,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
