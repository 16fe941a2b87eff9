package config

const (
	defaultConfigPath       = "~/.config/scrollreel/config.toml"
	envConfigPath           = "SCROLLREEL_CONFIG"
	envAPIToken             = "SCROLLREEL_API_TOKEN"
	defaultDataDir          = "~/.local/share/scrollreel"
	defaultFramesDir        = "~/.local/share/scrollreel/frames"
	defaultLogDir           = "~/.local/share/scrollreel/logs"
	defaultAPIBind          = "127.0.0.1:7610"
	defaultMaxFrameBytes    = 5 << 20
	defaultMinFreeBytes     = 64 << 20
	defaultEasing           = "linear"
	defaultLoopCount        = 1
	defaultEmbedClass       = ""
	defaultRequestTimeout   = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	framesRoute             = "/frames"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			FramesDir: defaultFramesDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Ingest: Ingest{
			MaxFrameBytes: defaultMaxFrameBytes,
			MinFreeBytes:  defaultMinFreeBytes,
		},
		Playback: Playback{
			DefaultEasing:    defaultEasing,
			DefaultLoopCount: defaultLoopCount,
			EmbedClass:       defaultEmbedClass,
		},
		API: API{
			RequestTimeoutSeconds: defaultRequestTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
