package config

// Output format identifiers.
const (
	FormatShort = "short"
	FormatLong  = "long"
)

const (
	defaultAssetRoot  = "~/.local/share/reelsmith/assets"
	defaultStagingDir = "~/.local/share/reelsmith/staging"
	defaultOutputDir  = "~/.local/share/reelsmith/output"
	defaultLogDir     = "~/.local/share/reelsmith/logs"

	defaultFPS                = 30
	defaultShortFormWidth     = 1080
	defaultShortFormHeight    = 1920
	defaultLongFormWidth      = 1920
	defaultLongFormHeight     = 1080
	defaultTransition         = "crossfade"
	defaultTransitionDuration = 0.5

	defaultCaptionFont        = "DejaVuSans"
	defaultCaptionSize        = 64
	defaultCaptionColor       = "white"
	defaultCaptionStrokeColor = "black"
	defaultCaptionStrokeWidth = 2
	defaultCaptionChunkSize   = 8

	defaultMusicVolume         = 0.3
	defaultMusicDurationBuffer = 2.0

	defaultMaxConcurrentTasks       = 3
	defaultGenerationTimeoutSeconds = 600

	defaultDurationToleranceMS = 100

	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

// Default returns the baseline configuration before file overrides.
func Default() *Config {
	return &Config{
		Paths: Paths{
			AssetRoot:  defaultAssetRoot,
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Video: Video{
			FPS:    defaultFPS,
			Format: FormatShort,
			ShortForm: Dimensions{
				Width:  defaultShortFormWidth,
				Height: defaultShortFormHeight,
			},
			LongForm: Dimensions{
				Width:  defaultLongFormWidth,
				Height: defaultLongFormHeight,
			},
			Transitions: Transitions{
				Default:  defaultTransition,
				Duration: defaultTransitionDuration,
			},
			Captions: CaptionStyle{
				Font:        defaultCaptionFont,
				Size:        defaultCaptionSize,
				Color:       defaultCaptionColor,
				StrokeColor: defaultCaptionStrokeColor,
				StrokeWidth: defaultCaptionStrokeWidth,
			},
		},
		Content: Content{
			Music: Music{
				Volume:         defaultMusicVolume,
				DurationBuffer: defaultMusicDurationBuffer,
				Required:       false,
			},
			Captions: ContentCaptions{
				Enabled:   true,
				ChunkSize: defaultCaptionChunkSize,
			},
		},
		Generation: Generation{
			MaxConcurrentTasks: defaultMaxConcurrentTasks,
			TimeoutSeconds:     defaultGenerationTimeoutSeconds,
		},
		Workflow: Workflow{
			DurationToleranceMS: defaultDurationToleranceMS,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
