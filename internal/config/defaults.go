package config

const (
	defaultWatchDir    = "~/.local/share/amberpipe/sorted"
	defaultOutputDir   = "~/.local/share/amberpipe/processed"
	defaultStagingDir  = "~/.local/share/amberpipe/staging"
	defaultHeaderDir   = "~/.local/share/amberpipe/include"
	defaultCompiledDir = "~/.local/share/amberpipe/compiled"
	defaultLogDir      = "~/.local/share/amberpipe/logs"
	defaultSocketPath  = "~/.local/share/amberpipe/amberpiped.sock"
	defaultAPIBind     = "127.0.0.1:7519"

	defaultTargetWidth  = 512
	defaultTargetHeight = 512
	defaultLODLevels    = 3
	defaultMaxParallel  = 4

	defaultNormalStrength   = 1.0
	defaultNormalBlurRadius = 0.5

	defaultSegmenterEndpoint = "http://127.0.0.1:8000"
	defaultSegmenterTimeout  = 120

	defaultRescanInterval     = 2
	defaultErrorRetryInterval = 5
	defaultStopTimeout        = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// MaxParallelLimit bounds the admission gate; requests outside 1..MaxParallelLimit
// are rejected both at config load and at runtime.
const MaxParallelLimit = 10

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WatchDir:    defaultWatchDir,
			OutputDir:   defaultOutputDir,
			StagingDir:  defaultStagingDir,
			HeaderDir:   defaultHeaderDir,
			CompiledDir: defaultCompiledDir,
			LogDir:      defaultLogDir,
			SocketPath:  defaultSocketPath,
			APIBind:     defaultAPIBind,
		},
		Processing: Processing{
			TargetWidth:  defaultTargetWidth,
			TargetHeight: defaultTargetHeight,
			LODLevels:    defaultLODLevels,
			MaxParallel:  defaultMaxParallel,
		},
		NormalMap: NormalMap{
			Strength:   defaultNormalStrength,
			BlurRadius: defaultNormalBlurRadius,
		},
		Segmenter: Segmenter{
			Enabled:        false,
			Endpoint:       defaultSegmenterEndpoint,
			TimeoutSeconds: defaultSegmenterTimeout,
		},
		Workflow: Workflow{
			RescanInterval:     defaultRescanInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			StopTimeout:        defaultStopTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
