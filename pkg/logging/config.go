package logging

const (
	BaseDataDir = "data"
	LogsDir     = "logs"
	LogFileName = "miner.log"
	TimeFormat  = "2006-01-02 15:04:05"
)

type LogLevel string

const (
	Development LogLevel = "development" // debug and above, console + file
	Production  LogLevel = "production"  // info and above, file only
)

type ProcessName string

const (
	MinerProcess ProcessName = "miner"
	TestProcess  ProcessName = "test"
)

// Rotation defaults for the file sink
const (
	DefaultMaxSizeMB  = 50
	DefaultMaxAgeDays = 30
	DefaultMaxBackups = 10
)

type LoggerConfig struct {
	LogDir      string
	ProcessName ProcessName
	Environment LogLevel
	UseColors   bool
	// Mirror log lines to stdout outside development as well
	Console bool

	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
}

func NewDefaultConfig(processName ProcessName) LoggerConfig {
	return LoggerConfig{
		LogDir:      BaseDataDir,
		ProcessName: processName,
		Environment: Development,
		UseColors:   true,
		MaxSizeMB:   DefaultMaxSizeMB,
		MaxAgeDays:  DefaultMaxAgeDays,
		MaxBackups:  DefaultMaxBackups,
	}
}
