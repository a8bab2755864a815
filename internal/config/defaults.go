package config

const (
	defaultDataDir              = "~/.local/share/hireline"
	defaultLogDir               = "~/.local/share/hireline/logs"
	defaultAPIBind              = "127.0.0.1:7620"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultNotifyRequestTimeout = 10
	defaultNotifyTimeoutSeconds = 5
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Submitted:      true,
			StageChanged:   true,
		},
		Workflow: Workflow{
			AllowReapplyAfterRejection: true,
			NotifyTimeoutSeconds:       defaultNotifyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
