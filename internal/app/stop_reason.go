package app

// StopReason is used for structured shutdown tracing.
type StopReason string

const (
	StopUnknown      StopReason = "unknown"
	StopSignal       StopReason = "signal"
	StopFatalError   StopReason = "fatal_error"
	StopReplayDone   StopReason = "replay_done"
	StopConfigReload StopReason = "config_reload"
)
