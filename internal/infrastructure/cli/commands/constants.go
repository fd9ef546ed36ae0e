package commands

// Error messages
const (
	ErrConfigLoaderUnavailable  = "config loader unavailable"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgNoModelsConfigured       = "No models configured."
)
