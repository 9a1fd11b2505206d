package dupefilehash

// This file holds the small helpers the command line uses to set up logging

// InitDebugFlags initialises debug flags - for CLI compatibility
func InitDebugFlags(flagsStr string) {
	if flagsStr != "" {
		SetDebugFlags(flagsStr)
	}
}

// ApplyVerboseConfig sets the verbose level and debug flags from configuration
func ApplyVerboseConfig(vc *VerboseConfig) {
	if vc == nil {
		return
	}
	SetVerboseLevel(vc.Level)
	InitDebugFlags(vc.Debug)
	VerboseLog(2, "verbose level %d, debug flags %q", vc.Level, vc.Debug)
}
