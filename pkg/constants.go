package dupefilehash

// DigestSize is the size in bytes of every supported digest
const DigestSize = 32

// Defaults used when no configuration overrides them
const (
	DefaultHashAlgorithm = "sha256"
	DefaultHashBuffer    = "64K"
	DefaultHashWorkers   = 1
	DefaultOutputFormat  = "human"

	DefaultProgressInterval = "10s"
)

// Output formats
const (
	FormatHuman  = "human"
	FormatJSON   = "json"
	FormatFdupes = "fdupes"
)

// Debug flag names understood by the scanner and index
const (
	DebugScan  = "scan"
	DebugIndex = "index"
	DebugHash  = "hash"
)

// fallbackIOVMax is the conservative IOV_MAX used for vectored report writes
const fallbackIOVMax = 1024
