package deeprag

import (
	"log"
)

// DebugLoggingEnabled gates DebugLog output. Set from the CLI --debug flag
// or the server config before any pipeline work starts.
var DebugLoggingEnabled bool

// InfoLog logs informational messages with timestamps. It's used for all
// prefixed logs to ensure they display timestamps.
func InfoLog(format string, v ...any) {
	log.Printf(format, v...)
}

func ErrorLog(format string, v ...any) {
	log.Printf("[ERROR] "+format, v...)
}

func DebugLog(format string, v ...any) {
	if DebugLoggingEnabled {
		log.Printf("[DEBUG] "+format, v...)
	}
}
