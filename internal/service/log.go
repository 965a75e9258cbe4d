package service

import (
	"encoding/json"
	"log"
	"time"
)

// Entries carry their own ts field, so the standard logger prefix is dropped
// once at package load instead of on every write.
func init() {
	log.SetFlags(0)
}

// logJSON writes one JSON object per line to the standard logger, matching
// the application-wide structured log format.
func logJSON(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		data["level"] = "warn"
	}
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal log entry: %v", err)
		return
	}
	log.Println(string(b))
}
