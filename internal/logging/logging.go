// Package logging writes structured JSON log lines.
package logging

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

var (
	mu  sync.Mutex
	out = log.New(os.Stdout, "", 0)
)

// SetOutput redirects log lines, returning the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out.Writer()
	out.SetOutput(w)
	return prev
}

// JSON writes data as a single JSON line. It stamps "ts" in loc and fills
// "level" from "status" when the caller did not set one.
func JSON(loc *time.Location, data map[string]any) {
	if loc == nil {
		loc = time.UTC
	}
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal log entry: %v", err)
		return
	}

	mu.Lock()
	defer mu.Unlock()
	out.Println(string(b))
}
