package runtime

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// AuditLog appends one line per handled message to a local file so that a
// surprising list state can be traced back to the conversation that caused
// it. A nil receiver disables auditing.
type AuditLog struct {
	mu   sync.Mutex
	path string
}

func NewAuditLog(path string) *AuditLog {
	if path == "" {
		return nil
	}
	return &AuditLog{path: path}
}

func (a *AuditLog) Append(id, sender, text, reply string) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("⚠️ Audit log unavailable: %v", err)
		return
	}
	defer f.Close()

	line := fmt.Sprintf("%s [%s] %s: %q -> %q\n",
		time.Now().Format(time.RFC3339), id, sender, text, reply)
	if _, err = f.WriteString(line); err != nil {
		log.Printf("⚠️ Audit log write failed: %v", err)
	}
}
