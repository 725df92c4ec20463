package services

import (
	"fmt"
	"log"
	"os"
	"time"
)

// SecurityLogger appends auth-related events (failed logins, rate-limit
// hits) to security.log, separate from the request log.
type SecurityLogger struct {
	file *os.File
}

func NewSecurityLogger(path string) *SecurityLogger {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("SecurityLogger - cannot open %s: %v", path, err)
		return &SecurityLogger{}
	}
	return &SecurityLogger{file: file}
}

// LogEvent records one security event with its source address.
func (sl *SecurityLogger) LogEvent(eventType, details, ipAddress string) {
	if sl.file == nil {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	entry := fmt.Sprintf("[%s] %s - %s - IP: %s\n", timestamp, eventType, details, ipAddress)
	if _, err := sl.file.WriteString(entry); err != nil {
		log.Printf("SecurityLogger.LogEvent - write error: %v", err)
	}
}

func (sl *SecurityLogger) Close() {
	if sl.file != nil {
		sl.file.Close()
	}
}
