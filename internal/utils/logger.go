package utils

import (
	"log"
	"strings"
)

// LogEvent prints standardized log line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, req, message)
}

// MaskReference hides the middle of a scanned/typed reference so PINs and QR
// payloads never land in logs verbatim.
func MaskReference(ref string) string {
	ref = strings.TrimSpace(ref)
	if len(ref) <= 2 {
		return strings.Repeat("*", len(ref))
	}
	return ref[:1] + strings.Repeat("*", len(ref)-2) + ref[len(ref)-1:]
}
