package utils

import (
	"fmt"
	"log"
	"strings"
)

// LogEvent prints one "[MODULE] action=… request_id=… key=value" line.
// kv alternates keys and values; keep payloads out of it.
func LogEvent(requestID, module, action string, kv ...any) {
	log.Print(FormatEvent(requestID, module, action, kv...))
}

// FormatEvent renders the line LogEvent prints. Values containing spaces
// are quoted, a trailing key without a value is dropped.
func FormatEvent(requestID, module, action string, kv ...any) string {
	rid := strings.TrimSpace(requestID)
	if rid == "" {
		rid = "-"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] action=%s request_id=%s", strings.ToUpper(module), action, rid)
	for i := 0; i+1 < len(kv); i += 2 {
		v := fmt.Sprint(kv[i+1])
		if v == "" || strings.ContainsAny(v, " \t\n\"") {
			v = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(&b, " %v=%s", kv[i], v)
	}
	return b.String()
}
