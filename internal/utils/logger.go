package utils

import (
	"fmt"
	"log"
	"strings"
)

// LogEvent prints one line tagged with module, action and request id,
// followed by key=value pairs. Keep payloads summarized: no driver details,
// no tokens, no card data.
func LogEvent(requestID, module, action string, kv ...any) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] action=%s request_id=%s", strings.ToUpper(module), action, strings.TrimSpace(requestID))
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	if len(kv)%2 == 1 {
		fmt.Fprintf(&b, " msg=%v", kv[len(kv)-1])
	}
	log.Print(b.String())
}
