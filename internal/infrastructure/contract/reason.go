package contract

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// ExtractReason normalizes a failed contract call into a human-readable
// reason. It prefers a structured "reason" field from the RPC error data;
// otherwise it falls back to the text before the first parenthesis of the
// raw message. The fallback is string scraping on an external library's
// error formatting and is kept only to preserve observed behavior.
func ExtractReason(err error) string {
	if err == nil {
		return ""
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if reason := structuredReason(dataErr.ErrorData()); reason != "" {
			return reason
		}
	}

	msg := err.Error()
	if i := strings.Index(msg, "("); i > 0 {
		msg = msg[:i]
	}
	return strings.TrimSpace(msg)
}

func structuredReason(data interface{}) string {
	switch v := data.(type) {
	case map[string]interface{}:
		if reason, ok := v["reason"].(string); ok && reason != "" {
			return reason
		}
		if message, ok := v["message"].(string); ok && message != "" {
			return message
		}
	case string:
		// Raw revert data is ABI-encoded hex, not human-readable.
		return ""
	}
	return ""
}
