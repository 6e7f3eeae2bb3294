package wire

import (
	"fmt"
	"net/url"
	"strings"
)

// DecodeForm parses an application/x-www-form-urlencoded body. Pairs without
// '=' are skipped. Values are percent-decoded; keys are kept as sent and '+' is
// not treated as a space. A repeated key keeps its last value. Only an invalid
// percent escape is an error.
func DecodeForm(body []byte) (map[string]string, error) {
	out := make(map[string]string)
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return out, nil
	}

	for _, pair := range strings.Split(raw, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		decoded, err := url.PathUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("form value for %q: %w", key, err)
		}
		out[key] = decoded
	}
	return out, nil
}
