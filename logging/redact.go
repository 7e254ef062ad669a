/*
Copyright © 2026 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package logging

import (
	"regexp"
	"strings"
)

// sensitiveKeyPatterns contains patterns that indicate a key holds sensitive data.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"api_key",
	"apikey",
	"api-key",
	"private_key",
	"privatekey",
	"private-key",
	"service_account",
	"service-account",
	"client_secret",
}

// sensitiveValuePattern matches common sensitive patterns in values.
var sensitiveValuePattern = regexp.MustCompile(`(?i)(password|token|secret|key|credential|auth)=\S+`)

// privateKeyPattern matches PEM private key blocks, including the JSON-escaped
// form found inside service account key files.
var privateKeyPattern = regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----(?s:.*?)-----END [A-Z ]*PRIVATE KEY-----`)

// IsSensitiveKey returns true if the key name matches known sensitive patterns.
// The check is case-insensitive.
func IsSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(lowerKey, pattern) {
			return true
		}
	}
	return false
}

// RedactSensitiveValue returns a redacted version of the value if the key
// is sensitive, otherwise returns the original value.
func RedactSensitiveValue(key, value string) string {
	if IsSensitiveKey(key) && value != "" {
		return "***"
	}
	return value
}

// RedactSensitivePatterns redacts known sensitive patterns from a string.
// For example: "password=secret123" -> "password=***"
func RedactSensitivePatterns(input string) string {
	out := privateKeyPattern.ReplaceAllString(input, "***")
	return sensitiveValuePattern.ReplaceAllStringFunc(out, func(match string) string {
		parts := strings.SplitN(match, "=", 2)
		if len(parts) == 2 {
			return parts[0] + "=***"
		}
		return match
	})
}

// Mask registers secret values with the GitHub Actions runner so they are
// scrubbed from the job log. It is a no-op for the other output types.
// Each line of a multi-line secret is registered on its own.
func (l *CustomLogger) Mask(secrets ...string) {
	if l.OutputType != ActionsOutput {
		return
	}
	for _, secret := range secrets {
		for _, line := range strings.Split(secret, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			l.writeRaw("::add-mask::" + escapeCommandData(line))
		}
	}
}
