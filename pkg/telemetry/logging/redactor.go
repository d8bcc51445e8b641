package logging

import (
	"regexp"
	"strings"
)

// Names of the built-in redaction patterns.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternBasicAuth   = "basic_auth"
	PatternSecretPair  = "secret_pair"
)

// Redactor masks credentials in strings before they reach a log handler.
// A Redactor is safe for concurrent use once built.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// NewRedactor creates a Redactor with the built-in credential patterns:
// vendor-style secret keys (sk-...), bearer tokens, basic-auth values, and
// key=value pairs whose key names a secret.
func NewRedactor() *Redactor {
	r := &Redactor{}
	r.add(PatternAPIKey, `\bsk-[A-Za-z0-9_-]{8,}\b`, "sk-[REDACTED]")
	r.add(PatternBearerToken, `(?i)\b(bearer)\s+[A-Za-z0-9._~+/=-]+`, "$1 [REDACTED]")
	r.add(PatternBasicAuth, `(?i)\b(basic)\s+[A-Za-z0-9+/=]+`, "$1 [REDACTED]")
	r.add(PatternSecretPair, `(?i)\b(api[_-]?key|token|secret|password)(["']?\s*[:=]\s*["']?)[^\s"',;&]+`, "$1$2[REDACTED]")
	return r
}

// add compiles and registers a pattern. Panics on an invalid expression;
// built-ins are exercised by the package tests.
func (r *Redactor) add(name, expr, replacement string) {
	r.patterns = append(r.patterns, &redactPattern{
		name:        name,
		regex:       regexp.MustCompile(expr),
		replacement: replacement,
	})
}

// AddPattern registers an additional pattern. Returns an error if the
// expression does not compile.
func (r *Redactor) AddPattern(name, expr, replacement string) error {
	regex, err := regexp.Compile(expr)
	if err != nil {
		return err
	}
	r.patterns = append(r.patterns, &redactPattern{
		name:        name,
		regex:       regex,
		replacement: replacement,
	})
	return nil
}

// RedactString applies every pattern to s and returns the masked result.
func (r *Redactor) RedactString(s string) string {
	for _, p := range r.patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}

// redactValue masks an entire value that is known to be sensitive, keeping
// a four-character prefix as a debugging hint.
func (r *Redactor) redactValue(s string) string {
	if len(s) > 4 {
		return s[:4] + "***"
	}
	return "***"
}

// sensitiveKeys are field names whose values are masked wholesale,
// regardless of shape.
var sensitiveKeys = map[string]bool{
	"api_key":       true,
	"apikey":        true,
	"access_token":  true,
	"authorization": true,
	"bearer":        true,
	"credential":    true,
	"password":      true,
	"secret":        true,
	"token":         true,
}

// isSensitiveKey reports whether a log field name denotes a credential.
func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	if sensitiveKeys[key] {
		return true
	}
	return strings.HasSuffix(key, "_key") ||
		strings.HasSuffix(key, "_token") ||
		strings.HasSuffix(key, "_secret") ||
		strings.HasSuffix(key, "_password")
}
