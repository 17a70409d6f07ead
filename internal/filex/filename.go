// Package filex contains filesystem helpers: sanitizing untrusted upload
// names and managing the local staging directory.
package filex

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// FallbackName is used when a client-supplied filename is empty or
// sanitizes down to nothing.
const FallbackName = "unnamed-file"

var (
	// path separators, null bytes, shell/filesystem-hazardous characters
	illegalRe = regexp.MustCompile(`[\x00-\x1f/\\?<>:*|"]+`)
	// names reserved on Windows hosts, extension or not
	reservedRe = regexp.MustCompile(`^(?i)(con|prn|aux|nul|com[1-9]|lpt[1-9])(\..*)?$`)
	// trailing dots and spaces are dropped by some filesystems
	trailingRe = regexp.MustCompile(`[. ]+$`)
)

// NormalizeFilename turns an untrusted client-supplied name into a safe,
// non-empty single path segment.
//
// Multipart transports that treat filenames as raw bytes often deliver a
// UTF-8 name reinterpreted as latin-1. When every rune of the input fits in
// a single byte and those bytes form valid UTF-8, the decoded form is
// preferred; otherwise the input is kept as-is. The result is then stripped
// of separators, control bytes, and reserved names, with disallowed runs
// collapsed to "_".
func NormalizeFilename(raw string) string {
	if raw == "" {
		return FallbackName
	}

	decoded := repairLatin1(raw)

	cleaned := illegalRe.ReplaceAllString(decoded, "_")
	cleaned = trailingRe.ReplaceAllString(cleaned, "")
	if reservedRe.MatchString(cleaned) {
		cleaned = "_" + cleaned
	}

	// a name of nothing but separators collapses to underscores; an empty
	// or dot-only name falls back entirely
	cleaned = strings.Trim(cleaned, " ")
	if cleaned == "" || cleaned == "." || cleaned == ".." || strings.Trim(cleaned, "_") == "" {
		return FallbackName
	}

	return cleaned
}

// repairLatin1 reverses the common latin-1-for-UTF-8 mangling. It returns
// the repaired string only when the reinterpretation is lossless.
func repairLatin1(s string) string {
	bytes := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			// contains runes that cannot come from byte-preserving
			// transports; nothing to repair
			return s
		}
		bytes = append(bytes, byte(r))
	}

	if !utf8.Valid(bytes) {
		return s
	}

	repaired := string(bytes)
	// only prefer the decoded form when it actually differs and is not
	// plain ASCII (in which case both forms are identical anyway)
	if repaired == s {
		return s
	}
	return repaired
}
