// fingerprint.go generates stable hashes for grouping similar errors.

package apm

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"regexp"
	"strings"
)

// Fingerprint generates a hash for grouping similar errors.
// The fingerprint is based on:
//   - error_type, kind, operation, class::function, file base name
//   - the message with numbers, quoted values and addresses normalized
//   - first 3 stack frames (function names only, normalized)
//
// It ignores variable data like timestamps, event IDs, line numbers,
// request IDs and memory addresses.
func Fingerprint(event ErrorEvent) string {
	var parts []string
	parts = append(parts, event.ErrorType)
	parts = append(parts, kindPart(event.Kind))
	parts = append(parts, event.Operation)
	parts = append(parts, event.QualifiedFunction())
	parts = append(parts, fileBase(event.File))
	parts = append(parts, normalizeMessage(event.Message))

	frames := normalizeStackTrace(event.StackTrace)
	parts = append(parts, frames...)

	input := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(input))

	// First 16 bytes, 32 hex chars.
	return hex.EncodeToString(hash[:16])
}

func kindPart(k Kind) string {
	if k == 0 {
		return ""
	}
	return k.String()
}

func fileBase(file string) string {
	if file == "" {
		return ""
	}
	return path.Base(strings.ReplaceAll(file, "\\", "/"))
}

var (
	// Go frames: "main.doSomething" or "pkg/subpkg.Function"
	funcNamePattern = regexp.MustCompile(`^([a-zA-Z0-9_./]+\.[a-zA-Z0-9_]+)`)

	// Host frames: "#0 PDO::query()" or "#1 helper()"
	hostFramePattern = regexp.MustCompile(`^#\d+\s+([A-Za-z0-9_\\{}]+(?:::[A-Za-z0-9_{}]+)?)\(`)

	memAddrPattern = regexp.MustCompile(`0x[0-9a-fA-F]+`)
	offsetPattern  = regexp.MustCompile(`\+0x[0-9a-fA-F]+`)

	quotedPattern = regexp.MustCompile(`"[^"]*"|'[^']*'`)
	numberPattern = regexp.MustCompile(`\d+`)
)

// normalizeMessage strips the variable parts of a message.
func normalizeMessage(msg string) string {
	msg = memAddrPattern.ReplaceAllString(msg, "0x")
	msg = quotedPattern.ReplaceAllString(msg, "?")
	msg = numberPattern.ReplaceAllString(msg, "N")
	return strings.TrimSpace(msg)
}

// normalizeStackTrace extracts the first 3 function names from a Go or host
// stack trace, stripping line numbers, memory addresses, and other variable
// data.
func normalizeStackTrace(trace string) []string {
	if trace == "" {
		return nil
	}

	var frames []string
	for _, line := range strings.Split(trace, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "goroutine ") || strings.HasPrefix(line, "/") {
			continue
		}

		if m := hostFramePattern.FindStringSubmatch(line); m != nil {
			frames = append(frames, m[1])
		} else {
			funcLine := memAddrPattern.ReplaceAllString(line, "")
			funcLine = offsetPattern.ReplaceAllString(funcLine, "")
			if idx := strings.Index(funcLine, "("); idx > 0 {
				funcLine = funcLine[:idx]
			}
			funcLine = strings.TrimSpace(funcLine)
			if funcLine == "" {
				continue
			}
			match := funcNamePattern.FindString(funcLine)
			if match == "" {
				continue
			}
			frames = append(frames, match)
		}

		if len(frames) >= 3 {
			break
		}
	}

	return frames
}
