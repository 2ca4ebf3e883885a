// kind.go defines the host engine's diagnostic kinds.

package apm

import "strconv"

// Kind is a host diagnostic kind. Values are bit flags as the host engine
// reports them.
type Kind int

const (
	KindError            Kind = 1
	KindWarning          Kind = 2
	KindParse            Kind = 4
	KindNotice           Kind = 8
	KindCoreError        Kind = 16
	KindCoreWarning      Kind = 32
	KindCompileError     Kind = 64
	KindCompileWarning   Kind = 128
	KindUserError        Kind = 256
	KindUserWarning      Kind = 512
	KindUserNotice       Kind = 1024
	KindStrict           Kind = 2048
	KindRecoverableError Kind = 4096
	KindDeprecated       Kind = 8192
	KindUserDeprecated   Kind = 16384
)

var kindNames = map[Kind]string{
	KindError:            "error",
	KindWarning:          "warning",
	KindParse:            "parse",
	KindNotice:           "notice",
	KindCoreError:        "core_error",
	KindCoreWarning:      "core_warning",
	KindCompileError:     "compile_error",
	KindCompileWarning:   "compile_warning",
	KindUserError:        "user_error",
	KindUserWarning:      "user_warning",
	KindUserNotice:       "user_notice",
	KindStrict:           "strict",
	KindRecoverableError: "recoverable_error",
	KindDeprecated:       "deprecated",
	KindUserDeprecated:   "user_deprecated",
}

// String returns the kind name, or the number for unknown kinds.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Fatal reports whether the host aborts the request after raising k.
func (k Kind) Fatal() bool {
	switch k {
	case KindError, KindParse, KindCoreError, KindCompileError, KindUserError:
		return true
	}
	return false
}

// Severity maps k to an event severity. Unknown kinds are errors.
func (k Kind) Severity() Severity {
	switch k {
	case KindError, KindParse, KindCoreError, KindCompileError, KindUserError:
		return SeverityCrash
	case KindWarning, KindCoreWarning, KindCompileWarning, KindUserWarning:
		return SeverityWarning
	case KindNotice, KindUserNotice, KindStrict, KindDeprecated, KindUserDeprecated:
		return SeverityNotice
	default:
		return SeverityError
	}
}
