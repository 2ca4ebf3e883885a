// Package config loads the agent options this module consumes and renders
// them for diagnostics.
//
// Options resolve in order: built-in defaults, then an optional config file,
// then APM_* environment variables (an optional .env file is loaded into the
// environment first, without overriding variables already set).
package config

import "github.com/strongdm/apmcore/pkg/apm"

// Kind is the value type of an option.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindString
	KindDuration
	KindLogLevel
	KindWildcardList
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindDuration:
		return "duration"
	case KindLogLevel:
		return "log_level"
	case KindWildcardList:
		return "wildcard_list"
	default:
		return "unknown"
	}
}

// Option names.
const (
	Enabled                   = "enabled"
	CaptureErrors             = "capture_errors"
	LogLevel                  = "log_level"
	LogLevelStderr            = "log_level_stderr"
	DisableInstrumentations   = "disable_instrumentations"
	SanitizeFieldNames        = "sanitize_field_names"
	NonKeywordStringMaxLength = "non_keyword_string_max_length"
	StackTraceLimit           = "stack_trace_limit"
	AsyncBackendComm          = "async_backend_comm"
	APIKey                    = "api_key"
	SecretToken               = "secret_token"
	ServiceName               = "service_name"
	ServiceVersion            = "service_version"
	Environment               = "environment"
	Hostname                  = "hostname"
	ServerTimeout             = "server_timeout"
	TransactionMaxErrors      = "transaction_max_errors"
)

// Option describes one configuration option.
type Option struct {
	Name    string
	Kind    Kind
	Default string
	Secret  bool
	Usage   string
}

// Registry lists every option, sorted by name.
var Registry = []Option{
	{Name: APIKey, Kind: KindString, Secret: true, Usage: "API key sent to the backend"},
	{Name: AsyncBackendComm, Kind: KindBool, Default: "true", Usage: "deliver events from a background queue"},
	{Name: CaptureErrors, Kind: KindBool, Default: "true", Usage: "report errors and diagnostics"},
	{Name: DisableInstrumentations, Kind: KindWildcardList, Usage: "instrumentations whose hooks are not installed"},
	{Name: Enabled, Kind: KindBool, Default: "true", Usage: "enable the agent"},
	{Name: Environment, Kind: KindString, Usage: "deployment environment"},
	{Name: Hostname, Kind: KindString, Usage: "host name reported with events"},
	{Name: LogLevel, Kind: KindLogLevel, Usage: "log level of every log sink"},
	{Name: LogLevelStderr, Kind: KindLogLevel, Usage: "log level of the stderr sink"},
	{Name: NonKeywordStringMaxLength, Kind: KindInt, Default: "10240", Usage: "maximum length of messages"},
	{Name: SanitizeFieldNames, Kind: KindWildcardList, Default: apm.DefaultSanitizeFieldNames, Usage: "field names whose values are redacted"},
	{Name: SecretToken, Kind: KindString, Secret: true, Usage: "secret token sent to the backend"},
	{Name: ServerTimeout, Kind: KindDuration, Default: "30s", Usage: "backend request timeout"},
	{Name: ServiceName, Kind: KindString, Usage: "service name"},
	{Name: ServiceVersion, Kind: KindString, Usage: "service version"},
	{Name: StackTraceLimit, Kind: KindInt, Default: "50", Usage: "frames per stack trace, -1 for all"},
	{Name: TransactionMaxErrors, Kind: KindInt, Default: "100", Usage: "errors reported per request, 0 for no limit"},
}

// Lookup returns the option named name.
func Lookup(name string) (Option, bool) {
	for _, opt := range Registry {
		if opt.Name == name {
			return opt, true
		}
	}
	return Option{}, false
}
