package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/strongdm/apmcore/pkg/apm"
	"github.com/strongdm/apmcore/pkg/hooking"
	"github.com/strongdm/apmcore/pkg/logging"
	"github.com/strongdm/apmcore/pkg/request"
	"github.com/strongdm/apmcore/pkg/wildcard"
)

// DefaultEnvPrefix prefixes the environment variable of every option, e.g.
// APM_LOG_LEVEL.
const DefaultEnvPrefix = "APM"

// defaultStderrLevel applies when neither log_level nor log_level_stderr is set.
const defaultStderrLevel = logging.LevelWarning

// LoadOptions configure Load.
type LoadOptions struct {
	// EnvFile is a .env file loaded into the environment. Missing files are
	// an error.
	EnvFile string

	// ConfigFile is read by viper; its format follows the extension.
	ConfigFile string

	// EnvPrefix defaults to DefaultEnvPrefix.
	EnvPrefix string

	// Logger receives a debug record per non-default option.
	Logger *slog.Logger
}

// OptionValue is the effective value of one option.
type OptionValue struct {
	Key    string
	Value  string
	Secret bool
}

// Snapshot holds the parsed options. It is immutable.
type Snapshot struct {
	raw map[string]string

	enabled          bool
	captureErrors    bool
	asyncBackendComm bool
	logLevel         *logging.Level
	logLevelStderr   *logging.Level
	disabled         wildcard.List
	sanitize         wildcard.List
	maxStringLength  int
	stackTraceLimit  int
	maxErrors        int
	serverTimeout    time.Duration
}

// Default returns the snapshot of an unconfigured agent.
func Default() *Snapshot {
	raw := make(map[string]string, len(Registry))
	for _, opt := range Registry {
		raw[opt.Name] = opt.Default
	}
	s, err := parse(raw)
	if err != nil {
		panic("config: invalid default: " + err.Error())
	}
	return s
}

// Load resolves every option and parses it.
func Load(opts LoadOptions) (*Snapshot, error) {
	logger := logging.ForFeature(opts.Logger, logging.FeatureConfig)

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, errors.Wrapf(err, "failed to load env file %s", opts.EnvFile)
		}
	}

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}

	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	for _, opt := range Registry {
		v.SetDefault(opt.Name, opt.Default)
	}
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", opts.ConfigFile)
		}
	}

	raw := make(map[string]string, len(Registry))
	for _, opt := range Registry {
		val := strings.TrimSpace(v.GetString(opt.Name))
		raw[opt.Name] = val
		if val != opt.Default {
			shown := val
			if opt.Secret {
				shown = redacted
			}
			logger.Debug("option set", "option", opt.Name, "value", shown)
		}
	}

	s, err := parse(raw)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func parse(raw map[string]string) (*Snapshot, error) {
	s := &Snapshot{raw: raw}

	var err error
	boolOpt := func(name string) bool {
		if err != nil {
			return false
		}
		var b bool
		b, err = parseBool(raw[name])
		err = errors.Wrapf(err, "invalid value for option %s", name)
		return b
	}
	intOpt := func(name string) int {
		if err != nil {
			return 0
		}
		var n int
		n, err = strconv.Atoi(raw[name])
		err = errors.Wrapf(err, "invalid value for option %s", name)
		return n
	}
	levelOpt := func(name string) *logging.Level {
		if err != nil || raw[name] == "" {
			return nil
		}
		var l logging.Level
		l, err = logging.ParseLevel(raw[name])
		err = errors.Wrapf(err, "invalid value for option %s", name)
		return &l
	}

	s.enabled = boolOpt(Enabled)
	s.captureErrors = boolOpt(CaptureErrors)
	s.asyncBackendComm = boolOpt(AsyncBackendComm)
	s.logLevel = levelOpt(LogLevel)
	s.logLevelStderr = levelOpt(LogLevelStderr)
	s.maxStringLength = intOpt(NonKeywordStringMaxLength)
	s.stackTraceLimit = intOpt(StackTraceLimit)
	s.maxErrors = intOpt(TransactionMaxErrors)
	if err != nil {
		return nil, err
	}

	if s.maxStringLength < 0 {
		return nil, errors.Errorf("invalid value for option %s: must not be negative", NonKeywordStringMaxLength)
	}
	if s.maxErrors < 0 {
		return nil, errors.Errorf("invalid value for option %s: must not be negative", TransactionMaxErrors)
	}

	s.serverTimeout, err = parseDuration(raw[ServerTimeout])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid value for option %s", ServerTimeout)
	}

	s.disabled = wildcard.ParseList(raw[DisableInstrumentations])
	s.sanitize = wildcard.ParseList(raw[SanitizeFieldNames])
	return s, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, errors.Errorf("not a boolean: %q", s)
}

// parseDuration accepts Go durations and bare numbers of seconds.
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if secs < 0 {
			return 0, errors.Errorf("negative duration: %q", s)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrap(err, "not a duration")
	}
	if d < 0 {
		return 0, errors.Errorf("negative duration: %q", s)
	}
	return d, nil
}

// Enabled reports whether the agent is on.
func (s *Snapshot) Enabled() bool { return s.enabled }

// CaptureErrors reports whether errors are recorded.
func (s *Snapshot) CaptureErrors() bool { return s.captureErrors }

// AsyncBackendComm reports whether events are shipped off the request path.
func (s *Snapshot) AsyncBackendComm() bool { return s.asyncBackendComm }

// DisableInstrumentations lists the instrumentation names never hooked.
func (s *Snapshot) DisableInstrumentations() wildcard.List { return s.disabled }

// SanitizeFieldNames lists the field names whose values are redacted.
func (s *Snapshot) SanitizeFieldNames() wildcard.List { return s.sanitize }

// StackTraceLimit caps captured frames. Negative means all, zero none.
func (s *Snapshot) StackTraceLimit() int { return s.stackTraceLimit }

// TransactionMaxErrors caps the events recorded per request.
func (s *Snapshot) TransactionMaxErrors() int { return s.maxErrors }

// ServerTimeout bounds a single backend request.
func (s *Snapshot) ServerTimeout() time.Duration { return s.serverTimeout }

// ServiceName is the service events are attributed to.
func (s *Snapshot) ServiceName() string { return s.raw[ServiceName] }

// ServiceVersion is the deployed version of the service.
func (s *Snapshot) ServiceVersion() string { return s.raw[ServiceVersion] }

// Environment names the deployment, such as production.
func (s *Snapshot) Environment() string { return s.raw[Environment] }

// APIKey authenticates the agent to the backend.
func (s *Snapshot) APIKey() string { return s.raw[APIKey] }

// SecretToken is the legacy backend credential.
func (s *Snapshot) SecretToken() string { return s.raw[SecretToken] }

// Hostname returns the configured host name, or the OS host name.
func (s *Snapshot) Hostname() string {
	if h := s.raw[Hostname]; h != "" {
		return h
	}
	h, _ := os.Hostname()
	return h
}

// StderrLevel is log_level_stderr, else log_level, else warning.
func (s *Snapshot) StderrLevel() logging.Level {
	if s.logLevelStderr != nil {
		return *s.logLevelStderr
	}
	if s.logLevel != nil {
		return *s.logLevel
	}
	return defaultStderrLevel
}

// Logger builds the agent logger writing to w at StderrLevel.
func (s *Snapshot) Logger(w io.Writer) *slog.Logger {
	return logging.New(logging.Options{Level: s.StderrLevel(), Output: w})
}

// ScrubberConfig maps the options onto the event scrubber.
func (s *Snapshot) ScrubberConfig() apm.ScrubberConfig {
	cfg := apm.DefaultScrubberConfig()
	cfg.SanitizeFieldNames = s.sanitize
	if s.maxStringLength > 0 {
		cfg.MaxMessageSize = s.maxStringLength
	}
	return cfg
}

// HookOptions configures hook storages and runtimes.
func (s *Snapshot) HookOptions(logger *slog.Logger) []hooking.Option {
	return []hooking.Option{
		hooking.WithLogger(logger),
		hooking.WithDisabledInstrumentations(s.disabled),
	}
}

// RequestSettings maps the options onto request scopes.
func (s *Snapshot) RequestSettings() request.Settings {
	return request.Settings{
		DisableCapture:  !s.enabled || !s.captureErrors,
		MaxErrors:       s.maxErrors,
		StackTraceLimit: s.stackTraceLimit,
		Service:         s.ServiceName(),
		ServiceVersion:  s.ServiceVersion(),
		Environment:     s.Environment(),
	}
}

// CollectorOptions configures the event collector. Callers add the sink.
func (s *Snapshot) CollectorOptions() []apm.CollectorOption {
	return []apm.CollectorOption{
		apm.WithScrubber(s.ScrubberConfig()),
		apm.WithHostName(s.raw[Hostname]),
	}
}

const redacted = "***"

// Enumerate lists every option with its effective value, in Registry order.
func (s *Snapshot) Enumerate() []OptionValue {
	out := make([]OptionValue, 0, len(Registry))
	for _, opt := range Registry {
		out = append(out, OptionValue{Key: opt.Name, Value: s.raw[opt.Name], Secret: opt.Secret})
	}
	return out
}

// Redacted is Enumerate with the value of every set secret replaced by ***.
func (s *Snapshot) Redacted() []OptionValue {
	out := s.Enumerate()
	for i := range out {
		if out[i].Secret && out[i].Value != "" {
			out[i].Value = redacted
		}
	}
	return out
}
