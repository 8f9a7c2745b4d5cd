package options

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"jmxstat/internal/model"
)

// DefaultInterval is the sampling interval in seconds when none is given.
const DefaultInterval = 5

// MaxInterval is the largest accepted sampling interval in seconds.
const MaxInterval = 86400

// Recognized flags. Matching is exact.
const (
	ContentionArg        = "--contention"
	DisableContentionArg = "--disable-contention"
	PerformGCArg         = "--performGC"

	configArgPrefix   = "--config="
	logLevelArgPrefix = "--log-level="
)

// ErrEndpointRequired is the diagnostic for an empty argument vector.
const ErrEndpointRequired = "endpoint must be specified"

// Options is the resolved run configuration.
type Options struct {
	Endpoint          string                     `validate:"required"`
	Interval          int                        `validate:"gte=1,lte=86400"` // Seconds between samples, at most a day
	Count             int                        `validate:"gte=0"` // Samples to take, 0 = unbounded
	Attributes        []model.AttributeReference // Output order
	Contention        bool                       // Enable contention monitoring and report totals
	DisableContention bool                       // Disable contention monitoring
	PerformGC         bool                       // Trigger a garbage collection once
	ConfigPath        string                     // --config=<path>
	LogLevel          string                     // --log-level=<level>

	// ParseError is set when the arguments are invalid; the options must
	// not be used to run a session then.
	ParseError string
}

var validate = validator.New()

// Parse resolves the argument vector. args[0] is the endpoint.
//
// The last two tokens that are not flags are tried as integers: two numbers
// give interval and count, one number gives the interval. Bracketed tokens
// are parsed as attribute lists in order; anything else is ignored. For the
// contention flags the last one wins.
func Parse(args []string) *Options {
	opts := &Options{Interval: DefaultInterval}

	if len(args) < 1 {
		opts.ParseError = ErrEndpointRequired
		return opts
	}
	opts.Endpoint = args[0]

	var positional []string
	for _, arg := range args[1:] {
		if !isFlag(arg) {
			positional = append(positional, arg)
		}
	}
	opts.resolveInterval(positional)

	for _, arg := range args[1:] {
		switch {
		case arg == ContentionArg:
			opts.Contention = true
			opts.DisableContention = false
			continue
		case arg == DisableContentionArg:
			opts.DisableContention = true
			opts.Contention = false
			continue
		case arg == PerformGCArg:
			opts.PerformGC = true
			continue
		case strings.HasPrefix(arg, configArgPrefix):
			opts.ConfigPath = strings.TrimPrefix(arg, configArgPrefix)
			continue
		case strings.HasPrefix(arg, logLevelArgPrefix):
			opts.LogLevel = strings.TrimPrefix(arg, logLevelArgPrefix)
			continue
		}

		refs, _, err := ParseAttributeToken(arg)
		if err != nil {
			opts.Attributes = nil
			opts.ParseError = err.Error()
			return opts
		}
		opts.Attributes = append(opts.Attributes, refs...)
	}

	if err := validate.Struct(opts); err != nil {
		opts.ParseError = translateError(err)
	}

	return opts
}

// resolveInterval applies the trailing interval/count disambiguation.
func (o *Options) resolveInterval(positional []string) {
	if len(positional) == 0 {
		return
	}

	last, lastErr := strconv.Atoi(positional[len(positional)-1])
	if lastErr != nil {
		return
	}
	if len(positional) >= 2 {
		if prev, err := strconv.Atoi(positional[len(positional)-2]); err == nil {
			o.Interval = prev
			o.Count = last
			return
		}
	}
	o.Interval = last
}

func isFlag(arg string) bool {
	switch arg {
	case ContentionArg, DisableContentionArg, PerformGCArg:
		return true
	}
	return strings.HasPrefix(arg, configArgPrefix) || strings.HasPrefix(arg, logLevelArgPrefix)
}

// translateError turns a validation failure into a one-line diagnostic.
func translateError(err error) string {
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrors) == 0 {
		return err.Error()
	}

	fe := fieldErrors[0]
	switch fe.Field() {
	case "Endpoint":
		return ErrEndpointRequired
	case "Interval":
		return fmt.Sprintf("interval must be between 1 and %d seconds, got %v", MaxInterval, fe.Value())
	case "Count":
		return fmt.Sprintf("count must not be negative, got %v", fe.Value())
	default:
		return fmt.Sprintf("invalid %s: %v", strings.ToLower(fe.Field()), fe.Value())
	}
}

// Valid reports whether the options can be used to run a session.
func (o *Options) Valid() bool {
	return o.ParseError == ""
}

// IntervalDuration returns the sampling interval.
func (o *Options) IntervalDuration() time.Duration {
	return time.Duration(o.Interval) * time.Second
}

// ContentionMonitoring returns the instrumentation flag value requested on
// the command line, and false for ok when neither flag was given.
func (o *Options) ContentionMonitoring() (enabled bool, ok bool) {
	switch {
	case o.Contention:
		return true, true
	case o.DisableContention:
		return false, true
	default:
		return false, false
	}
}

// WithAttributes returns a copy of o with refs appended to its attributes.
func (o *Options) WithAttributes(refs []model.AttributeReference) *Options {
	clone := *o
	clone.Attributes = make([]model.AttributeReference, 0, len(o.Attributes)+len(refs))
	clone.Attributes = append(clone.Attributes, o.Attributes...)
	clone.Attributes = append(clone.Attributes, refs...)
	return &clone
}
