// Package service provides the sampling and session logic of the poller.
package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"jmxstat/internal/mbean"
	"jmxstat/internal/model"
)

// Platform objects and members used by the built-in actions.
var (
	ThreadingObject = mbean.MustParseObjectName("java.lang:type=Threading")
	MemoryObject    = mbean.MustParseObjectName("java.lang:type=Memory")
)

const (
	ContentionMonitoringAttribute = "ThreadContentionMonitoringEnabled"
	DumpAllThreadsOperation       = "dumpAllThreads(boolean,boolean)" // overloaded since JDK 10
	GCOperation                   = "gc"

	blockedCountField = "blockedCount"
	blockedTimeField  = "blockedTime"
)

// Sampler performs one sampling pass over the configured attributes.
// It never retries; retry policy belongs to the Session.
type Sampler struct {
	attributes []model.AttributeReference
	contention bool
	logger     zerolog.Logger
}

// NewSampler creates a new Sampler. When contention is true every pass also
// appends the thread contention totals.
func NewSampler(attributes []model.AttributeReference, contention bool, logger zerolog.Logger) *Sampler {
	return &Sampler{
		attributes: attributes,
		contention: contention,
		logger:     logger.With().Str("component", "sampler").Logger(),
	}
}

// Empty reports whether a pass would produce no columns.
func (s *Sampler) Empty() bool {
	return len(s.attributes) == 0 && !s.contention
}

// Columns returns the column headers in output order.
func (s *Sampler) Columns() []string {
	columns := make([]string, 0, len(s.attributes)+2)
	for _, ref := range s.attributes {
		columns = append(columns, ref.Label())
	}
	if s.contention {
		columns = append(columns, model.ColumnBlockedCount, model.ColumnBlockedTimeMs)
	}
	return columns
}

// Sample reads every attribute in order and renders the values as text.
func (s *Sampler) Sample(ctx context.Context, conn mbean.Conn) ([]string, error) {
	values := make([]string, 0, len(s.attributes)+2)

	for _, ref := range s.attributes {
		v, err := ReadAttribute(ctx, conn, ref)
		if err != nil {
			return nil, err
		}
		values = append(values, v.String())
	}

	if s.contention {
		sample, err := ReadContention(ctx, conn)
		if err != nil {
			return nil, err
		}
		values = append(values, sample.Values()...)
	}

	s.logger.Debug().Strs("values", values).Msg("sampling pass completed")
	return values, nil
}

// ReadAttribute reads one attribute. If the reference names a sub-field and
// the value is composite, the sub-field is returned instead; a missing
// sub-field is an error.
func ReadAttribute(ctx context.Context, conn mbean.Conn, ref model.AttributeReference) (mbean.Value, error) {
	v, err := conn.GetAttribute(ctx, ref.Object, ref.Attribute)
	if err != nil {
		return mbean.Value{}, &AttributeReadError{Ref: ref, Err: err}
	}

	if ref.HasSubField() && v.IsComposite() {
		field, ok := v.Field(ref.SubField)
		if !ok {
			return mbean.Value{}, &AttributeReadError{
				Ref: ref,
				Err: fmt.Errorf("%w: %q (available: %v)", mbean.ErrFieldNotFound, ref.SubField, v.Keys()),
			}
		}
		v = field
	}

	return v, nil
}

// ReadContention sums the blocked count and time of all threads reported by
// dumpAllThreads(true, true).
func ReadContention(ctx context.Context, conn mbean.Conn) (model.ContentionSample, error) {
	var sample model.ContentionSample

	threads, err := conn.Invoke(ctx, ThreadingObject, DumpAllThreadsOperation, true, true)
	if err != nil {
		return sample, fmt.Errorf("failed to dump threads: %w", err)
	}

	if threads.Kind() != mbean.KindList {
		return sample, fmt.Errorf("%s returned %s, want a list of thread records", DumpAllThreadsOperation, threads.Kind())
	}

	for i, thread := range threads.Items() {
		count, err := int64Field(thread, blockedCountField)
		if err != nil {
			return sample, fmt.Errorf("thread record %d: %w", i, err)
		}
		timeMs, err := int64Field(thread, blockedTimeField)
		if err != nil {
			return sample, fmt.Errorf("thread record %d: %w", i, err)
		}
		sample.Add(count, timeMs)
	}

	return sample, nil
}

func int64Field(v mbean.Value, key string) (int64, error) {
	field, ok := v.Field(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q", mbean.ErrFieldNotFound, key)
	}
	n, err := strconv.ParseInt(field.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %q is not an integer: %w", key, err)
	}
	return n, nil
}

// SetContentionMonitoring sets the thread contention monitoring flag unless it
// already has the desired value.
func SetContentionMonitoring(ctx context.Context, conn mbean.Conn, enabled bool) (changed bool, err error) {
	current, err := conn.GetAttribute(ctx, ThreadingObject, ContentionMonitoringAttribute)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", ContentionMonitoringAttribute, err)
	}
	if current.String() == strconv.FormatBool(enabled) {
		return false, nil
	}

	if err := conn.SetAttribute(ctx, ThreadingObject, ContentionMonitoringAttribute, enabled); err != nil {
		return false, fmt.Errorf("failed to set %s: %w", ContentionMonitoringAttribute, err)
	}
	return true, nil
}

// PerformGC triggers a garbage collection on the remote JVM.
func PerformGC(ctx context.Context, conn mbean.Conn) error {
	if _, err := conn.Invoke(ctx, MemoryObject, GCOperation); err != nil {
		return fmt.Errorf("failed to perform gc: %w", err)
	}
	return nil
}
