package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jmxstat/internal/mbean"
	"jmxstat/internal/model"
)

const memoryName = "java.lang:type=Memory"

func heapUsage() mbean.Value {
	return mbean.Composite(map[string]mbean.Value{
		"init":      mbean.Scalar("268435456"),
		"used":      mbean.Scalar("104857600"),
		"committed": mbean.Scalar("536870912"),
		"max":       mbean.Scalar("4294967296"),
	})
}

func memRef(attribute, subField string) model.AttributeReference {
	return model.AttributeReference{
		Object:    mbean.MustParseObjectName(memoryName),
		Attribute: attribute,
		SubField:  subField,
	}
}

func TestSampler_SubFieldLookup(t *testing.T) {
	conn := newFakeConn(t)
	conn.put(memoryName, "HeapMemoryUsage", heapUsage())

	s := NewSampler([]model.AttributeReference{memRef("HeapMemoryUsage", "max")}, false, zerolog.Nop())

	values, err := s.Sample(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"4294967296"}, values)
}

func TestSampler_WholeCompositeWithoutSubField(t *testing.T) {
	conn := newFakeConn(t)
	conn.put(memoryName, "HeapMemoryUsage", heapUsage())

	s := NewSampler([]model.AttributeReference{memRef("HeapMemoryUsage", "")}, false, zerolog.Nop())

	values, err := s.Sample(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"{committed=536870912, init=268435456, max=4294967296, used=104857600}"}, values)
}

func TestSampler_SubFieldOnScalarKeepsValue(t *testing.T) {
	conn := newFakeConn(t)
	conn.put(memoryName, "ObjectPendingFinalizationCount", mbean.Scalar("0"))

	s := NewSampler([]model.AttributeReference{memRef("ObjectPendingFinalizationCount", "max")}, false, zerolog.Nop())

	values, err := s.Sample(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, values)
}

func TestSampler_MissingSubField(t *testing.T) {
	conn := newFakeConn(t)
	conn.put(memoryName, "HeapMemoryUsage", heapUsage())

	s := NewSampler([]model.AttributeReference{memRef("HeapMemoryUsage", "peak")}, false, zerolog.Nop())

	_, err := s.Sample(context.Background(), conn)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mbean.ErrFieldNotFound))
	assert.False(t, mbean.IsCommunication(err))

	var readErr *AttributeReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "peak", readErr.Ref.SubField)
}

func TestSampler_OrderAndContention(t *testing.T) {
	conn := newFakeConn(t)
	conn.put(memoryName, "HeapMemoryUsage", heapUsage())
	conn.put("java.lang:type=Threading", "ThreadCount", mbean.Scalar("42"))
	conn.threads = mbean.List(thread("3", "120"), thread("0", "0"), thread("7", "30"))

	refs := []model.AttributeReference{
		{Object: ThreadingObject, Attribute: "ThreadCount"},
		memRef("HeapMemoryUsage", "used"),
	}
	s := NewSampler(refs, true, zerolog.Nop())

	assert.Equal(t, []string{"ThreadCount", "HeapMemoryUsage.used", "blockedCount", "blockedTimeMs"}, s.Columns())

	values, err := s.Sample(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"42", "104857600", "10", "150"}, values)
	assert.Equal(t, []string{DumpAllThreadsOperation}, conn.invokes)
}

func TestSampler_TransportErrorPropagates(t *testing.T) {
	conn := newFakeConn(t)
	conn.put(memoryName, "HeapMemoryUsage", heapUsage())
	conn.readErrs = []error{errTransport}

	s := NewSampler([]model.AttributeReference{memRef("HeapMemoryUsage", "used")}, false, zerolog.Nop())

	_, err := s.Sample(context.Background(), conn)
	require.Error(t, err)
	assert.True(t, mbean.IsCommunication(err), "transport failures must stay recognisable")
}

func TestSampler_Empty(t *testing.T) {
	assert.True(t, NewSampler(nil, false, zerolog.Nop()).Empty())
	assert.False(t, NewSampler(nil, true, zerolog.Nop()).Empty())
	assert.False(t, NewSampler([]model.AttributeReference{memRef("A", "")}, false, zerolog.Nop()).Empty())
}

func TestReadContention_BadRecord(t *testing.T) {
	tests := []struct {
		name    string
		threads mbean.Value
	}{
		{"missing blockedTime", mbean.List(mbean.Composite(map[string]mbean.Value{"blockedCount": mbean.Scalar("1")}))},
		{"non-numeric count", mbean.List(thread("many", "1"))},
		{"scalar record", mbean.List(mbean.Scalar("x"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newFakeConn(t)
			conn.threads = tt.threads

			_, err := ReadContention(context.Background(), conn)
			assert.Error(t, err)
		})
	}
}

func TestReadContention_NotAList(t *testing.T) {
	tests := []struct {
		name    string
		threads mbean.Value
	}{
		{"null", mbean.Scalar("null")},
		{"scalar", mbean.Scalar("0")},
		{"composite", thread("1", "2")},
		{"unset", mbean.Value{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newFakeConn(t)
			conn.threads = tt.threads

			sample, err := ReadContention(context.Background(), conn)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "want a list")
			assert.Equal(t, model.ContentionSample{}, sample)
		})
	}
}

func TestReadContention_EmptyList(t *testing.T) {
	conn := newFakeConn(t)
	conn.threads = mbean.List()

	sample, err := ReadContention(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "0"}, sample.Values())
}

func TestReadContention_InvokesTypedSignature(t *testing.T) {
	conn := newFakeConn(t)
	conn.threads = mbean.List(thread("1", "2"))

	_, err := ReadContention(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"dumpAllThreads(boolean,boolean)"}, conn.invokes)
}

func TestSetContentionMonitoring_AlreadySet(t *testing.T) {
	conn := newFakeConn(t)
	conn.put("java.lang:type=Threading", ContentionMonitoringAttribute, mbean.Scalar("true"))
	conn.forbidSet = true

	changed, err := SetContentionMonitoring(context.Background(), conn, true)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSetContentionMonitoring_Writes(t *testing.T) {
	conn := newFakeConn(t)
	conn.put("java.lang:type=Threading", ContentionMonitoringAttribute, mbean.Scalar("false"))

	changed, err := SetContentionMonitoring(context.Background(), conn, true)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, conn.sets, 1)
	assert.Equal(t, true, conn.sets[0].value)
	assert.Equal(t, ContentionMonitoringAttribute, conn.sets[0].attribute)
}

func TestPerformGC(t *testing.T) {
	conn := newFakeConn(t)
	require.NoError(t, PerformGC(context.Background(), conn))
	assert.Equal(t, []string{GCOperation}, conn.invokes)

	conn.invokeErr = errors.New("operation not supported")
	assert.Error(t, PerformGC(context.Background(), conn))
}
