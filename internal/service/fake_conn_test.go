package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"jmxstat/internal/mbean"
)

// =============================================================================
// Test Helper Types
// =============================================================================

// errTransport simulates a broken connection.
var errTransport = &mbean.CommunicationError{Op: "read", Err: errors.New("connection reset by peer")}

type setCall struct {
	object    string
	attribute string
	value     interface{}
}

// fakeConn is a scripted mbean.Conn.
type fakeConn struct {
	t *testing.T

	mu         sync.Mutex
	attributes map[string]mbean.Value // key: object + "#" + attribute
	readErrs   []error                // popped on each GetAttribute of a sampled attribute
	threads    mbean.Value            // dumpAllThreads result
	invokeErr  error
	setErr     error
	forbidSet  bool

	invokes []string
	sets    []setCall
	closed  int
}

func newFakeConn(t *testing.T) *fakeConn {
	return &fakeConn{t: t, attributes: map[string]mbean.Value{}}
}

func (c *fakeConn) put(object, attribute string, v mbean.Value) {
	c.attributes[object+"#"+attribute] = v
}

func (c *fakeConn) GetAttribute(_ context.Context, name mbean.ObjectName, attribute string) (mbean.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if attribute != ContentionMonitoringAttribute && len(c.readErrs) > 0 {
		err := c.readErrs[0]
		c.readErrs = c.readErrs[1:]
		if err != nil {
			return mbean.Value{}, err
		}
	}

	v, ok := c.attributes[name.String()+"#"+attribute]
	if !ok {
		return mbean.Value{}, &mbean.RemoteError{Status: 404, ErrorType: "javax.management.AttributeNotFoundException", Message: attribute}
	}
	return v, nil
}

func (c *fakeConn) SetAttribute(_ context.Context, name mbean.ObjectName, attribute string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.forbidSet {
		c.t.Errorf("unexpected SetAttribute(%s, %s, %v)", name, attribute, value)
	}
	if c.setErr != nil {
		return c.setErr
	}
	c.sets = append(c.sets, setCall{object: name.String(), attribute: attribute, value: value})
	c.attributes[name.String()+"#"+attribute] = mbean.Scalar(toText(value))
	return nil
}

func (c *fakeConn) Invoke(_ context.Context, name mbean.ObjectName, operation string, _ ...interface{}) (mbean.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.invokes = append(c.invokes, operation)
	if c.invokeErr != nil {
		return mbean.Value{}, c.invokeErr
	}
	if operation == DumpAllThreadsOperation {
		return c.threads, nil
	}
	return mbean.Scalar("null"), nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func toText(v interface{}) string {
	if b, ok := v.(bool); ok {
		return strconv.FormatBool(b)
	}
	return fmt.Sprint(v)
}

// fakeConnector hands out the same fakeConn, failing the attempts listed in connectErrs.
type fakeConnector struct {
	conn        *fakeConn
	connectErrs []error
	attempts    int
}

func (f *fakeConnector) Connect(_ context.Context, _ string) (mbean.Conn, error) {
	f.attempts++
	if len(f.connectErrs) > 0 {
		err := f.connectErrs[0]
		f.connectErrs = f.connectErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.conn, nil
}

func thread(count, timeMs string) mbean.Value {
	return mbean.Composite(map[string]mbean.Value{
		"threadName":   mbean.Scalar("main"),
		"blockedCount": mbean.Scalar(count),
		"blockedTime":  mbean.Scalar(timeMs),
	})
}
