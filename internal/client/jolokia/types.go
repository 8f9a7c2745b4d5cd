// Package jolokia provides a client for the Jolokia JMX-over-HTTP protocol.
package jolokia

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"jmxstat/internal/mbean"
)

// Request types understood by the agent.
const (
	TypeVersion = "version"
	TypeRead    = "read"
	TypeWrite   = "write"
	TypeExec    = "exec"
)

// Request is a single Jolokia request, sent as the JSON body of a POST.
type Request struct {
	Type      string        `json:"type"`
	MBean     string        `json:"mbean,omitempty"`
	Attribute string        `json:"attribute,omitempty"`
	Value     interface{}   `json:"value,omitempty"`
	Operation string        `json:"operation,omitempty"`
	Arguments []interface{} `json:"arguments,omitempty"`
}

// Response is the envelope returned for every request.
type Response struct {
	Status     int         `json:"status"`     // 200 on success, otherwise an HTTP-like error code
	Value      interface{} `json:"value"`      // Result, decoded with json.Number for numbers
	Timestamp  int64       `json:"timestamp"`  // Agent time in seconds
	Error      string      `json:"error"`      // Error message when Status != 200
	ErrorType  string      `json:"error_type"` // Remote exception class
	Stacktrace string      `json:"stacktrace"`
}

// IsSuccess returns true if the agent processed the request.
func (r *Response) IsSuccess() bool {
	return r.Status == 200
}

// IsIOError reports whether the agent failed because of an I/O exception on
// its side, e.g. when proxying to an unreachable JVM.
func (r *Response) IsIOError() bool {
	return strings.HasSuffix(r.ErrorType, "IOException")
}

// decodeResponse decodes a response body keeping numbers in their exact text form.
func decodeResponse(body []byte) (*Response, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var resp Response
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

// ToValue converts a decoded JSON value into an mbean.Value.
// Objects become composites, arrays become lists and everything else a scalar.
func ToValue(raw interface{}) mbean.Value {
	switch v := raw.(type) {
	case map[string]interface{}:
		fields := make(map[string]mbean.Value, len(v))
		for k, f := range v {
			fields[k] = ToValue(f)
		}
		return mbean.Composite(fields)
	case []interface{}:
		items := make([]mbean.Value, len(v))
		for i, item := range v {
			items[i] = ToValue(item)
		}
		return mbean.List(items...)
	case nil:
		return mbean.Scalar("null")
	case string:
		return mbean.Scalar(v)
	case json.Number:
		return mbean.Scalar(v.String())
	default:
		return mbean.Scalar(fmt.Sprint(v))
	}
}
