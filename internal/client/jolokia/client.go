package jolokia

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"jmxstat/internal/config"
	"jmxstat/internal/mbean"
)

// Connector opens Jolokia connections. It implements mbean.Connector.
type Connector struct {
	cfg    config.JolokiaConfig
	logger zerolog.Logger
}

// NewConnector creates a new Jolokia connector.
func NewConnector(cfg *config.JolokiaConfig, logger zerolog.Logger) *Connector {
	c := config.Default().Jolokia
	if cfg != nil {
		c = *cfg
	}

	// Set default timeout if not specified
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}

	return &Connector{
		cfg:    c,
		logger: logger.With().Str("component", "jolokia").Logger(),
	}
}

// Connect creates a client for endpoint and checks that the agent answers.
func (c *Connector) Connect(ctx context.Context, endpoint string) (mbean.Conn, error) {
	client := NewClient(c.BaseURL(endpoint), c.cfg.Timeout, c.logger)

	version, err := client.Version(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}

	c.logger.Debug().Str("endpoint", client.endpoint).Str("agent", version).Msg("connected")
	return client, nil
}

// BaseURL returns the agent URL for endpoint. Endpoints that already carry a
// scheme are used as given; host:port endpoints get the configured scheme and path.
func (c *Connector) BaseURL(endpoint string) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	return c.cfg.Scheme + "://" + endpoint + c.cfg.Path
}

// Client is a client for one Jolokia agent. It implements mbean.Conn.
type Client struct {
	endpoint   string         // Agent URL
	timeout    time.Duration  // Request timeout
	httpClient *resty.Client  // HTTP client
	logger     zerolog.Logger // Logger
}

// NewClient creates a new Jolokia client for the agent at endpoint.
// The client does not retry; reconnect policy belongs to the caller.
func NewClient(endpoint string, timeout time.Duration, logger zerolog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0)

	return &Client{
		endpoint:   endpoint,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Version returns the agent version.
func (c *Client) Version(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, "connect", &Request{Type: TypeVersion})
	if err != nil {
		return "", err
	}

	if info, ok := ToValue(resp.Value).Field("agent"); ok {
		return info.String(), nil
	}
	return "", nil
}

// GetAttribute reads the named attribute of an object.
func (c *Client) GetAttribute(ctx context.Context, name mbean.ObjectName, attribute string) (mbean.Value, error) {
	resp, err := c.do(ctx, "read", &Request{
		Type:      TypeRead,
		MBean:     name.String(),
		Attribute: attribute,
	})
	if err != nil {
		return mbean.Value{}, err
	}
	return ToValue(resp.Value), nil
}

// SetAttribute writes the named attribute of an object.
func (c *Client) SetAttribute(ctx context.Context, name mbean.ObjectName, attribute string, value interface{}) error {
	_, err := c.do(ctx, "write", &Request{
		Type:      TypeWrite,
		MBean:     name.String(),
		Attribute: attribute,
		Value:     value,
	})
	return err
}

// Invoke calls an operation on an object.
func (c *Client) Invoke(ctx context.Context, name mbean.ObjectName, operation string, args ...interface{}) (mbean.Value, error) {
	if args == nil {
		args = []interface{}{}
	}
	resp, err := c.do(ctx, "exec", &Request{
		Type:      TypeExec,
		MBean:     name.String(),
		Operation: operation,
		Arguments: args,
	})
	if err != nil {
		return mbean.Value{}, err
	}
	return ToValue(resp.Value), nil
}

// Close releases idle HTTP connections.
func (c *Client) Close() error {
	c.httpClient.GetClient().CloseIdleConnections()
	return nil
}

// do posts one request and classifies failures: transport problems and 5xx
// answers are communication errors, agent-reported failures are remote errors.
func (c *Client) do(ctx context.Context, op string, req *Request) (*Response, error) {
	c.logger.Debug().
		Str("type", req.Type).
		Str("mbean", req.MBean).
		Str("attribute", req.Attribute).
		Str("operation", req.Operation).
		Msg("sending jolokia request")

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		Post("")

	if err != nil {
		c.logger.Debug().Err(err).Str("endpoint", c.endpoint).Msg("jolokia request failed")
		return nil, &mbean.CommunicationError{Op: op, Err: err}
	}

	// Check HTTP status code
	if resp.StatusCode() >= http.StatusInternalServerError {
		return nil, &mbean.CommunicationError{
			Op:  op,
			Err: fmt.Errorf("agent returned status %d: %s", resp.StatusCode(), string(resp.Body())),
		}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("jolokia %s: agent returned status %d: %s", op, resp.StatusCode(), string(resp.Body()))
	}

	result, err := decodeResponse(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("jolokia %s: %w", op, err)
	}

	// Check for agent-level errors
	if !result.IsSuccess() {
		remote := &mbean.RemoteError{
			Status:    result.Status,
			ErrorType: result.ErrorType,
			Message:   result.Error,
		}
		if result.IsIOError() {
			return nil, &mbean.CommunicationError{Op: op, Err: remote}
		}
		return nil, fmt.Errorf("jolokia %s: %w", op, remote)
	}

	return result, nil
}
