package dump1090

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"flight_tracker/internal/metrics"
	"flight_tracker/internal/models"
)

const (
	dialTimeout     = 5 * time.Second
	readTimeout     = 1 * time.Second
	maxRetryBackoff = 30 * time.Second
	maxLineLength   = 1024
)

// SBSClient streams SBS-1 (BaseStation) messages from dump1090, normally port 30003
type SBSClient struct {
	addr         string
	maxRetries   int
	retryBackoff time.Duration
	location     *time.Location
	metrics      *metrics.Registry

	mu      sync.Mutex
	conn    net.Conn
	reader  *bufio.Reader
	partial []byte
}

// Option configures an SBSClient
type Option func(*SBSClient)

// WithMaxRetries limits consecutive failed connection attempts; -1 retries forever
func WithMaxRetries(n int) Option {
	return func(c *SBSClient) {
		c.maxRetries = n
	}
}

// WithRetryBackoff sets the initial reconnect delay
func WithRetryBackoff(d time.Duration) Option {
	return func(c *SBSClient) {
		c.retryBackoff = d
	}
}

// WithLocation sets the zone used for the feed's generated/logged columns
func WithLocation(loc *time.Location) Option {
	return func(c *SBSClient) {
		c.location = loc
	}
}

// WithMetrics records line and connection counters
func WithMetrics(m *metrics.Registry) Option {
	return func(c *SBSClient) {
		c.metrics = m
	}
}

func NewSBSClient(addr string, opts ...Option) *SBSClient {
	c := &SBSClient{
		addr:         addr,
		maxRetries:   -1, // -1 means infinite retries
		retryBackoff: 1 * time.Second,
		location:     time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// connect establishes a TCP connection to dump1090
func (c *SBSClient) connect(ctx context.Context) error {
	dialer := net.Dialer{
		Timeout: dialTimeout,
	}

	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.addr, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.partial = c.partial[:0]
	c.mu.Unlock()

	c.setConnected(true)
	return nil
}

// StreamMessages connects, reads and parses lines until ctx is cancelled,
// reconnecting with exponential backoff whenever the connection drops. It
// returns ctx.Err() on cancellation, or an error once maxRetries is exceeded.
func (c *SBSClient) StreamMessages(ctx context.Context, messageChan chan<- *models.SBSMessage) error {
	retryCount := 0
	backoff := c.retryBackoff

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !c.connected() {
			if err := c.connect(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				retryCount++
				if c.metrics != nil {
					c.metrics.FeedReconnectsTotal.Inc()
				}
				if c.maxRetries >= 0 && retryCount > c.maxRetries {
					return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, err)
				}
				slog.Warn("Failed to connect to SBS feed", "addr", c.addr, "retry", retryCount, "backoff", backoff, "error", err)

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(backoff):
				}
				// Exponential backoff: 1s, 2s, 4s, 8s, max 30s
				backoff = min(backoff*2, maxRetryBackoff)
				continue
			}
			retryCount = 0
			backoff = c.retryBackoff
			slog.Info("Connected to SBS feed", "addr", c.addr)
		}

		err := c.readMessages(ctx, messageChan)
		if ctx.Err() != nil {
			c.closeConnection()
			return ctx.Err()
		}
		slog.Warn("Feed connection error, reconnecting", "addr", c.addr, "error", err)
		c.closeConnection()
	}
}

func (c *SBSClient) readMessages(ctx context.Context, messageChan chan<- *models.SBSMessage) error {
	c.mu.Lock()
	conn, reader := c.conn, c.reader
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("connection closed")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return fmt.Errorf("failed to set read deadline: %w", err)
		}

		chunk, err := reader.ReadSlice('\n')
		if err != nil {
			var netErr net.Error
			switch {
			case errors.As(err, &netErr) && netErr.Timeout(), errors.Is(err, bufio.ErrBufferFull):
				// keep what arrived so far and wait for the rest of the line
				c.partial = append(c.partial, chunk...)
				if len(c.partial) > maxLineLength {
					slog.Debug("Discarding oversized SBS line", "bytes", len(c.partial))
					c.partial = c.partial[:0]
				}
				continue
			case errors.Is(err, io.EOF):
				return fmt.Errorf("connection closed")
			default:
				return fmt.Errorf("failed to read line: %w", err)
			}
		}

		line := string(append(c.partial, chunk...))
		c.partial = c.partial[:0]

		msg, ok := c.parseLine(line)
		if !ok {
			continue
		}

		select {
		case messageChan <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// parseLine logs and counts failures; only MSG records are forwarded
func (c *SBSClient) parseLine(line string) (*models.SBSMessage, bool) {
	msg, err := models.ParseSBSMessageIn(line, c.location)
	switch {
	case err == nil:
		c.countLine(metrics.FeedParsed)
		return msg, true
	case errors.Is(err, models.ErrUnsupportedRecord):
		c.countLine(metrics.FeedUnsupported)
	default:
		c.countLine(metrics.FeedMalformed)
		slog.Debug("Failed to parse SBS message", "line", line, "error", err)
	}
	return nil, false
}

func (c *SBSClient) countLine(status string) {
	if c.metrics != nil {
		c.metrics.FeedLinesTotal.WithLabelValues(status).Inc()
	}
}

func (c *SBSClient) setConnected(up bool) {
	if c.metrics == nil {
		return
	}
	if up {
		c.metrics.FeedConnected.Set(1)
	} else {
		c.metrics.FeedConnected.Set(0)
	}
}

func (c *SBSClient) connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// closeConnection closes the current connection
func (c *SBSClient) closeConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.reader = nil
		c.setConnected(false)
	}
}

// Close closes the connection
func (c *SBSClient) Close() error {
	c.closeConnection()
	return nil
}
