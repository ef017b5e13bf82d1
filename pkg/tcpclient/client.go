package tcpclient

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrConnectionClosed = errors.New("connection is closed")
	ErrFrameTooLarge    = errors.New("frame exceeds size limit")
)

// Frames larger than this are treated as protocol corruption.
const maxFrameSize = 512 << 20

// Client is a connection to the inference worker. Messages travel as
// frames: a 4-byte big-endian length prefix followed by the payload.
type Client struct {
	address    string
	timeout    time.Duration
	maxRetries int
	tlsConfig  *tls.Config
	logger     *zap.Logger

	mu   sync.Mutex
	conn net.Conn
}

type Option func(*Client)

func WithTLS(config *tls.Config) Option {
	return func(c *Client) {
		c.tlsConfig = config
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// Dial connects to address, retrying a few times so a worker that is still
// booting can be reached. timeout bounds each connection attempt.
func Dial(address string, timeout time.Duration, opts ...Option) (*Client, error) {
	client := &Client{
		address:    address,
		timeout:    timeout,
		maxRetries: 3,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	var err error
	for i := 0; i < client.maxRetries; i++ {
		var conn net.Conn
		if conn, err = client.dial(); err == nil {
			client.conn = conn
			return client, nil
		}

		client.logger.Warn("Failed to connect, retrying",
			zap.Error(err), zap.Int("attempt", i+1))
		time.Sleep(time.Second)
	}

	return nil, fmt.Errorf("failed to connect to %s after %d attempts: %w",
		address, client.maxRetries, err)
}

func (c *Client) dial() (net.Conn, error) {
	dialer := &net.Dialer{Timeout: c.timeout}
	if c.tlsConfig != nil {
		return tls.DialWithDialer(dialer, "tcp", c.address, c.tlsConfig)
	}

	return dialer.Dial("tcp", c.address)
}

// SendFrame writes one length-prefixed frame.
func (c *Client) SendFrame(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrConnectionClosed
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetWriteDeadline(deadline); err != nil {
			return err
		}
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))

	writer := bufio.NewWriter(c.conn)
	if _, err := writer.Write(header[:]); err != nil {
		return fmt.Errorf("failed to send frame header: %w", err)
	}
	if _, err := writer.Write(payload); err != nil {
		return fmt.Errorf("failed to send frame: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush frame: %w", err)
	}

	return nil
}

// ReceiveFrame reads one length-prefixed frame. No read deadline is applied
// unless the context carries one; an inference reply can take a long time.
func (c *Client) ReceiveFrame(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrConnectionClosed
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
	}

	var header [4]byte
	if _, err := io.ReadFull(c.conn, header[:]); err != nil {
		return nil, fmt.Errorf("failed to receive frame header: %w", err)
	}

	size := binary.BigEndian.Uint32(header[:])
	if size > maxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(c.conn, payload); err != nil {
		return nil, fmt.Errorf("failed to receive frame: %w", err)
	}

	return payload, nil
}

// HealthCheck sends a PING frame and expects a PONG frame back.
func (c *Client) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.SendFrame(ctx, []byte("PING")); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	response, err := c.ReceiveFrame(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if string(response) != "PONG" {
		return fmt.Errorf("unexpected health check response: %s", response)
	}

	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	if err != nil {
		c.logger.Error("Failed to close connection", zap.Error(err))
	}

	return err
}
