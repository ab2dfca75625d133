package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.lsp.dev/jsonrpc2"
)

// streamBufferSize is large enough that a full document sync rarely needs
// more than one read.
const streamBufferSize = 64 * 1024

// Stdio joins stdin and stdout into the connection an editor talks over.
func Stdio() io.ReadWriteCloser {
	return &readWriteCloser{Reader: os.Stdin, Writer: os.Stdout, closers: []io.Closer{os.Stdin, os.Stdout}}
}

type readWriteCloser struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

func (rwc *readWriteCloser) Close() error {
	var first error
	for _, c := range rwc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// headerStream frames JSON-RPC messages with Content-Length headers.
type headerStream struct {
	conn io.ReadWriteCloser
	in   *bufio.Reader
}

// NewStream wraps conn in the LSP base protocol framing.
func NewStream(conn io.ReadWriteCloser) jsonrpc2.Stream {
	return &headerStream{
		conn: conn,
		in:   bufio.NewReaderSize(conn, streamBufferSize),
	}
}

func (s *headerStream) Read(ctx context.Context) (jsonrpc2.Message, int64, error) {
	var total, length int64
	for {
		line, err := s.in.ReadString('\n')
		total += int64(len(line))
		if err != nil {
			return nil, total, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		length, err = strconv.ParseInt(strings.TrimSpace(value), 10, 32)
		if err != nil {
			return nil, total, fmt.Errorf("failed parsing Content-Length: %w", err)
		}
		if length <= 0 {
			return nil, total, fmt.Errorf("invalid Content-Length: %d", length)
		}
	}
	if length == 0 {
		return nil, total, fmt.Errorf("missing Content-Length header")
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(s.in, data); err != nil {
		return nil, total, err
	}
	total += length

	msg, err := jsonrpc2.DecodeMessage(data)
	return msg, total, err
}

func (s *headerStream) Write(ctx context.Context, msg jsonrpc2.Message) (int64, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return 0, err
	}
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(data))
	if _, err := io.WriteString(s.conn, header); err != nil {
		return 0, err
	}
	n, err := s.conn.Write(data)
	return int64(len(header)) + int64(n), err
}

func (s *headerStream) Close() error {
	return s.conn.Close()
}
