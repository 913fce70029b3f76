package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const handshakeTimeout = 5 * time.Second

// daemonCommand is sent to the recognition daemon, one JSON object per line.
type daemonCommand struct {
	Cmd    string `json:"cmd"`
	Locale string `json:"locale,omitempty"`
}

type daemonResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type daemonResult struct {
	Transcript string `json:"transcript"`
	Final      bool   `json:"final"`
}

// daemonEvent is streamed back after a successful start.
type daemonEvent struct {
	Event   string         `json:"event"`
	Results []daemonResult `json:"results,omitempty"`
	Message string         `json:"message,omitempty"`
}

// DaemonRecognizer talks NDJSON to a live speech recognition daemon over a Unix socket.
type DaemonRecognizer struct {
	socketPath string
	locale     string

	mu   sync.Mutex
	conn net.Conn
}

func NewDaemonRecognizer(socketPath, locale string) *DaemonRecognizer {
	return &DaemonRecognizer{socketPath: socketPath, locale: locale}
}

func (r *DaemonRecognizer) Start(ctx context.Context) (<-chan Event, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", r.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect to recognizer: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB buffer

	conn.SetDeadline(time.Now().Add(handshakeTimeout))
	if err := writeLine(conn, daemonCommand{Cmd: "start", Locale: r.locale}); err != nil {
		conn.Close()
		return nil, err
	}
	if !scanner.Scan() {
		conn.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read start response: %w", err)
		}
		return nil, errors.New("recognizer closed the connection")
	}
	var resp daemonResponse
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		conn.Close()
		return nil, fmt.Errorf("decode start response: %w", err)
	}
	if !resp.OK {
		conn.Close()
		return nil, fmt.Errorf("recognizer refused start: %s", resp.Error)
	}

	conn.SetDeadline(time.Time{})

	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()

	events := make(chan Event)
	go r.read(ctx, conn, scanner, events)
	return events, nil
}

func (r *DaemonRecognizer) read(ctx context.Context, conn net.Conn, scanner *bufio.Scanner, events chan<- Event) {
	defer close(events)
	defer func() {
		r.mu.Lock()
		if r.conn == conn {
			r.conn = nil
		}
		r.mu.Unlock()
		conn.Close()
	}()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	send := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for scanner.Scan() {
		var ev daemonEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		switch ev.Event {
		case "results":
			fragments := make([]string, len(ev.Results))
			for i, res := range ev.Results {
				fragments[i] = res.Transcript
			}
			if !send(Event{Kind: EventFragments, Fragments: fragments}) {
				return
			}
		case "end":
			send(Event{Kind: EventEnd})
			return
		case "error":
			send(Event{Kind: EventError, Err: errors.New(ev.Message)})
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		send(Event{Kind: EventError, Err: fmt.Errorf("read recognizer: %w", err)})
		return
	}
	send(Event{Kind: EventEnd})
}

// Stop asks the daemon to finish; it answers with a final "end" event.
func (r *DaemonRecognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	return writeLine(r.conn, daemonCommand{Cmd: "stop"})
}

func writeLine(conn net.Conn, cmd daemonCommand) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}
