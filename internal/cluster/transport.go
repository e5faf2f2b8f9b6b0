package cluster

import (
	"encoding/gob"
	"fmt"
	"io"
	"net"
)

// Conn is an ordered, reliable message link between the coordinator and one
// worker. Implementations must deliver messages in send order; the
// collective protocol relies on that ordering for its barrier semantics.
type Conn interface {
	Send(Message) error
	Recv() (Message, error)
	Close() error
}

// gobConn frames messages with encoding/gob over any byte stream.
type gobConn struct {
	rwc io.ReadWriteCloser
	enc *gob.Encoder
	dec *gob.Decoder
}

// NewConn wraps a byte stream (TCP connection, pipe, ...) as a message
// link.
func NewConn(rwc io.ReadWriteCloser) Conn {
	return &gobConn{
		rwc: rwc,
		enc: gob.NewEncoder(rwc),
		dec: gob.NewDecoder(rwc),
	}
}

func (c *gobConn) Send(m Message) error {
	if err := c.enc.Encode(m); err != nil {
		return fmt.Errorf("send %s: %w", m.Kind, err)
	}
	return nil
}

func (c *gobConn) Recv() (Message, error) {
	var m Message
	if err := c.dec.Decode(&m); err != nil {
		return Message{}, fmt.Errorf("recv: %w", err)
	}
	return m, nil
}

func (c *gobConn) Close() error {
	return c.rwc.Close()
}

// Listen accepts exactly workers TCP connections on addr and returns one
// Conn per worker, in accept order. Accept order determines rank: the i-th
// connection becomes rank i+1.
func Listen(addr string, workers int) ([]Conn, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("worker count %d must be positive", workers)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	defer ln.Close()

	conns := make([]Conn, 0, workers)
	for len(conns) < workers {
		nc, err := ln.Accept()
		if err != nil {
			for _, c := range conns {
				c.Close()
			}
			return nil, fmt.Errorf("accepting worker %d of %d: %w", len(conns)+1, workers, err)
		}
		conns = append(conns, NewConn(nc))
	}
	return conns, nil
}

// Dial connects a worker process to the coordinator at addr.
func Dial(addr string) (Conn, error) {
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to reach coordinator at %s: %w", addr, err)
	}
	return NewConn(nc), nil
}

// Pipe returns the two ends of an in-process link. The two ends share no
// state beyond the pipe itself; data still crosses the boundary through the
// gob codec, so worker goroutines using it are as isolated as remote
// processes.
func Pipe() (coordinator, worker Conn) {
	a, b := net.Pipe()
	return NewConn(a), NewConn(b)
}
