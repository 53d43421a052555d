// Package comm is the client/daemon wire protocol: JSON request/response over
// a short-lived TCP connection, one request per connection.
package comm

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"fmn/internal/task"
)

// DefaultAddr is used when FMN_DAEMON_ADDR is not set.
const DefaultAddr = "127.0.0.1:8082"

type Op string

const (
	OpAdd    Op = "add"
	OpCancel Op = "cancel"
	OpShow   Op = "show"
)

type Request struct {
	Op          Op          `json:"op"`
	Description string      `json:"description,omitempty"`
	Clock       *task.Clock `json:"clock,omitempty"`
	Image       string      `json:"image,omitempty"`
	Sound       string      `json:"sound,omitempty"`
	TaskID      task.ID     `json:"task_id,omitempty"`
}

type Response struct {
	OK    bool        `json:"ok"`
	Error string      `json:"error,omitempty"`
	Task  *task.Task  `json:"task,omitempty"`
	Tasks []task.Task `json:"tasks,omitempty"`
}

const dialTimeout = 5 * time.Second
const ioTimeout = 10 * time.Second

// Send performs one request round-trip against the daemon at addr.
func Send(addr string, req Request) (Response, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return Response{}, fmt.Errorf("dial daemon at %s: %w", addr, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(ioTimeout))

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, fmt.Errorf("send request: %w", err)
	}
	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	return resp, nil
}
