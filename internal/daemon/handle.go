package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"fmn/internal/comm"
	"fmn/internal/scheduler"
	"fmn/internal/task"
)

const connTimeout = 10 * time.Second

// handle serves one request on one connection, the whole protocol.
func (d *Daemon) handle(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(connTimeout))

	var req comm.Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		d.log.Warn().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("bad request")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()
	resp := d.dispatch(ctx, req)
	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		d.log.Warn().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("write response failed")
	}
}

func (d *Daemon) dispatch(ctx context.Context, req comm.Request) comm.Response {
	switch req.Op {
	case comm.OpAdd:
		return d.addTask(ctx, req)
	case comm.OpCancel:
		return d.cancelTask(ctx, req.TaskID)
	case comm.OpShow:
		return d.showTasks(ctx)
	default:
		return fail("unknown op %q", string(req.Op))
	}
}

func (d *Daemon) addTask(ctx context.Context, req comm.Request) comm.Response {
	if req.Clock == nil {
		return fail("add needs a clock")
	}
	// The scheduler trusts its input, so the clock is vetted here even
	// though well-behaved clients validate before sending.
	if err := comm.ValidateClock(*req.Clock); err != nil {
		return fail("invalid clock: %v", err)
	}

	image, sound := req.Image, req.Sound
	if def := d.defaults.Load(); def != nil {
		if image == "" {
			image = def.image
		}
		if sound == "" {
			sound = def.sound
		}
	}

	t := task.New(req.Description, *req.Clock, image, sound)
	if err := d.store.Add(ctx, t); err != nil {
		return fail("register task: %v", err)
	}
	if err := d.sched.AddTask(t); err != nil {
		if _, rerr := d.store.Remove(ctx, t.ID); rerr != nil {
			d.log.Warn().Err(rerr).Str("task_id", t.ID).Msg("rollback of registry entry failed")
		}
		if errors.Is(err, scheduler.ErrUnavailable) {
			return fail("scheduler is down")
		}
		return fail("schedule task: %v", err)
	}
	return comm.Response{OK: true, Task: &t}
}

func (d *Daemon) cancelTask(ctx context.Context, id task.ID) comm.Response {
	if id == "" {
		return fail("cancel needs a task id")
	}
	if err := d.sched.CancelTask(id); err != nil {
		return fail("scheduler is down")
	}
	removed, err := d.store.Remove(ctx, id)
	if err != nil {
		return fail("remove task: %v", err)
	}
	if !removed {
		d.log.Warn().Str("task_id", id).Msg("cancel for task not in registry")
	}
	// Cancelling an unknown or finished task is a successful no-op.
	return comm.Response{OK: true}
}

func (d *Daemon) showTasks(ctx context.Context) comm.Response {
	tasks, err := d.store.List(ctx)
	if err != nil {
		return fail("list tasks: %v", err)
	}
	return comm.Response{OK: true, Tasks: tasks}
}

func fail(format string, args ...any) comm.Response {
	return comm.Response{Error: fmt.Sprintf(format, args...)}
}
