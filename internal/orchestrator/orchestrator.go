// Package orchestrator drives the bridge on behalf of a single caller.
//
// Operations are admitted synchronously, executed on a goroutine, and
// published as Completion values. Only the owner goroutine (the one calling
// the operations and Apply) reads or writes orchestrator state; worker
// goroutines see nothing but the arguments captured at dispatch.
package orchestrator

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"droidlink/internal/bridge"
	"droidlink/internal/device"
	"droidlink/internal/logsink"
	"droidlink/internal/notify"
	"droidlink/internal/registry"
)

// ErrUnexpectedOutput marks a command that ran but did not print what the
// operation requires.
var ErrUnexpectedOutput = errors.New("unexpected bridge output")

var DefaultInterfaces = []string{"wlan0", "eth0", "eth1"}

type Op int

const (
	OpRefresh Op = iota
	OpConnect
	OpDisconnectOne
	OpDisconnectAll
	OpInstall
	OpQueryState
	OpValidateTool
	OpRestartService
	OpResolveIP
	OpRaw
)

func (o Op) String() string {
	switch o {
	case OpRefresh:
		return "refresh"
	case OpConnect:
		return "connect"
	case OpDisconnectOne:
		return "disconnect"
	case OpDisconnectAll:
		return "disconnect-all"
	case OpInstall:
		return "install"
	case OpQueryState:
		return "query-state"
	case OpValidateTool:
		return "validate-tool"
	case OpRestartService:
		return "restart-service"
	case OpResolveIP:
		return "resolve-ip"
	case OpRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Runner is the part of bridge.Runner the orchestrator needs.
type Runner interface {
	Run(path string, args []string, rec bridge.Recorder) bridge.Result
}

// Completion is what a worker hands back to the owner goroutine.
type Completion struct {
	ID      uuid.UUID
	Op      Op
	Result  bridge.Result
	Message string

	Devices   []device.Device
	Output    string
	Address   string
	Interface string

	Logs     []logsink.Entry
	Refresh  bool
	Implicit bool
}

type Options struct {
	Runner     Runner
	BridgePath string
	Interfaces []string
	Language   string
	LogLimit   int
	Notifier   notify.Notifier
	// Logger mirrors every log entry when set.
	Logger *log.Logger
}

type Orchestrator struct {
	runner     Runner
	path       string
	interfaces []string
	msgs       messages
	notifier   notify.Notifier
	logger     *log.Logger

	registry  *registry.Registry
	sink      *logsink.Sink
	inflight  int
	status    string
	statusErr bool
	output    string
	address   string
	ack       string

	done chan Completion
}

func New(opts Options) *Orchestrator {
	interfaces := opts.Interfaces
	if len(interfaces) == 0 {
		interfaces = DefaultInterfaces
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Orchestrator{
		runner:     opts.Runner,
		path:       opts.BridgePath,
		interfaces: append([]string(nil), interfaces...),
		msgs:       catalog(opts.Language),
		notifier:   notifier,
		logger:     opts.Logger,
		registry:   registry.New(),
		sink:       logsink.New(opts.LogLimit),
		done:       make(chan Completion, 16),
	}
}

// SetBridgePath changes the tool path used by the next admitted operation.
func (o *Orchestrator) SetBridgePath(path string) {
	o.path = path
}

func (o *Orchestrator) BridgePath() string {
	return o.path
}

// SetRunner swaps the runner for subsequent operations. Operations already
// in flight keep the runner they were dispatched with.
func (o *Orchestrator) SetRunner(r Runner) {
	o.runner = r
}

func (o *Orchestrator) SetInterfaces(interfaces []string) {
	if len(interfaces) == 0 {
		interfaces = DefaultInterfaces
	}
	o.interfaces = append([]string(nil), interfaces...)
}

func (o *Orchestrator) Busy() bool {
	return o.inflight > 0
}

// Status returns the last status line and whether it reports a failure.
func (o *Orchestrator) Status() (string, bool) {
	return o.status, o.statusErr
}

// Output is the device output pane: the raw device listing or the last
// state summary.
func (o *Orchestrator) Output() string {
	return o.output
}

// Address is the last address resolved from a device interface.
func (o *Orchestrator) Address() string {
	return o.address
}

func (o *Orchestrator) Registry() *registry.Registry {
	return o.registry
}

func (o *Orchestrator) Log() *logsink.Sink {
	return o.sink
}

// PendingAck returns a failure the user has not acknowledged yet.
func (o *Orchestrator) PendingAck() (string, bool) {
	return o.ack, o.ack != ""
}

func (o *Orchestrator) Acknowledge() {
	o.ack = ""
}

// Completions is drained by presentations that run their own event loop.
// Each received value must be passed to Apply on the owner goroutine.
func (o *Orchestrator) Completions() <-chan Completion {
	return o.done
}

// Apply folds a completion into orchestrator state. Owner goroutine only.
func (o *Orchestrator) Apply(c Completion) {
	if o.inflight > 0 {
		o.inflight--
	}
	for _, e := range c.Logs {
		o.sink.Append(e)
		if o.logger != nil {
			o.logger.Printf("%s %s: %s", c.Op, shortID(c.ID), e.Message)
		}
	}
	switch c.Op {
	case OpRefresh:
		o.registry.Replace(c.Devices)
		o.output = c.Output
	case OpQueryState, OpRaw:
		if c.Output != "" {
			o.output = c.Output
		}
	case OpResolveIP:
		if c.Result.OK() {
			o.address = c.Address
		}
	}
	if c.Result.OK() {
		if !c.Implicit {
			o.succeed(c.Message)
		}
	} else {
		o.fail(c.Message, c.Result.Err, !c.Implicit)
	}
	if c.Refresh {
		_, _ = o.refresh(true)
	}
}

// Await applies completions until nothing is in flight, for callers without
// an event loop. It returns every completion it applied, in order.
func (o *Orchestrator) Await(ctx context.Context) ([]Completion, error) {
	var applied []Completion
	for o.Busy() {
		select {
		case <-ctx.Done():
			return applied, ctx.Err()
		case c := <-o.done:
			o.Apply(c)
			applied = append(applied, c)
		}
	}
	return applied, nil
}

// ClearLog empties the in-app log.
func (o *Orchestrator) ClearLog() {
	o.sink.Clear()
}

// session is the worker side of one operation.
type session struct {
	path   string
	runner Runner
	logs   []logsink.Entry
}

func (s *session) run(args ...string) bridge.Result {
	return s.runner.Run(s.path, args, s.record)
}

func (s *session) record(msg string, isError bool) {
	s.logs = append(s.logs, logsink.Entry{Time: time.Now(), Message: msg, IsError: isError})
}

func (o *Orchestrator) dispatch(op Op, status string, implicit bool, work func(s *session) Completion) uuid.UUID {
	id := uuid.New()
	o.inflight++
	if !implicit {
		o.setStatus(status, false)
	}
	s := &session{path: o.path, runner: o.runner}
	go func() {
		c := work(s)
		c.ID = id
		c.Op = op
		c.Implicit = implicit
		c.Logs = s.logs
		o.done <- c
	}()
	return id
}

// admit runs the synchronous checks. A rejection never touches the busy
// state and never reaches a worker.
func (o *Orchestrator) admit(implicit bool, checks ...func() error) error {
	if o.runner == nil {
		err := errors.New("no bridge runner configured")
		o.fail("", err, !implicit)
		return err
	}
	if err := bridge.Check(o.path); err != nil {
		o.fail("", err, !implicit)
		return err
	}
	for _, check := range checks {
		if err := check(); err != nil {
			o.fail("", err, !implicit)
			return err
		}
	}
	return nil
}

func (o *Orchestrator) succeed(msg string) {
	if msg == "" {
		return
	}
	o.setStatus(msg, false)
	o.log(logsink.Entry{Time: time.Now(), Message: msg})
}

func (o *Orchestrator) fail(msg string, err error, prompt bool) {
	detail := msg
	if err != nil {
		if detail == "" {
			detail = err.Error()
		} else {
			detail = detail + ": " + err.Error()
		}
	}
	text := o.msgs.get(msgErrorPrefix, detail)
	o.setStatus(text, true)
	o.log(logsink.Entry{Time: time.Now(), Message: text, IsError: true})
	if prompt {
		o.ack = detail
		go o.notify(detail)
	}
}

// notify runs off the owner goroutine; a hung notification daemon must not
// stall Apply.
func (o *Orchestrator) notify(detail string) {
	if err := o.notifier.Notify("droidlink", detail); err != nil && o.logger != nil {
		o.logger.Printf("notify: %v", err)
	}
}

func (o *Orchestrator) setStatus(msg string, isErr bool) {
	o.status = msg
	o.statusErr = isErr
}

// shortID is the log tag of one operation.
func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

func (o *Orchestrator) log(e logsink.Entry) {
	o.sink.Append(e)
	if o.logger != nil {
		o.logger.Println(e.Message)
	}
}
