package orchestrator

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"droidlink/internal/bridge"
	"droidlink/internal/parse"
)

// Refresh re-lists attached devices and replaces the registry.
func (o *Orchestrator) Refresh() (uuid.UUID, error) {
	return o.refresh(false)
}

// AutoRefresh is Refresh for timers: it keeps the status line and never
// prompts on failure.
func (o *Orchestrator) AutoRefresh() (uuid.UUID, error) {
	return o.refresh(true)
}

func (o *Orchestrator) refresh(implicit bool) (uuid.UUID, error) {
	if err := o.admit(implicit); err != nil {
		return uuid.Nil, err
	}
	m := o.msgs
	return o.dispatch(OpRefresh, m.get(msgRefreshing), implicit, func(s *session) Completion {
		res := s.run("devices", "-l")
		c := Completion{Result: res, Output: res.Output}
		if !res.OK() {
			c.Message = m.get(msgRefreshFailed)
			return c
		}
		c.Devices = parse.Devices(res.Output)
		c.Message = m.get(msgDevicesFound, len(c.Devices))
		return c
	}), nil
}

// Connect switches the attached device to network mode and connects to it
// at address:port. The leading disconnect and tcpip steps are best effort;
// only the final connect output decides the outcome.
func (o *Orchestrator) Connect(address string, port int) (uuid.UUID, error) {
	address = strings.TrimSpace(address)
	if host, p, err := net.SplitHostPort(address); err == nil {
		address = host
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}
	err := o.admit(false, func() error {
		if address == "" {
			return fmt.Errorf("%w: device address is empty", bridge.ErrValidation)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("%w: port %d out of range", bridge.ErrValidation, port)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	m := o.msgs
	target := net.JoinHostPort(address, strconv.Itoa(port))
	return o.dispatch(OpConnect, m.get(msgConnecting, target), false, func(s *session) Completion {
		s.run("disconnect")
		s.run("tcpip", strconv.Itoa(port))
		res := s.run("connect", target)
		c := Completion{Refresh: true, Output: res.Output}
		switch {
		case !res.OK():
			c.Result = res
			c.Message = m.get(msgConnectFailed, target)
		case !parse.Connected(res.Output):
			c.Result = bridge.Result{Output: res.Output, Err: fmt.Errorf("%w: %s", ErrUnexpectedOutput, strings.TrimSpace(res.Output))}
			c.Message = m.get(msgConnectFailed, target)
		default:
			c.Result = res
			c.Message = m.get(msgConnected, target)
		}
		return c
	}), nil
}

// DisconnectOne drops one network device. Bridge failures are logged only.
func (o *Orchestrator) DisconnectOne(id string) (uuid.UUID, error) {
	id = strings.TrimSpace(id)
	err := o.admit(false, func() error {
		if id == "" {
			return fmt.Errorf("%w: device id is empty", bridge.ErrValidation)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	m := o.msgs
	return o.dispatch(OpDisconnectOne, m.get(msgDisconnecting, id), false, func(s *session) Completion {
		res := s.run("disconnect", id)
		return Completion{
			Result:  bridge.Result{Output: res.Output},
			Message: m.get(msgDisconnected, id),
			Refresh: true,
		}
	}), nil
}

func (o *Orchestrator) DisconnectAll() (uuid.UUID, error) {
	if err := o.admit(false); err != nil {
		return uuid.Nil, err
	}
	m := o.msgs
	return o.dispatch(OpDisconnectAll, m.get(msgDisconnectingAll), false, func(s *session) Completion {
		res := s.run("disconnect")
		return Completion{
			Result:  bridge.Result{Output: res.Output},
			Message: m.get(msgDisconnectedAll),
			Refresh: true,
		}
	}), nil
}

// Install pushes a package, replacing an existing install.
func (o *Orchestrator) Install(pkgPath string) (uuid.UUID, error) {
	pkgPath = strings.TrimSpace(pkgPath)
	err := o.admit(false, func() error {
		if pkgPath == "" {
			return fmt.Errorf("%w: package path is empty", bridge.ErrValidation)
		}
		info, err := os.Stat(pkgPath)
		if err != nil || info.IsDir() {
			return fmt.Errorf("%w: package %s not found", bridge.ErrValidation, pkgPath)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	m := o.msgs
	return o.dispatch(OpInstall, m.get(msgInstalling, pkgPath), false, func(s *session) Completion {
		res := s.run("install", "-r", pkgPath)
		c := Completion{Output: res.Output}
		switch {
		case !res.OK():
			c.Result = res
			c.Message = m.get(msgInstallFailed)
		case !parse.InstallSucceeded(res.Output):
			c.Result = bridge.Result{Output: res.Output, Err: fmt.Errorf("%w: %s", ErrUnexpectedOutput, strings.TrimSpace(res.Output))}
			c.Message = m.get(msgInstallFailed)
		default:
			c.Result = res
			c.Message = m.get(msgInstalled)
		}
		return c
	}), nil
}

// QueryState reads model, OS version, manufacturer and battery. A failed
// query degrades its own field; the operation fails only when all do.
func (o *Orchestrator) QueryState(id string) (uuid.UUID, error) {
	id = strings.TrimSpace(id)
	err := o.admit(false, func() error {
		if id == "" {
			return fmt.Errorf("%w: device id is empty", bridge.ErrValidation)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	m := o.msgs
	return o.dispatch(OpQueryState, m.get(msgQuerying, id), false, func(s *session) Completion {
		failed := 0
		prop := func(name string) string {
			res := s.run("-s", id, "shell", "getprop", name)
			if !res.OK() {
				failed++
				return m.get(msgUnknown)
			}
			if v := parse.Property(res.Output); v != "" {
				return v
			}
			return m.get(msgUnknown)
		}
		model := prop("ro.product.model")
		release := prop("ro.build.version.release")
		manufacturer := prop("ro.product.manufacturer")
		battery := s.run("-s", id, "shell", "dumpsys", "battery")
		if !battery.OK() {
			failed++
		}

		var b strings.Builder
		b.WriteString(m.get(msgStateDevice, manufacturer, model))
		b.WriteByte('\n')
		b.WriteString(m.get(msgStateOS, release))
		b.WriteByte('\n')
		if battery.OK() {
			if level, ok := parse.BatteryLevel(battery.Output); ok {
				b.WriteString(m.get(msgStateBattery, level))
				b.WriteByte('\n')
			}
		}

		if failed == 4 {
			return Completion{
				Result:  bridge.Result{Err: fmt.Errorf("%w: every state query failed", bridge.ErrProcess)},
				Message: m.get(msgStateFailed, id),
			}
		}
		return Completion{
			Result:  bridge.Result{Output: b.String()},
			Output:  b.String(),
			Message: m.get(msgStateUpdated),
		}
	}), nil
}

// ValidateTool asks the bridge for its version.
func (o *Orchestrator) ValidateTool() (uuid.UUID, error) {
	if err := o.admit(false); err != nil {
		return uuid.Nil, err
	}
	m := o.msgs
	return o.dispatch(OpValidateTool, m.get(msgValidating), false, func(s *session) Completion {
		res := s.run("version")
		if !res.OK() {
			return Completion{Result: res, Message: m.get(msgBridgeVersionFailed)}
		}
		if strings.TrimSpace(res.Output) == "" {
			return Completion{
				Result:  bridge.Result{Err: fmt.Errorf("%w: empty version output", ErrUnexpectedOutput)},
				Message: m.get(msgBridgeVersionFailed),
			}
		}
		return Completion{Result: res, Message: m.get(msgBridgeOK, parse.FirstLine(res.Output))}
	}), nil
}

// RestartService stops and starts the bridge server, then refreshes
// whatever either step reported.
func (o *Orchestrator) RestartService() (uuid.UUID, error) {
	if err := o.admit(false); err != nil {
		return uuid.Nil, err
	}
	m := o.msgs
	return o.dispatch(OpRestartService, m.get(msgRestarting), false, func(s *session) Completion {
		s.run("kill-server")
		res := s.run("start-server")
		return Completion{
			Result:  bridge.Result{Output: res.Output},
			Message: m.get(msgRestarted),
			Refresh: true,
		}
	}), nil
}

// ResolveIP walks the configured interfaces of the device in order and
// stops at the first IPv4 address found.
func (o *Orchestrator) ResolveIP(serial string) (uuid.UUID, error) {
	serial = strings.TrimSpace(serial)
	err := o.admit(false, func() error {
		if serial == "" {
			return fmt.Errorf("%w: no device selected", bridge.ErrValidation)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	m := o.msgs
	interfaces := append([]string(nil), o.interfaces...)
	return o.dispatch(OpResolveIP, m.get(msgResolving, serial), false, func(s *session) Completion {
		for _, iface := range interfaces {
			res := s.run("-s", serial, "shell", "ip", "-f", "inet", "addr", "show", iface)
			if !res.OK() {
				continue
			}
			if ip, ok := parse.IPv4(res.Output); ok {
				return Completion{
					Result:    bridge.Result{Output: ip},
					Address:   ip,
					Interface: iface,
					Message:   m.get(msgResolved, iface, ip),
				}
			}
		}
		return Completion{
			Result:  bridge.Result{Err: fmt.Errorf("%w: no IPv4 address on %s", ErrUnexpectedOutput, strings.Join(interfaces, ", "))},
			Message: m.get(msgResolveFailed),
		}
	}), nil
}

// Raw passes arguments straight to the bridge and shows what it printed.
func (o *Orchestrator) Raw(args []string) (uuid.UUID, error) {
	args = append([]string(nil), args...)
	err := o.admit(false, func() error {
		if len(args) == 0 {
			return fmt.Errorf("%w: empty command", bridge.ErrValidation)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	m := o.msgs
	return o.dispatch(OpRaw, m.get(msgRunning, bridge.Command(args...)), false, func(s *session) Completion {
		res := s.run(args...)
		c := Completion{Result: res, Output: res.Output, Message: m.get(msgRawDone)}
		if !res.OK() {
			c.Message = m.get(msgRawFailed)
		}
		return c
	}), nil
}
