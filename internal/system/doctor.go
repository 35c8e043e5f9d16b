package system

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"droidlink/internal/bridge"
	"droidlink/internal/config"
	"droidlink/internal/parse"

	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

type CheckResult struct {
	Name   string
	Status string
	Detail string
}

// Prober runs one bridge command synchronously. *bridge.Runner satisfies it.
type Prober interface {
	Run(path string, args []string, rec bridge.Recorder) bridge.Result
}

// RunDoctor inspects the host: config, bridge binary, bridge server and the
// local addresses a device could reach.
func RunDoctor(cfg config.Config, configPath string, prober Prober) []CheckResult {
	results := []CheckResult{}

	add := func(name, status, detail string) {
		results = append(results, CheckResult{Name: name, Status: status, Detail: detail})
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			add("config", "warn", configPath+" missing, using defaults")
		} else {
			add("config", "ok", configPath)
		}
	}

	path := cfg.Bridge.Path
	if path == "" {
		located, err := bridge.Locate()
		if err != nil {
			add("bridge", "err", err.Error())
		} else {
			add("bridge", "warn", "bridge.path is empty, found "+located)
			path = located
		}
	} else if err := bridge.Check(path); err != nil {
		add("bridge", "err", err.Error())
		path = ""
	} else {
		add("bridge", "ok", path)
	}

	if path != "" && prober != nil {
		res := prober.Run(path, []string{"version"}, nil)
		switch {
		case !res.OK():
			add("bridge_version", "err", res.Err.Error())
		case strings.TrimSpace(res.Output) == "":
			add("bridge_version", "warn", "empty version output")
		default:
			add("bridge_version", "ok", parse.FirstLine(res.Output))
		}
	}

	if pid, ok := findServer(path); ok {
		add("bridge_server", "ok", fmt.Sprintf("pid %d", pid))
	} else {
		add("bridge_server", "warn", "not running")
	}

	addrs, err := hostIPv4()
	switch {
	case err != nil:
		add("host_ip", "warn", err.Error())
	case len(addrs) == 0:
		add("host_ip", "warn", "no non-loopback IPv4 address")
	default:
		for _, a := range addrs {
			add("host_ip", "ok", a)
		}
	}

	return results
}

func findServer(path string) (int32, bool) {
	want := "adb"
	if path != "" {
		want = filepath.Base(path)
	}
	if runtime.GOOS == "windows" {
		want = strings.TrimSuffix(want, ".exe")
	}
	procs, err := process.Processes()
	if err != nil {
		return 0, false
	}
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if strings.TrimSuffix(name, ".exe") == want {
			return p.Pid, true
		}
	}
	return 0, false
}

func hostIPv4() ([]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, iface := range ifaces {
		if hasFlag(iface.Flags, "loopback") || !hasFlag(iface.Flags, "up") {
			continue
		}
		for _, a := range iface.Addrs {
			ip := a.Addr
			if i := strings.IndexByte(ip, '/'); i >= 0 {
				ip = ip[:i]
			}
			if addr, err := netip.ParseAddr(ip); err == nil && addr.Is4() {
				out = append(out, iface.Name+"="+ip)
			}
		}
	}
	return out, nil
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}

// Failed reports whether any check ended in an error.
func Failed(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == "err" {
			return true
		}
	}
	return false
}

func FormatDoctor(results []CheckResult) string {
	var out string
	for _, r := range results {
		out += fmt.Sprintf("[%s] %s", r.Status, r.Name)
		if r.Detail != "" {
			out += fmt.Sprintf(" -> %s", r.Detail)
		}
		out += "\n"
	}
	return out
}
