// Package parse turns raw bridge output into typed values. Every function is
// pure and reports a miss as an empty or false result rather than an error.
package parse

import (
	"regexp"
	"strconv"
	"strings"

	"droidlink/internal/device"
)

const headerToken = "List"

var dottedQuad = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// ConnectedDevices returns the identifiers listed by `devices`, in bridge order.
func ConnectedDevices(raw string) []string {
	devs := Devices(raw)
	ids := make([]string, 0, len(devs))
	for _, d := range devs {
		ids = append(ids, d.ID)
	}
	return ids
}

// Devices is ConnectedDevices plus the state column of each line.
func Devices(raw string) []device.Device {
	out := []device.Device{}
	if raw == "" {
		return out
	}
	lines := splitLines(raw)
	if len(lines) <= 1 {
		return out
	}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		id := fields[0]
		if strings.Contains(id, headerToken) {
			continue
		}
		state := device.StateUnknown
		if len(fields) > 1 {
			state = device.ParseState(fields[1])
		}
		out = append(out, device.Device{ID: id, State: state})
	}
	return out
}

// IPv4 returns the first address on an `inet ` line of an interface dump.
// The check is syntactic: octets above 255 are not rejected.
func IPv4(raw string) (string, bool) {
	for _, line := range splitLines(raw) {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "inet ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		ip := fields[1]
		if i := strings.IndexByte(ip, '/'); i >= 0 {
			ip = ip[:i]
		}
		if dottedQuad.MatchString(ip) {
			return ip, true
		}
	}
	return "", false
}

// BatteryLevel reads the percentage from a battery dump. Only the first line
// containing "level:" is considered.
func BatteryLevel(raw string) (int, bool) {
	for _, line := range splitLines(raw) {
		if !strings.Contains(line, "level:") {
			continue
		}
		_, value, _ := strings.Cut(line, ":")
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Property trims a single getprop value.
func Property(raw string) string {
	return strings.TrimSpace(raw)
}

// FirstLine returns the first line of raw without its line ending.
func FirstLine(raw string) string {
	lines := splitLines(strings.TrimLeft(raw, "\r\n"))
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[0])
}

// Connected reports whether `connect` output describes a live connection:
// a line starting with "connected to " or "already connected to ".
func Connected(raw string) bool {
	for _, line := range splitLines(raw) {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "connected to ") || strings.HasPrefix(line, "already connected to ") {
			return true
		}
	}
	return false
}

// InstallSucceeded reports whether install output contains "Success".
func InstallSucceeded(raw string) bool {
	return strings.Contains(raw, "Success")
}

func splitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}
