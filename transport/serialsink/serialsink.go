// Package serialsink implements servobus.ByteSink over a real UART, and
// enumerates host serial ports to help a caller pick one.
//
// It plays the same role the teacher's serial package played for the
// load-cell protocol (serial/port.go, serial/ports_list.go): a thin,
// OS-appropriate wrapper around a third-party serial driver.
package serialsink

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	goserial "github.com/tarm/serial"
	"go.bug.st/serial/enumerator"
)

// Sink wraps a tarm/serial port so it satisfies servobus.ByteSink.
type Sink struct {
	port *goserial.Port
}

// Config describes how to open a serial port for a servo bus.
type Config struct {
	Name        string
	Baud        int
	ReadTimeout time.Duration
}

// Open opens the named serial port with 8N1 framing at the given baud rate.
func Open(cfg Config) (*Sink, error) {
	port, err := goserial.OpenPort(&goserial.Config{
		Name:        cfg.Name,
		Baud:        cfg.Baud,
		Parity:      goserial.ParityNone,
		Size:        8,
		StopBits:    goserial.Stop1,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &Sink{port: port}, nil
}

// Read implements servobus.ByteSink.
func (s *Sink) Read(p []byte) (int, error) { return s.port.Read(p) }

// Write implements servobus.ByteSink.
func (s *Sink) Write(p []byte) (int, error) { return s.port.Write(p) }

// Flush implements servobus.ByteSink.
func (s *Sink) Flush() error { return s.port.Flush() }

// Close implements servobus.ByteSink.
func (s *Sink) Close() error { return s.port.Close() }

// ListPorts returns a best-effort list of available serial port device
// names, de-duplicated and sorted, with any of preferred that are present
// moved to the front in the order given.
//
// preferred is meant to carry a caller's config.PortCache hit(s): discovery
// order from the OS enumerator or glob fallback has no notion of "this is
// the device that worked last time", so a caller auto-selecting a port
// without prompting should rank a previously-successful port first rather
// than whatever the OS happens to enumerate first.
//
// Supported: Windows (COM ports via the cross-platform enumerator), Linux
// (/dev/ttyUSB*, /dev/ttyACM*), macOS (/dev/cu.*, /dev/tty.*).
func ListPorts(preferred ...string) []string {
	var out []string
	if ports, err := enumerator.GetDetailedPortsList(); err == nil && len(ports) > 0 {
		found := make([]string, 0, len(ports))
		seen := make(map[string]struct{}, len(ports))
		for _, p := range ports {
			if p == nil || p.Name == "" {
				continue
			}
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			found = append(found, p.Name)
		}
		sort.Strings(found)
		out = found
	} else {
		switch runtime.GOOS {
		case "windows":
			out = nil
		case "darwin":
			out = listByGlob("/dev/cu.*", "/dev/tty.*")
		default:
			out = listByGlob("/dev/ttyUSB*", "/dev/ttyACM*", "/dev/tty.*")
		}
	}
	return promote(out, preferred)
}

// promote reorders ports so that any entries also present in preferred lead
// the result, in preferred's order, followed by the remaining ports
// unchanged relative to each other.
func promote(ports []string, preferred []string) []string {
	if len(preferred) == 0 || len(ports) == 0 {
		return ports
	}
	present := make(map[string]struct{}, len(ports))
	for _, p := range ports {
		present[p] = struct{}{}
	}
	out := make([]string, 0, len(ports))
	used := make(map[string]struct{}, len(preferred))
	for _, pref := range preferred {
		if _, ok := present[pref]; ok {
			if _, already := used[pref]; !already {
				out = append(out, pref)
				used[pref] = struct{}{}
			}
		}
	}
	for _, p := range ports {
		if _, ok := used[p]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

func listByGlob(patterns ...string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 16)
	for _, pat := range patterns {
		matches, _ := filepath.Glob(pat)
		for _, m := range matches {
			if m == "" {
				continue
			}
			if _, err := os.Stat(m); err != nil {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}
