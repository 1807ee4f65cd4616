// Command servomonitor is a small HTTP+WebSocket server that streams live
// position/velocity telemetry for a set of servo ids, polled off one bus.
//
// The server shape — an in-memory broadcast hub, JSON-enveloped events,
// an upgrade-then-read-loop handler — follows the teacher's
// internal/server/ws.go and ws_handlers.go, with the hub caching last-known
// telemetry per servo and CheckOrigin restricted to loopback by default.
package main

import (
	"flag"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/CK6170/lewanbus/internal/config"
	"github.com/CK6170/lewanbus/servobus"
	"github.com/CK6170/lewanbus/transport/serialsink"
	"github.com/CK6170/lewanbus/velocity"
)

// allowedOrigins holds the extra Origin header values -allow-origin adds on
// top of the always-permitted localhost loopback.
var allowedOrigins []string

// checkOrigin is deliberately stricter than an always-true CheckOrigin: this
// server streams live servo position/velocity, so by default only browser
// requests presenting no Origin (non-browser clients) or a loopback Origin
// are allowed; -allow-origin widens that for a specific deployment.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

func main() {
	var (
		port        = flag.String("port", "", "serial port device (falls back to the port cache if omitted)")
		baud        = flag.Int("baud", 115200, "baud rate")
		ids         = flag.String("ids", "1", "comma-separated servo ids to poll")
		addr        = flag.String("addr", ":8080", "HTTP listen address")
		interval    = flag.Duration("interval", 200*time.Millisecond, "polling interval per servo")
		portCache   = flag.String("port-cache", "", "path to a JSON file remembering the last working port per bus config (disabled if empty)")
		originsFlag = flag.String("allow-origin", "", "comma-separated extra Origin header values to allow besides localhost")
	)
	flag.Parse()
	if *originsFlag != "" {
		allowedOrigins = strings.Split(*originsFlag, ",")
	}

	servoIDs, err := parseIDs(*ids)
	if err != nil {
		log.Fatalf("servomonitor: %v", err)
	}

	portName := *port
	var cache *config.PortCache
	var cacheKey string
	if *portCache != "" {
		cache = config.NewPortCache(*portCache)
		idInts := make([]int, len(servoIDs))
		for i, id := range servoIDs {
			idInts[i] = int(id)
		}
		cacheKey = config.BusKey(*baud, idInts)
		if portName == "" {
			portName = cache.Get(cacheKey)
		}
	}
	if portName == "" {
		log.Fatal("servomonitor: -port is required (no cached port found)")
	}

	sink, err := serialsink.Open(serialsink.Config{Name: portName, Baud: *baud, ReadTimeout: 300 * time.Millisecond})
	if err != nil {
		log.Fatalf("servomonitor: opening %s: %v", portName, err)
	}
	if cache != nil {
		cache.Set(cacheKey, portName)
	}
	bus := servobus.NewBus(sink)
	defer func() { _ = bus.Close() }()

	hub := newWSHub()
	go pollLoop(bus, servoIDs, *interval, hub)

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) { serveWS(w, r, hub) })
	log.Printf("servomonitor: listening on %s, polling servos %v every %s", *addr, servoIDs, *interval)
	log.Fatal(http.ListenAndServe(*addr, nil))
}

func parseIDs(csv string) ([]uint8, error) {
	var out []uint8
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 253 {
			return nil, err
		}
		out = append(out, uint8(n))
	}
	return out, nil
}

// telemetry is what each poll tick broadcasts for one servo.
type telemetry struct {
	ID       uint8   `json:"id"`
	AngleDeg float64 `json:"angleDeg"`
	VelDegS  float64 `json:"velocityDegPerSec"`
}

// pollLoop keeps a short rolling window of position samples per servo and
// broadcasts both the raw angle and a velocity.Trend estimate each tick.
func pollLoop(bus *servobus.Bus, ids []uint8, interval time.Duration, hub *wsHub) {
	const windowSize = 5
	windows := make(map[uint8][]velocity.Sample, len(ids))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		for _, id := range ids {
			angle, err := bus.PosRead(id)
			if err != nil {
				continue
			}
			w := append(windows[id], velocity.Sample{At: time.Now(), Angle: angle})
			if len(w) > windowSize {
				w = w[len(w)-windowSize:]
			}
			windows[id] = w

			var velDegS float64
			if len(w) >= 2 {
				velDegS, _ = velocity.Trend(w)
			}
			hub.broadcast(wsMessage{Type: "telemetry", Data: telemetry{ID: id, AngleDeg: angle, VelDegS: velDegS}})
		}
	}
}

// serveWS upgrades the connection and blocks on a read-loop whose only job
// is to detect client disconnects, the same shape as handleWSHub in the
// teacher's internal/server package.
func serveWS(w http.ResponseWriter, r *http.Request, hub *wsHub) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := hub.add(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			hub.remove(client)
			return
		}
	}
}
