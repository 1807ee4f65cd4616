package servobus

import (
	"errors"
	"io"
)

// ByteSink is the byte-stream contract the transport requires of its
// collaborator: a serial port, a pty, or a test double. It deliberately says
// nothing about baud rates or framing — that is the caller's concern.
type ByteSink interface {
	// Read returns up to len(p) bytes into p. It may return fewer bytes than
	// requested on timeout or EOF; it never blocks forever.
	Read(p []byte) (int, error)

	// Write returns the number of bytes accepted.
	Write(p []byte) (int, error)

	// Flush blocks until any buffered transmission has gone out.
	Flush() error

	// Close releases the underlying port.
	Close() error
}

// Transport writes frames to a ByteSink and reads responses back,
// optionally discarding a locally echoed copy of the outgoing frame for
// half-duplex wiring.
type Transport struct {
	Sink        ByteSink
	DiscardEcho bool
}

// NewTransport wraps sink in a Transport with echo discard disabled.
func NewTransport(sink ByteSink) *Transport {
	return &Transport{Sink: sink}
}

// readExact reads exactly n bytes from sink, looping over partial reads.
// A read that returns zero bytes with no error, or io.EOF before n bytes have
// arrived, is reported as ErrShortRead; any other sink error is returned as is.
func readExact(sink ByteSink, n int) ([]byte, error) {
	buf := make([]byte, n)
	read := 0
	for read < n {
		m, err := sink.Read(buf[read:])
		read += m
		if err != nil {
			if errors.Is(err, io.EOF) && read < n {
				return buf[:read], ErrShortRead
			}
			return buf[:read], err
		}
		if m == 0 {
			return buf[:read], ErrShortRead
		}
	}
	return buf, nil
}

// Send writes a complete frame to the sink and flushes it. If DiscardEcho is
// set, it then reads and drops exactly len(frame) bytes — the locally
// received copy of what was just transmitted on a half-duplex bus.
func (t *Transport) Send(frame []byte) error {
	if _, err := t.Sink.Write(frame); err != nil {
		return err
	}
	if err := t.Sink.Flush(); err != nil {
		return err
	}
	if t.DiscardEcho {
		if _, err := readExact(t.Sink, len(frame)); err != nil {
			return err
		}
	}
	return nil
}

// Recv reads one response frame whose payload is expectedPayloadLen bytes
// long: 5 header bytes, the payload, and a checksum byte.
func (t *Transport) Recv(expectedPayloadLen int) (Frame, error) {
	header, err := readExact(t.Sink, headerLen)
	if err != nil {
		return Frame{}, err
	}
	if header[0] != sync0 || header[1] != sync1 {
		return Frame{}, ErrBadSync
	}
	id := header[2]
	length := header[3]
	command := header[4]
	if int(length) != 3+expectedPayloadLen {
		return Frame{}, ErrBadLength
	}
	rest, err := readExact(t.Sink, expectedPayloadLen+1)
	if err != nil {
		return Frame{}, err
	}
	payload := append([]byte(nil), rest[:expectedPayloadLen]...)
	gotChecksum := rest[expectedPayloadLen]
	wantChecksum := checksum(id, length, command, payload)
	if gotChecksum != wantChecksum {
		return Frame{}, ErrBadChecksum
	}
	return Frame{ID: id, Command: command, Payload: payload}, nil
}

// Query sends one request frame and reads exactly one response frame. It
// refuses to query the broadcast id, which never replies.
func (t *Transport) Query(id, command uint8, payload []byte, expectedReplyPayloadLen int) (Frame, error) {
	if id == BroadcastID {
		return Frame{}, ErrBroadcastRead
	}
	if err := t.Send(BuildFrame(id, command, payload)); err != nil {
		return Frame{}, err
	}
	return t.Recv(expectedReplyPayloadLen)
}
