package sumo

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// TraCI command and type identifiers, per the SUMO TraCI protocol
const (
	cmdGetVersion     = 0x00
	cmdSimStep        = 0x02
	cmdClose          = 0x7f
	cmdGetSimVariable = 0xab
	resGetSimVariable = 0xbb

	varMinExpectedVehicles = 0x7d

	typeInteger = 0x09
	typeDouble  = 0x0b
	typeString  = 0x0c

	statusOK = 0x00
)

// command is one TraCI command or result inside a message
type command struct {
	id      byte
	content []byte
}

// status is a decoded TraCI status response
type status struct {
	id          byte
	result      byte
	description string
}

// encodeString encodes a TraCI string: 4-byte length prefix, no terminator
func encodeString(s string) []byte {
	buf := make([]byte, 4+len(s))
	binary.BigEndian.PutUint32(buf, uint32(len(s)))
	copy(buf[4:], s)
	return buf
}

// encodeDouble encodes an IEEE-754 double in network byte order
func encodeDouble(v float64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(v))
	return buf
}

// encodeCommand frames one command. Commands short enough for a one-byte
// length use the compact form; larger ones use the zero-marker extended
// form with a four-byte length.
func encodeCommand(id byte, content []byte) []byte {
	total := 2 + len(content)
	if total <= 0xff {
		buf := make([]byte, 0, total)
		buf = append(buf, byte(total), id)
		return append(buf, content...)
	}
	// extended: zero length byte, then 4-byte length covering everything
	total = 6 + len(content)
	buf := make([]byte, 6, total)
	buf[0] = 0
	binary.BigEndian.PutUint32(buf[1:5], uint32(total))
	buf[5] = id
	return append(buf, content...)
}

// encodeMessage frames commands into one TraCI message, including the
// leading four-byte total length
func encodeMessage(cmds ...[]byte) []byte {
	total := 4
	for _, c := range cmds {
		total += len(c)
	}
	buf := make([]byte, 4, total)
	binary.BigEndian.PutUint32(buf, uint32(total))
	for _, c := range cmds {
		buf = append(buf, c...)
	}
	return buf
}

// readMessage reads one framed message and returns its payload without
// the length prefix
func readMessage(r io.Reader) ([]byte, error) {
	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("failed to read message header: %w", err)
	}
	total := binary.BigEndian.Uint32(head[:])
	if total < 4 {
		return nil, fmt.Errorf("invalid message length %d", total)
	}
	payload := make([]byte, total-4)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("failed to read message payload: %w", err)
	}
	return payload, nil
}

// firstCommand parses one framed command off the front of a message
// payload and returns the unparsed remainder
func firstCommand(payload []byte) (command, []byte, error) {
	if len(payload) == 0 {
		return command{}, nil, fmt.Errorf("empty payload")
	}
	if payload[0] != 0 {
		length := int(payload[0])
		if length < 2 || length > len(payload) {
			return command{}, nil, fmt.Errorf("invalid command length %d (have %d bytes)", length, len(payload))
		}
		return command{id: payload[1], content: payload[2:length]}, payload[length:], nil
	}
	if len(payload) < 6 {
		return command{}, nil, fmt.Errorf("truncated extended command header")
	}
	length := int(binary.BigEndian.Uint32(payload[1:5]))
	if length < 6 || length > len(payload) {
		return command{}, nil, fmt.Errorf("invalid extended command length %d (have %d bytes)", length, len(payload))
	}
	return command{id: payload[5], content: payload[6:length]}, payload[length:], nil
}

// splitMessage splits a sequence of framed commands. Not applicable to
// step responses, whose tail holds a raw subscription count.
func splitMessage(payload []byte) ([]command, error) {
	var cmds []command
	for len(payload) > 0 {
		c, rest, err := firstCommand(payload)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, c)
		payload = rest
	}
	return cmds, nil
}

// decodeString decodes a TraCI string and returns the remaining bytes
func decodeString(buf []byte) (string, []byte, error) {
	if len(buf) < 4 {
		return "", nil, fmt.Errorf("truncated string length")
	}
	n := int(binary.BigEndian.Uint32(buf))
	if len(buf) < 4+n {
		return "", nil, fmt.Errorf("truncated string: want %d bytes, have %d", n, len(buf)-4)
	}
	return string(buf[4 : 4+n]), buf[4+n:], nil
}

// parseStatus decodes a status response command
func parseStatus(c command) (status, error) {
	if len(c.content) < 1 {
		return status{}, fmt.Errorf("empty status for command 0x%02x", c.id)
	}
	desc, _, err := decodeString(c.content[1:])
	if err != nil {
		return status{}, fmt.Errorf("bad status for command 0x%02x: %w", c.id, err)
	}
	return status{id: c.id, result: c.content[0], description: desc}, nil
}

// parseIntVariable decodes a get-sim-variable result carrying an integer
func parseIntVariable(c command, wantVar byte) (int, error) {
	if c.id != resGetSimVariable {
		return 0, fmt.Errorf("unexpected result command 0x%02x", c.id)
	}
	content := c.content
	if len(content) < 1 {
		return 0, fmt.Errorf("empty variable result")
	}
	if content[0] != wantVar {
		return 0, fmt.Errorf("unexpected variable 0x%02x (want 0x%02x)", content[0], wantVar)
	}
	_, rest, err := decodeString(content[1:])
	if err != nil {
		return 0, fmt.Errorf("bad variable object id: %w", err)
	}
	if len(rest) < 5 {
		return 0, fmt.Errorf("truncated variable value")
	}
	if rest[0] != typeInteger {
		return 0, fmt.Errorf("unexpected value type 0x%02x", rest[0])
	}
	return int(int32(binary.BigEndian.Uint32(rest[1:5]))), nil
}

// roundTrip sends one command, checks the status response and returns
// the raw payload following the status frame. Step responses carry a
// subscription section there that is not command-framed, so callers
// decide how to interpret the remainder.
func roundTrip(rw io.ReadWriter, id byte, content []byte) ([]byte, error) {
	msg := encodeMessage(encodeCommand(id, content))
	if _, err := rw.Write(msg); err != nil {
		return nil, fmt.Errorf("failed to send command 0x%02x: %w", id, err)
	}

	payload, err := readMessage(rw)
	if err != nil {
		return nil, fmt.Errorf("no response to command 0x%02x: %w", id, err)
	}
	statusCmd, rest, err := firstCommand(payload)
	if err != nil {
		return nil, fmt.Errorf("bad response to command 0x%02x: %w", id, err)
	}

	st, err := parseStatus(statusCmd)
	if err != nil {
		return nil, err
	}
	if st.id != id {
		return nil, fmt.Errorf("status for command 0x%02x in response to 0x%02x", st.id, id)
	}
	if st.result != statusOK {
		return nil, fmt.Errorf("command 0x%02x rejected: %s", id, st.description)
	}
	return rest, nil
}
