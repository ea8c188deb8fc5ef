package efm8

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/tocurd/go-efm8/protocol"
)

// failingPort 所有读写都失败
type failingPort struct {
	err error
}

func (p *failingPort) Read([]byte) (int, error) { return 0, p.err }
func (p *failingPort) Write([]byte) (int, error) { return 0, p.err }

func TestSendRejectsLength(t *testing.T) {
	for length := 0; length <= protocol.MaxPayload+10; length++ {
		if length >= protocol.MinPayload && length <= protocol.MaxPayload {
			continue
		}
		device := newSimDevice(mustLookup(0x30, 0x01))
		loader := New(device)

		_, err := loader.Send(protocol.CommandWrite, make([]byte, length))
		var lengthErr *protocol.LengthError
		if !errors.As(err, &lengthErr) {
			t.Fatalf("length %d: expected *protocol.LengthError, got %v", length, err)
		}
		if len(device.raw) != 0 {
			t.Fatalf("length %d: %d bytes reached the port", length, len(device.raw))
		}
	}
}

func TestSendEncoding(t *testing.T) {
	device := newSimDevice(mustLookup(0x30, 0x01))
	loader := New(device)

	res, err := loader.Send(protocol.CommandIdentify, []byte{0x30, 0x01})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != protocol.ACK {
		t.Errorf("response = %s, want ACK", res)
	}
	expected := []byte{'$', 0x03, 0x30, 0x30, 0x01}
	if !bytes.Equal(device.raw, expected) {
		t.Errorf("wire bytes = % X, want % X", device.raw, expected)
	}
}

func TestTraining(t *testing.T) {
	device := newSimDevice(mustLookup(0x30, 0x01))
	loader := New(device)

	if err := loader.Training(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(device.raw, []byte{0xFF, 0xFF}) {
		t.Errorf("wire bytes = % X, want FF FF", device.raw)
	}
	if len(device.exchanges) != 0 {
		t.Errorf("training produced %d exchanges", len(device.exchanges))
	}
}

func TestSendTimeout(t *testing.T) {
	device := newSimDevice(mustLookup(0x30, 0x01))
	device.silent = true
	loader := New(device)

	_, err := loader.Send(protocol.CommandSetup, protocol.SetupKey)
	if !errors.Is(err, TimeoutError) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
}

func TestSendIOError(t *testing.T) {
	cause := errors.New("device unplugged")
	loader := New(&failingPort{err: cause})

	_, err := loader.Send(protocol.CommandSetup, protocol.SetupKey)
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected *IOError, got %v", err)
	}
	if ioErr.Op != "write" {
		t.Errorf("IOError.Op = %q, want write", ioErr.Op)
	}
	if !errors.Is(err, cause) {
		t.Error("IOError does not wrap the port error")
	}
}

func TestSetupUnknownResponse(t *testing.T) {
	device := newSimDevice(mustLookup(0x30, 0x01))
	device.override = func(cmd protocol.Command, payload []byte) (protocol.Response, bool) {
		return protocol.Response(0x55), cmd == protocol.CommandSetup
	}
	loader := New(device)

	err := loader.Setup()
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected *ProtocolError, got %v", err)
	}
	if protoErr.Code != protocol.Response(0x55) {
		t.Errorf("Code = 0x%02X, want 0x55", byte(protoErr.Code))
	}
}

func TestVerify(t *testing.T) {
	device := newSimDevice(mustLookup(0x30, 0x01))
	copy(device.flash[0x100:], []byte{0x01, 0x02, 0x03})
	loader := New(device)
	if err := loader.Setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tests := []struct {
		name     string
		address  uint16
		data     []byte
		expected protocol.Response
	}{
		{name: "matching range", address: 0x100, data: []byte{0x01, 0x02, 0x03}, expected: protocol.ACK},
		{name: "single byte", address: 0x101, data: []byte{0x02}, expected: protocol.ACK},
		{name: "mismatch", address: 0x100, data: []byte{0x01, 0x02, 0x04}, expected: protocol.CRCError},
		{name: "beyond flash", address: 0x1FFF, data: []byte{0xFF, 0xFF}, expected: protocol.RangeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := loader.Verify(tt.address, tt.data)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res != tt.expected {
				t.Errorf("Verify() = %s, want %s", res, tt.expected)
			}
		})
	}

	last := device.exchanges[len(device.exchanges)-1]
	end := uint16(last.payload[2])<<8 | uint16(last.payload[3])
	if end != 0x2000 {
		t.Errorf("end address = 0x%04X, want 0x2000", end)
	}

	if _, err := loader.Verify(0x0000, nil); err == nil {
		t.Error("expected error for empty verify")
	}
	if _, err := loader.Verify(0xFFFF, []byte{1, 2}); err == nil {
		t.Error("expected error for range past 0xFFFF")
	}
}

func TestReset(t *testing.T) {
	device := newSimDevice(mustLookup(0x30, 0x01))
	loader := New(device)

	if err := loader.Reset(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resets := device.commands(protocol.CommandReset)
	if len(resets) != 1 || !bytes.Equal(resets[0].payload, []byte{0xFF, 0xFF}) {
		t.Errorf("reset exchanges = %+v", resets)
	}
}

func TestRunClosesOnce(t *testing.T) {
	tests := []struct {
		name     string
		override func(cmd protocol.Command, payload []byte) (protocol.Response, bool)
		fn       func(*Loader) error
		wantErr  bool
	}{
		{
			name: "protocol error mid run",
			override: func(cmd protocol.Command, payload []byte) (protocol.Response, bool) {
				return protocol.CRCError, cmd == protocol.CommandWrite
			},
			fn: func(loader *Loader) error {
				image := NewImage()
				image.SetBytes(0x200, []byte{1, 2, 3})
				return loader.Program(image)
			},
			wantErr: true,
		},
		{
			name: "success",
			fn: func(loader *Loader) error {
				_, err := loader.Identify()
				return err
			},
		},
		{
			name: "closed inside fn",
			fn: func(loader *Loader) error {
				return loader.Close()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := newSimDevice(mustLookup(0x30, 0x01))
			device.override = tt.override

			err := Run(device, tt.fn)
			if tt.wantErr {
				var protoErr *ProtocolError
				if !errors.As(err, &protoErr) {
					t.Fatalf("expected *ProtocolError, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if device.closes != 1 {
				t.Errorf("port closed %d times, want 1", device.closes)
			}
		})
	}
}

func TestCloseWithoutCloser(t *testing.T) {
	loader := New(struct{ io.ReadWriter }{new(bytes.Buffer)})
	if err := loader.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
