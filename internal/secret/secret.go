// Package secret holds the one value clipotp is willing to disclose.
//
// A Secret keeps its bytes locked in RAM where the platform allows it and
// zeroes them on Wipe. It never renders its contents through fmt or slog.
package secret

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/term"
)

// ErrEmpty is returned by Read when no bytes were supplied.
var ErrEmpty = errors.New("secret is empty")

const redacted = "[REDACTED]"

// Secret is an immutable byte payload.
type Secret struct {
	data   []byte
	locked bool
}

// New takes ownership of data. The caller must not use data afterwards.
func New(data []byte) *Secret {
	s := &Secret{data: data}
	// mlock is best effort: it fails without CAP_IPC_LOCK once RLIMIT_MEMLOCK
	// is exhausted, and the secret is still usable unlocked.
	s.locked = lock(s.data) == nil
	return s
}

// Bytes returns the payload. The returned slice must not be modified or
// retained past Wipe.
func (s *Secret) Bytes() []byte { return s.data }

// Len returns the payload length in bytes.
func (s *Secret) Len() int { return len(s.data) }

// Locked reports whether the payload is locked into RAM.
func (s *Secret) Locked() bool { return s.locked }

// Wipe zeroes the payload and releases the memory lock. It is safe to call
// more than once.
func (s *Secret) Wipe() {
	if s.data == nil {
		return
	}
	wipe(s.data)
	if s.locked {
		unlock(s.data)
		s.locked = false
	}
	s.data = nil
}

func (s *Secret) String() string { return redacted }

// GoString keeps %#v from dumping the payload.
func (s *Secret) GoString() string { return redacted }

// LogValue implements slog.LogValuer.
func (s *Secret) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("value", redacted),
		slog.Int("len", len(s.data)),
		slog.Bool("locked", s.locked),
	)
}

// ReadOptions controls how Read consumes its input.
type ReadOptions struct {
	// TrimNewline strips a single trailing "\n" or "\r\n" from piped input.
	TrimNewline bool

	// Prompt receives the "Secret: " prompt when reading from a terminal.
	// Nil disables the prompt.
	Prompt io.Writer
}

// Read loads the secret from r. Piped input is consumed up to EOF. When r is a
// terminal a single line is read with echo disabled.
func Read(r io.Reader, opts ReadOptions) (*Secret, error) {
	var (
		data []byte
		err  error
	)
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		data, err = readTerminal(f, opts.Prompt)
	} else {
		data, err = readAll(r)
		if err == nil && opts.TrimNewline {
			data = trimNewline(data)
		}
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return New(data), nil
}

func readTerminal(f *os.File, prompt io.Writer) ([]byte, error) {
	if prompt != nil {
		fmt.Fprint(prompt, "Secret: ")
		defer fmt.Fprintln(prompt)
	}
	data, err := term.ReadPassword(int(f.Fd()))
	if err != nil {
		return nil, fmt.Errorf("read secret from terminal: %w", err)
	}
	return data, nil
}

// readAll is io.ReadAll that zeroes every intermediate buffer it discards.
func readAll(r io.Reader) ([]byte, error) {
	buf := make([]byte, 0, 512)
	for {
		if len(buf) == cap(buf) {
			grown := make([]byte, len(buf), 2*cap(buf))
			copy(grown, buf)
			wipe(buf)
			buf = grown
		}
		n, err := r.Read(buf[len(buf):cap(buf)])
		buf = buf[:len(buf)+n]
		if errors.Is(err, io.EOF) {
			return buf, nil
		}
		if err != nil {
			wipe(buf)
			return nil, fmt.Errorf("read secret: %w", err)
		}
	}
}

func trimNewline(data []byte) []byte {
	if t, ok := bytes.CutSuffix(data, []byte("\r\n")); ok {
		data[len(data)-2], data[len(data)-1] = 0, 0
		return t
	}
	if t, ok := bytes.CutSuffix(data, []byte("\n")); ok {
		data[len(data)-1] = 0
		return t
	}
	return data
}

func wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}
