package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode"

	"golang.org/x/term"

	"github.com/abrezinsky/roundops/internal/logger"
)

var errNotTerminal = errors.New("stdin is not a terminal")

// keyboard maps single key presses to operator actions
type keyboard struct {
	log          *logger.SlogLogger
	dashboardURL string
	open         func(string) error
	quit         func()
	out          io.Writer
}

// start switches stdin to raw mode and listens in the background. The
// returned func restores the terminal.
func (k *keyboard) start(stdin *os.File) (func(), error) {
	fd := int(stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errNotTerminal
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	go k.listen(stdin)
	return func() { _ = term.Restore(fd, oldState) }, nil
}

// listen reads one byte at a time until the reader fails or quit is pressed
func (k *keyboard) listen(r io.Reader) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if !k.handle(buf[0]) {
			return
		}
	}
}

// handle runs the action for key and reports whether to keep listening
func (k *keyboard) handle(key byte) bool {
	switch unicode.ToLower(rune(key)) {
	case 'a':
		fmt.Fprintf(k.out, "%sOpening dashboard in browser...%s\n", cyan, reset)
		if err := k.open(k.dashboardURL); err != nil {
			fmt.Fprintf(k.out, "%sError opening browser: %v%s\n", red, err, reset)
		}
	case 'h':
		if k.log.IsHTTPLoggingEnabled() {
			k.log.DisableHTTPLogging()
			fmt.Fprintf(k.out, "%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			k.log.EnableHTTPLogging()
			fmt.Fprintf(k.out, "%sHTTP logging enabled%s\n", green, reset)
		}
	case 'l':
		next := logger.NextLevel(k.log.GetLevel())
		k.log.SetLevel(next)
		fmt.Fprintf(k.out, "%sLog level: %s%s%s\n", green, yellow, next, reset)
	case 'q', 0x03: // Ctrl+C arrives as a byte in raw mode
		k.quit()
		return false
	case '?':
		printKeyboardHelp(k.out)
	}
	return true
}

// crlfWriter turns bare line feeds into CRLF
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if bytes.IndexByte(p, '\n') < 0 {
		return c.w.Write(p)
	}
	var buf bytes.Buffer
	buf.Grow(len(p) + 8)
	for i, b := range p {
		if b == '\n' && (i == 0 || p[i-1] != '\r') {
			buf.WriteByte('\r')
		}
		buf.WriteByte(b)
	}
	if _, err := c.w.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}
