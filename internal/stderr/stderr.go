//go:build !windows

// Package stderr diverts file descriptor 2 while the player screen is shown.
// The audio backend writes diagnostics straight to fd 2, bypassing
// os.Stderr, which would otherwise tear the screen.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"syscall"
)

// Capture is an active redirection of fd 2.
type Capture struct {
	orig int
	r, w *os.File
	done chan struct{}
}

// Start redirects fd 2 into a pipe and hands every non-empty line to sink
// from a background goroutine. When Start fails fd 2 is left untouched.
func Start(sink func(line string)) (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	fd := int(os.Stderr.Fd())
	orig, err := syscall.Dup(fd)
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	if err := syscall.Dup2(int(w.Fd()), fd); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{orig: orig, r: r, w: w, done: make(chan struct{})}
	go func() {
		defer close(c.done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				sink(line)
			}
		}
	}()
	return c, nil
}

// Stop restores fd 2 and waits for the pending lines to be delivered.
func (c *Capture) Stop() error {
	if c == nil {
		return nil
	}
	err := syscall.Dup2(c.orig, int(os.Stderr.Fd()))
	_ = syscall.Close(c.orig)
	// fd 2 held the other write end; both are gone now, so the reader sees EOF.
	_ = c.w.Close()
	<-c.done
	_ = c.r.Close()
	return err
}
