// Package storage moves uploaded files into their final on-disk location.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	relocateRetries = 3
	relocateBackoff = 100 * time.Millisecond
)

// renameFile is swapped in tests to simulate rename failures such as
// cross-device moves.
var renameFile = os.Rename

// Relocate moves src to dst. A rename is attempted first and retried a
// bounded number of times with a short backoff when the file is busy or
// locked (antivirus scanners, concurrent readers). When rename cannot work
// at all (cross-device link) or keeps failing transiently, it falls back to
// copy-then-delete, itself retried. Exhausting all attempts returns the
// last error; the upload must not silently lose the recording.
func Relocate(src, dst string) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = renameFile(src, dst)
		if err == nil {
			return nil
		}
		if attempt >= relocateRetries || !isTransient(err) {
			break
		}
		time.Sleep(relocateBackoff)
	}

	if !isTransient(err) && !isCrossDevice(err) {
		return fmt.Errorf("relocate %s: %w", src, err)
	}

	// Rename is not going to succeed. Copy the content over and delete the
	// source only once the copy is confirmed on disk, so the final state is
	// never two live copies.
	for attempt := 0; ; attempt++ {
		cerr := copyFile(src, dst)
		if cerr == nil {
			if rerr := os.Remove(src); rerr != nil {
				log.Warn().Err(rerr).Str("path", src).Msg("could not delete temp file after copy")
			}
			return nil
		}
		if attempt >= relocateRetries {
			return fmt.Errorf("relocate %s via copy: %w", src, cerr)
		}
		time.Sleep(relocateBackoff)
	}
}

// copyFile copies src to dst and fsyncs the result. The destination is
// removed again on any error so a partial copy is never left behind.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy data: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("sync target: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("close target: %w", err)
	}
	return nil
}

func isTransient(err error) bool {
	return errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.EPERM) ||
		errors.Is(err, syscall.EACCES)
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
