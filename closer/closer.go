// Package closer provides small helpers for releasing several resources
// together, such as a decompressor stacked on top of an open file.
package closer

import (
	"errors"
	"io"
	"sync"
)

type customCloser struct {
	closeFn func() error
}

// CustomCloser creates an io.Closer from a cleanup function. Returns nil if
// closeFn is nil.
func CustomCloser(closeFn func() error) io.Closer {
	if closeFn == nil {
		return nil
	}

	return &customCloser{closeFn: closeFn}
}

func (c *customCloser) Close() error {
	return c.closeFn()
}

// Closer collects io.Closers and closes them all at once, in the order they
// were added.
//
// Example usage:
//
//	c := closer.NewCloser(file)
//	c.Add(decoder)
//	defer c.Close()
type Closer struct {
	closers []io.Closer
}

func NewCloser(closers ...io.Closer) *Closer {
	return &Closer{closers: closers}
}

// Add registers c. Nil closers are skipped when closing. Add is not
// thread-safe.
func (c *Closer) Add(closer io.Closer) {
	c.closers = append(c.closers, closer)
}

// Close closes every registered closer, even when some fail, and joins
// their errors.
func (c *Closer) Close() error {
	var errs []error

	for _, closer := range c.closers {
		if closer == nil {
			continue
		}

		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

type closeOnce struct {
	closer io.Closer
	once   sync.Once
	err    error
}

// CloseOnce wraps closer so that only the first Close reaches it. Later
// calls return the first call's error.
func CloseOnce(closer io.Closer) io.Closer {
	if closer == nil {
		return nil
	}

	return &closeOnce{closer: closer}
}

func (c *closeOnce) Close() error {
	c.once.Do(func() {
		c.err = c.closer.Close()
	})

	return c.err
}

type readCloser struct {
	io.Reader
	io.Closer
}

// ForReader pairs a reader with the closer that releases it and everything
// under it.
func ForReader(r io.Reader, c io.Closer) io.ReadCloser {
	if c == nil {
		return io.NopCloser(r)
	}

	return readCloser{Reader: r, Closer: CloseOnce(c)}
}
