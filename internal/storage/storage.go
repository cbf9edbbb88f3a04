// Package storage holds the ObjectStore backends for the upload namespace.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// validName rejects anything that is not a single flat path element
func validName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid object name %q", name)
	}
	return nil
}

// ctxReader stops a long copy once ctx is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
