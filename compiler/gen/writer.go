package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dave/jennifer/jen"
)

// Metrics tracks generation performance.
type Metrics struct {
	mu             sync.Mutex
	FilesGenerated int
	TotalBytes     int64
	RenderTime     time.Duration
}

func (m *Metrics) add(bytes int, render time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FilesGenerated++
	m.TotalBytes += int64(bytes)
	m.RenderTime += render
}

// writeFile renders f and writes it under the target directory. Nothing is
// written when rendering fails.
func (g *Generator) writeFile(f *jen.File, filename string) (string, error) {
	start := time.Now()
	var buf bytes.Buffer
	// Jennifer renders with correct imports and formatting
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	render := time.Since(start)

	path := filepath.Join(g.cfg.Target, filename)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	g.metrics.add(buf.Len(), render)
	return path, nil
}
