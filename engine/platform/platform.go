package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Platform provides the host services the engine needs: a monotonic
// clock, frame sleeping and filesystem access. The engine runs
// headless, so there is no window or input pump here.
type Platform struct {
	startTime time.Time
}

func New() (*Platform, error) {
	return &Platform{}, nil
}

func (p *Platform) Startup(applicationName string) error {
	p.startTime = time.Now()
	return nil
}

func (p *Platform) Shutdown() error {
	return nil
}

// GetAbsoluteTime returns the seconds elapsed since Startup.
func (p *Platform) GetAbsoluteTime() float64 {
	return time.Since(p.startTime).Seconds()
}

// Sleep blocks the calling goroutine for the given milliseconds.
func (p *Platform) Sleep(ms int64) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// EnsureDirectory creates the directory path, including parents, if it
// does not already exist.
func (p *Platform) EnsureDirectory(path string) error {
	if path == "" {
		return fmt.Errorf("empty directory path")
	}
	if err := os.MkdirAll(filepath.Clean(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
