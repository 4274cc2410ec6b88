package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fortuna/goaliestats/internal/logging"
)

// Diagnostics keeps the raw HTML of pages that yielded no rows so the
// markup can be inspected later. A nil or dir-less Diagnostics does
// nothing.
type Diagnostics struct {
	dir    string
	logger *logging.Logger
	now    func() time.Time
}

func NewDiagnostics(dir string, logger *logging.Logger) *Diagnostics {
	if logger == nil {
		logger = logging.Default()
	}
	return &Diagnostics{dir: dir, logger: logger.Component("diagnostics"), now: time.Now}
}

// Capture writes html to <dir>/<source>-<timestamp>.html and returns the
// path. Write failures are logged and an empty path is returned.
func (d *Diagnostics) Capture(source, url, html string) string {
	if d == nil || d.dir == "" {
		return ""
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		d.logger.Warn("cannot create debug dir", "dir", d.dir, "error", err)
		return ""
	}

	name := fmt.Sprintf("%s-%s.html", Slugify(source), d.now().UTC().Format("20060102T150405.000000000"))
	path := filepath.Join(d.dir, name)
	content := fmt.Sprintf("<!-- %s -->\n%s", url, html)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		d.logger.Warn("cannot write debug capture", "path", path, "error", err)
		return ""
	}

	d.logger.Info("saved page with no rows", "source", source, "url", url, "path", path)
	return path
}
