// Package browser launches URLs in the user's browser.
package browser

import (
	"github.com/charmbracelet/log"
	"github.com/skratchdot/open-golang/open"

	"github.com/idiomattic/otot/internal/logger"
)

// Opener abstracts the OS-level launch so tests can substitute a recorder.
type Opener interface {
	// Open launches url, in the named browser when browser is non-empty.
	Open(url, browser string) error
}

// SystemOpener launches URLs with the operating system's opener.
type SystemOpener struct {
	log *log.Logger
}

var _ Opener = (*SystemOpener)(nil)

// NewSystemOpener returns an Opener backed by the OS default mechanism.
func NewSystemOpener() *SystemOpener {
	return &SystemOpener{log: logger.New("browser")}
}

// Open implements Opener.
func (o *SystemOpener) Open(url, browser string) error {
	if browser != "" {
		o.log.Debug("opening link", "browser", browser, "url", url)
		return open.RunWith(url, browser)
	}
	o.log.Debug("opening link with default browser", "url", url)
	return open.Run(url)
}
