package apt

import (
	"github.com/obentoo/aptcron/internal/common/logger"
)

// PackageManagerError reports a failed index refresh or upgrade listing
type PackageManagerError struct {
	Op  string
	Err error
}

func (e *PackageManagerError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PackageManagerError) Unwrap() error {
	return e.Err
}

// Kind names the error class in reports
func (e *PackageManagerError) Kind() string {
	return "PackageManagerError"
}

// Lister obtains the current candidate upgrade set from a Manager
type Lister struct {
	manager Manager
}

// NewLister creates a Lister backed by the given package manager
func NewLister(manager Manager) *Lister {
	return &Lister{manager: manager}
}

// ListUpdates returns the pending upgrades, refreshing the index first if
// refresh is set. A refresh failure aborts the listing.
func (l *Lister) ListUpdates(refresh bool) ([]Update, error) {
	if refresh {
		logger.Debug("refreshing package index")
		if err := l.manager.Refresh(); err != nil {
			return nil, &PackageManagerError{Op: "refresh package index", Err: err}
		}
	}

	updates, err := l.manager.PendingUpgrades()
	if err != nil {
		return nil, &PackageManagerError{Op: "list pending upgrades", Err: err}
	}

	logger.Debug("found %d pending upgrade(s)", len(updates))
	return updates, nil
}
