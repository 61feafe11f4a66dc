package apt

// Manager defines the package manager operations aptcron relies on.
// This interface allows for mocking APT in tests.
type Manager interface {
	// Refresh updates the package index from the configured sources
	Refresh() error

	// PendingUpgrades returns the installed packages whose version a full
	// upgrade would change
	PendingUpgrades() ([]Update, error)
}

// Update is a single pending package upgrade.
// Two updates are the same update only if all three fields match.
type Update struct {
	Name       string
	NewVersion string
	OldVersion string
}

// String renders the update the way it appears in reports
func (u Update) String() string {
	return u.Name + ": " + u.NewVersion + " -> " + u.OldVersion
}
