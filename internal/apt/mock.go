package apt

// MockRunner implements Manager for testing.
// Each method can be configured with a custom function to control behavior.
type MockRunner struct {
	RefreshFunc         func() error
	PendingUpgradesFunc func() ([]Update, error)

	// RefreshCalls and ListCalls count invocations
	RefreshCalls int
	ListCalls    int
}

// NewMockRunner creates a MockRunner reporting the given updates
func NewMockRunner(updates ...Update) *MockRunner {
	return &MockRunner{
		PendingUpgradesFunc: func() ([]Update, error) {
			return updates, nil
		},
	}
}

// Refresh updates the package index
func (m *MockRunner) Refresh() error {
	m.RefreshCalls++
	if m.RefreshFunc != nil {
		return m.RefreshFunc()
	}
	return nil
}

// PendingUpgrades returns the configured updates
func (m *MockRunner) PendingUpgrades() ([]Update, error) {
	m.ListCalls++
	if m.PendingUpgradesFunc != nil {
		return m.PendingUpgradesFunc()
	}
	return nil, nil
}

var _ Manager = (*MockRunner)(nil)
var _ Manager = (*Runner)(nil)
