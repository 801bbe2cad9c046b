package storage

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated.
type MockRepository struct {
	jars     map[string][]JarRecord
	settings map[string]*UserSettings

	// Hooks for test assertions
	ReplaceJarsCalled  bool
	ReplaceJarsCalls   int
	LastReplacedOwner  string
	LastReplacedJars   []JarRecord
	SaveSettingsCalled bool

	// Error injection for testing error paths
	LoadJarsErr     error
	ReplaceJarsErr  error
	GetSettingsErr  error
	SaveSettingsErr error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		jars:     make(map[string][]JarRecord),
		settings: make(map[string]*UserSettings),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// LoadJars returns a copy of the owner's snapshot
func (m *MockRepository) LoadJars(owner string) ([]JarRecord, error) {
	if m.LoadJarsErr != nil {
		return nil, m.LoadJarsErr
	}
	records := m.jars[owner]
	copied := make([]JarRecord, len(records))
	copy(copied, records)
	return copied, nil
}

// ReplaceJars swaps the owner's snapshot in memory
func (m *MockRepository) ReplaceJars(owner string, jars []JarRecord) error {
	m.ReplaceJarsCalled = true
	m.ReplaceJarsCalls++
	m.LastReplacedOwner = owner
	if m.ReplaceJarsErr != nil {
		return m.ReplaceJarsErr
	}
	// Deep copy to avoid test mutations
	copied := make([]JarRecord, len(jars))
	copy(copied, jars)
	for i := range copied {
		copied[i].Owner = owner
		copied[i].Position = i
	}
	m.jars[owner] = copied
	m.LastReplacedJars = copied
	return nil
}

// GetSettings returns the owner's settings, nil when absent
func (m *MockRepository) GetSettings(owner string) (*UserSettings, error) {
	if m.GetSettingsErr != nil {
		return nil, m.GetSettingsErr
	}
	settings, ok := m.settings[owner]
	if !ok {
		return nil, nil
	}
	copied := *settings
	return &copied, nil
}

// SaveSettings stores the owner's settings in memory
func (m *MockRepository) SaveSettings(settings *UserSettings) error {
	m.SaveSettingsCalled = true
	if m.SaveSettingsErr != nil {
		return m.SaveSettingsErr
	}
	copied := *settings
	m.settings[settings.Owner] = &copied
	return nil
}
