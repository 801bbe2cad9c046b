package storage

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	JarRepository
	SettingsRepository
	Close() error
}

// JarRepository stores per-owner jar snapshots. The jar service treats a
// snapshot as a whole: reads load every jar, writes replace every jar.
type JarRepository interface {
	// LoadJars returns the owner's jars in stored order. An owner with
	// no jars gets an empty slice, not an error.
	LoadJars(owner string) ([]JarRecord, error)

	// ReplaceJars atomically swaps the owner's entire jar snapshot.
	// Either every record is written or none are.
	ReplaceJars(owner string, jars []JarRecord) error
}

// SettingsRepository stores per-owner settings. Total income is the
// scalar used for percent/amount conversion; a jar operation reads it
// and never writes it.
type SettingsRepository interface {
	// GetSettings returns the owner's settings, or nil if none exist.
	GetSettings(owner string) (*UserSettings, error)

	// SaveSettings inserts or updates the owner's settings.
	SaveSettings(settings *UserSettings) error
}
