package driven

// ConfigStore is a flat key-value view of the configuration file. Nested
// tables are addressed with dotted keys such as "remote.url".
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	// Typed getters return the zero value for a missing key or a value of
	// another type.
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set changes a value. File-backed stores write through; others hold
	// it until Save.
	Set(key string, value any) error
	Save() error

	// Load re-reads the backing file, discarding unsaved changes.
	Load() error

	// Keys lists every set key in sorted order.
	Keys() []string

	// Path returns the backing file path.
	Path() string
}
