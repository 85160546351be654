package dto

// DefinitionsDocument is the declarative event definitions source: a tree
// of versions, categories and events that the config loader turns into an
// immutable registry at startup.
type DefinitionsDocument struct {
	Prefix   string       `mapstructure:"prefix"`
	Versions []VersionDoc `mapstructure:"versions"`
}

// VersionDoc declares one registry version
type VersionDoc struct {
	Number       int           `mapstructure:"version"`
	IntroducedAt string        `mapstructure:"introduced_at"`
	RetiredAt    string        `mapstructure:"retired_at"`
	Categories   []CategoryDoc `mapstructure:"categories"`
}

// CategoryDoc declares one category within a version
type CategoryDoc struct {
	Name      string     `mapstructure:"name"`
	RetiredAt string     `mapstructure:"retired_at"`
	Events    []EventDoc `mapstructure:"events"`
}

// EventDoc declares one event within a category
type EventDoc struct {
	Name         string    `mapstructure:"name"`
	IntroducedAt string    `mapstructure:"introduced_at"`
	Description  string    `mapstructure:"description"`
	RetiredAt    string    `mapstructure:"retired_at"`
	Notes        []NoteDoc `mapstructure:"notes"`
}

// NoteDoc is one change-log entry on an event
type NoteDoc struct {
	At     string `mapstructure:"at"`
	Author string `mapstructure:"author"`
	Body   string `mapstructure:"body"`
}
