package redis

// Key construction helpers for theme engine persisted state

// ThemeModeKey returns the key holding the persisted theme mode (string)
// Pattern: theme:mode
func ThemeModeKey() string {
	return "theme:mode"
}

// ThemeLastAppliedKey returns the key holding the last applied day/night flag (string)
// Pattern: theme:last_applied
func ThemeLastAppliedKey() string {
	return "theme:last_applied"
}
