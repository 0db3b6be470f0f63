package theme

// Mode is the theme selection state: a fixed manual theme or automatic
// day/night switching driven by sunrise/sunset.
type Mode string

const (
	ModeDay   Mode = "day"
	ModeNight Mode = "night"
	ModeAuto  Mode = "auto"
)

// Valid reports whether m is one of the three known modes
func (m Mode) Valid() bool {
	switch m {
	case ModeDay, ModeNight, ModeAuto:
		return true
	}
	return false
}

// ParseMode maps a persisted string to a Mode. Anything unrecognized,
// including the empty string, falls back to ModeAuto.
func ParseMode(s string) Mode {
	m := Mode(s)
	if !m.Valid() {
		return ModeAuto
	}
	return m
}
