package model

import "strings"

// MountingMode selects how the panel rows are oriented over the day.
// Keep these values stable; they appear in config files and archived runs.
type MountingMode string

const (
	MountingFixed      MountingMode = "fixed"
	MountingSingleAxis MountingMode = "single_axis"
)

// ParseMountingMode accepts the canonical names plus the boolean spellings used
// by the two-column inputs files. Empty means fixed.
func ParseMountingMode(s string) (MountingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fixed", "false", "0":
		return MountingFixed, nil
	case "single_axis", "tracking", "true", "1":
		return MountingSingleAxis, nil
	default:
		return "", invalid("mounting", "unknown mode "+s)
	}
}
