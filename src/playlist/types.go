package playlist

import "fmt"

// UpdateLevel describes the severity of a pending playlist update. Structure
// subsumes Metadata.
type UpdateLevel int

const (
	UpdateNone UpdateLevel = iota
	UpdateMetadata
	UpdateStructure
)

func (l UpdateLevel) String() string {
	switch l {
	case UpdateNone:
		return "none"
	case UpdateMetadata:
		return "metadata"
	case UpdateStructure:
		return "structure"
	default:
		return fmt.Sprintf("UpdateLevel(%d)", int(l))
	}
}

func maxLevel(a, b UpdateLevel) UpdateLevel {
	if a > b {
		return a
	}
	return b
}

// ScanStatus tracks the scan lifecycle of a single playlist.
type ScanStatus int

const (
	NotScanning ScanStatus = iota
	ScanActive
	ScanEnding
)

func (s ScanStatus) String() string {
	switch s {
	case NotScanning:
		return "not-scanning"
	case ScanActive:
		return "active"
	case ScanEnding:
		return "ending"
	default:
		return fmt.Sprintf("ScanStatus(%d)", int(s))
	}
}

// ResumeState is the persisted Stop/Play/Pause choice attached to a
// playlist row in the state file.
type ResumeState int

const (
	ResumeStop ResumeState = iota
	ResumePlay
	ResumePause
)

// UpdateRecord accumulates the level and affected entry range of a pending
// (or last-applied) update for one playlist.
type UpdateRecord struct {
	Level  UpdateLevel
	At     int
	Number int
}

func (r *UpdateRecord) queue(level UpdateLevel, at, number int) {
	if number > 0 {
		if r.Number == 0 {
			r.At, r.Number = at, number
		} else {
			lo := min(r.At, at)
			hi := max(r.At+r.Number, at+number)
			r.At, r.Number = lo, hi-lo
		}
	}
	r.Level = maxLevel(r.Level, level)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
