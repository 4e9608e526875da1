package playlist

// Config holds the configuration keys the core observes, per the external
// interfaces list. generic_title_format is stored verbatim: the engine
// that interprets it is an external collaborator and is not implemented
// here.
type Config struct {
	MetadataOnPlay      bool   `yaml:"metadata_on_play" json:"metadata_on_play"`
	GenericTitleFormat  string `yaml:"generic_title_format" json:"generic_title_format"`
	LeadingZero         bool   `yaml:"leading_zero" json:"leading_zero"`
	ShowHours           bool   `yaml:"show_hours" json:"show_hours"`
	MetadataFallbacks   bool   `yaml:"metadata_fallbacks" json:"metadata_fallbacks"`
	ShowNumbersInPl     bool   `yaml:"show_numbers_in_pl" json:"show_numbers_in_pl"`
	AlwaysResumePaused  bool   `yaml:"always_resume_paused" json:"always_resume_paused"`
}

// DefaultConfig returns the configuration the teacher's own config loader
// would produce for an unconfigured install: scanning runs eagerly rather
// than only around playback.
func DefaultConfig() Config {
	return Config{
		MetadataOnPlay: false,
	}
}
