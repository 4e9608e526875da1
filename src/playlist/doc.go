// Package playlist implements the playlist manager of an audio player: a
// process-wide, thread-safe registry of ordered playlists, a background
// metadata scanner that opportunistically reads tags for each entry, and a
// playback coordinator that binds "currently playing entry" to one
// playlist position and one scan request.
//
// The audio decoding pipeline, the tag reader, the title-format engine and
// the filesystem I/O for playlist files are treated as external
// collaborators. This package only defines the interfaces it needs from
// them (Playback, Scanner) and a default in-memory implementation of the
// PlaylistData it consumes.
package playlist
