// Package tagscanner is a concrete playlist.Scanner backed by
// github.com/dhowden/tag. It is a collaborator, not part of the core: the
// playlist package only ever sees it through the Scanner interface.
package tagscanner

import (
	"fmt"
	"os"

	"github.com/dhowden/tag"

	log "github.com/sirupsen/logrus"

	"playlistcore/src/playlist"
)

// Scanner reads ID3/Vorbis/FLAC/MP4 tags off disk. It bounds its own
// background concurrency independently of the ScanScheduler's pool size,
// since tag.ReadFrom is cheap enough (a handful of reads near the start of
// the file) to run with modest additional fan-out.
type Scanner struct {
	workers chan struct{}
}

// New returns a Scanner allowing up to maxConcurrent reads in flight.
func New(maxConcurrent int) *Scanner {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Scanner{workers: make(chan struct{}, maxConcurrent)}
}

// Scan reads req.Filename's tags on its own goroutine and reports the
// result through done, satisfying playlist.Scanner's async contract.
func (s *Scanner) Scan(req playlist.ScanRequest, done func(playlist.ScanResult)) {
	s.workers <- struct{}{}
	go func() {
		defer func() { <-s.workers }()
		done(s.read(req))
	}()
}

// ScanSync reads req.Filename's tags on the calling goroutine, for the
// for-playback handoff described in §4.6.
func (s *Scanner) ScanSync(req playlist.ScanRequest) playlist.ScanResult {
	return s.read(req)
}

func (s *Scanner) read(req playlist.ScanRequest) playlist.ScanResult {
	f, err := os.Open(req.Filename)
	if err != nil {
		return playlist.ScanResult{Err: fmt.Errorf("%w: %v", playlist.ErrScanFailure, err)}
	}
	defer f.Close()

	md, err := tag.ReadFrom(f)
	if err != nil {
		log.WithField("file", req.Filename).Debugf("tagscanner: no readable tags: %v", err)
		return playlist.ScanResult{
			Tuple: playlist.Tuple{Valid: true, Title: titleFromFilename(req.Filename)},
		}
	}

	track, total := md.Track()
	disc, totalDisc := md.Disc()
	tup := playlist.Tuple{
		Valid:       true,
		Artist:      md.Artist(),
		Title:       md.Title(),
		Album:       md.Album(),
		AlbumArtist: md.AlbumArtist(),
		Genre:       md.Genre(),
		AlbumTrack:  trackString(track, total),
		AlbumDisc:   trackString(disc, totalDisc),
	}
	if tup.Title == "" {
		tup.Title = titleFromFilename(req.Filename)
	}
	return playlist.ScanResult{Tuple: tup}
}

func trackString(n, total int) string {
	if n == 0 {
		return ""
	}
	if total == 0 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%d/%d", n, total)
}

func titleFromFilename(filename string) string {
	base := filename
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '/' {
			base = filename[i+1:]
			break
		}
	}
	return base
}

var _ playlist.Scanner = (*Scanner)(nil)
