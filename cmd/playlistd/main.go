package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"playlistcore/src/playlist"
	"playlistcore/src/scanner/tagscanner"
)

const confFile = "config.yaml"

var (
	build       = "%BUILD%"
	version     = "%VERSION%"
	versionDate = "%VERSION_DATE%"
)

type fileConfig struct {
	StorageDir    string `yaml:"storage_dir"`
	ScanThreads   int    `yaml:"scan_threads"`
	playlist.Config `yaml:",inline"`
}

func (conf *fileConfig) Validate() (errs []error) {
	if conf.StorageDir == "" {
		errs = append(errs, fmt.Errorf("config: `storage_dir` is required"))
	}
	return
}

func loadConfig(filename string) (*fileConfig, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	d := yaml.NewDecoder(fd)
	d.KnownFields(true)
	conf := fileConfig{Config: playlist.DefaultConfig(), ScanThreads: playlist.ScanThreads}
	if err := d.Decode(&conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func main() {
	defaultLogLevel := "warn"
	if build == "debug" {
		defaultLogLevel = "debug"
	}

	configFile := flag.String("conf", confFile, "Path to the configuration file")
	printVersion := flag.Bool("version", false, "Print version information and exit")
	logLevel := flag.String("log", defaultLogLevel, "Sets the log level. [debug, info, warn, error]")
	flag.Parse()

	if ll, err := log.ParseLevel(*logLevel); err != nil {
		log.Fatalf("Could not parse log level: %v", err)
	} else {
		log.SetLevel(ll)
	}

	if *printVersion {
		fmt.Printf("Version: %v (%v)\n", version, versionDate)
		fmt.Printf("Build: %v\n", build)
		return
	}

	log.Infof("Version: %v (%v)", version, build)
	conf, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if errs := conf.Validate(); len(errs) > 0 {
		log.Fatalf("Could not load config: %v", errs)
	}

	storeDir := strings.Replace(conf.StorageDir, "~", os.Getenv("HOME"), 1)
	log.Infof("Using %q for storage", storeDir)

	hooks := playlist.NewEmitterHooks()
	logHooks(hooks)

	pb := newLoggingPlayback()
	mgr := playlist.NewManager(playlist.ManagerOptions{
		DataDir:  storeDir,
		Hooks:    hooks,
		Scanner:  tagscanner.New(conf.ScanThreads),
		Playback: pb,
		Config:   conf.Config,
	})
	pb.mgr = mgr

	if err := mgr.Init(); err != nil {
		log.Fatalf("Could not initialize playlist manager: %v", err)
	}
	if err := mgr.LoadState(); err != nil {
		log.Warnf("Could not restore state from %q: %v", path.Join(storeDir, "playlist-state"), err)
	}
	mgr.EnableScan(true)
	mgr.Resume()

	log.Infof("playlistd ready with %s playlists", humanize.Comma(int64(mgr.NPlaylists())))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("Shutting down")
	resumeTime, resumePaused := pb.lastKnownPosition()
	if err := mgr.SaveState(resumeTime, resumePaused); err != nil {
		log.Errorf("Could not save state: %v", err)
	}
	mgr.StopPlaying()
	mgr.End()
}

func logHooks(hooks *playlist.EmitterHooks) {
	ch := hooks.Listen(context.Background())
	go func() {
		for ev := range ch {
			switch e := ev.(type) {
			case playlist.UpdateEvent:
				log.WithField("level", e.Level).Debug("playlist update")
			case playlist.ScanCompleteEvent:
				log.WithField("playlist", e.Playlist.ID()).Info("scan complete")
			case playlist.PlaybackBeginEvent:
				log.Debug("playback begin")
			case playlist.PlaybackStopEvent:
				log.Debug("playback stop")
			}
		}
	}()
}

// loggingPlayback is a minimal stand-in for a real decoding backend,
// wired only so playlistd has something to exercise SetPlaying against.
// A production deployment supplies its own playlist.Playback. mgr is set
// once, right after construction, since the Manager does not exist yet
// when NewManager needs a Playback to hand it.
type loggingPlayback struct {
	mgr *playlist.Manager

	started  time.Time
	filename string
	paused   bool
}

func newLoggingPlayback() *loggingPlayback {
	return &loggingPlayback{}
}

// Begin runs on its own goroutine per the Playback contract, so it is
// free to call back into PlaybackEntryRead, which blocks running the
// for-playback scan synchronously (§4.6) before handing back the
// DecodeInfo this backend would open the file with.
func (p *loggingPlayback) Begin(serial uint64, filename string, resumeTime time.Duration, paused bool) {
	info, ok := p.mgr.PlaybackEntryRead(serial)
	if !ok {
		log.WithField("serial", serial).Debug("playback begin superseded before decode info was ready")
		return
	}
	log.WithFields(log.Fields{"serial": serial, "file": info.Filename}).Info("playback begin")
	if info.Err != nil {
		log.WithField("file", info.Filename).Warnf("playback: scan failed: %v", info.Err)
	}
	p.filename, p.paused, p.started = filename, paused, time.Now().Add(-resumeTime)
}

func (p *loggingPlayback) End() {
	log.Info("playback end")
	p.filename = ""
}

func (p *loggingPlayback) lastKnownPosition() (time.Duration, bool) {
	if p.filename == "" {
		return 0, false
	}
	return time.Since(p.started), p.paused
}

var _ playlist.Playback = (*loggingPlayback)(nil)
