// Command blob-sandbox fires paint blobs into a small arena and draws them in the terminal
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/paintblob/audio"
	"github.com/lixenwraith/paintblob/config"
	"github.com/lixenwraith/paintblob/engine"
	"github.com/lixenwraith/paintblob/world"
)

const frameInterval = 16 * time.Millisecond

var (
	configFlag = flag.String("config", "", "Tunables file (.toml, .yaml), watched for changes")
	debugFlag  = flag.Bool("debug", false, "Write debug logs to logs/blob-sandbox.log")
	rateFlag   = flag.Float64("rate", 30, "Blobs fired per second")
	seedFlag   = flag.Uint64("seed", 1, "Spawn randomness seed")
	muteFlag   = flag.Bool("mute", false, "Disable audio cues")
)

func main() {
	flag.Parse()

	if logFile := setupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}
	logger := slog.Default()

	tun, err := config.LoadAuto(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load tunables: %v\n", err)
		os.Exit(1)
	}
	store := config.NewStore(tun)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	crashScreen = screen
	defer screen.Fini()
	defer func() {
		handleCrash(recover())
	}()

	audioCfg := audio.LoadConfig()
	if *muteFlag {
		audioCfg.Enabled = false
	}
	player := audio.NewPlayer(audioCfg)

	services := newHub(logger)
	must(services.register(&audioService{player: player, log: logger}))
	if *configFlag != "" {
		must(services.register(&watcherService{path: *configFlag, store: store, log: logger}))
	}
	if err := services.startAll(); err != nil {
		logger.Warn("services failed to start", "err", err)
	}
	defer services.stopAll()

	clock := engine.NewClock(nil)
	sb := newSandbox(store, logger, *seedFlag, *rateFlag)
	v := newView(screen)
	logger.Info("sandbox started", "rate", *rateFlag, "seed", *seedFlag, "config", *configFlag)

	events := make(chan tcell.Event, 64)
	goSafe(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	})

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			if !handleEvent(ev, sb, clock, v) {
				logger.Info("sandbox stopped", "blobs", len(sb.blobs))
				return
			}
		case <-ticker.C:
			if !clock.IsPaused() {
				sb.step(clock.Seconds())
			}
			player.Drain(sb.queue)
			played, throttled := player.Stats()
			v.draw(sb, clock.IsPaused(), played, throttled)
		}
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// handleEvent applies one input event, returns false to quit
func handleEvent(ev tcell.Event, sb *sandbox, clock *engine.Clock, v *view) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.resize()
		v.screen.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				sb.fire(burstSize, clock.Seconds())
			case 'p':
				if clock.IsPaused() {
					clock.Resume()
				} else {
					clock.Pause()
				}
			case 'c':
				sb.toggleCleanser()
			case 'b':
				sb.reverseBeam()
			case 't':
				sb.togglePortals()
			case 'r':
				sb.reset()
			case '1':
				sb.setPower(world.PowerBounce)
			case '2':
				sb.setPower(world.PowerSpeed)
			case '3':
				sb.setPower(world.PowerPortal)
			case '4':
				sb.setPower(world.PowerReflect)
			case '0':
				sb.setPower(world.PowerNone)
			}
		}
	}
	return true
}
