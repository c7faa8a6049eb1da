// Command termshot plays the hoop shot game in a terminal with the mouse.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/vladimirvolkov/hoopshot/internal/game"
	"github.com/vladimirvolkov/hoopshot/internal/logging"
	"github.com/vladimirvolkov/hoopshot/internal/term"
)

const (
	frameInterval = 16 * time.Millisecond // ~60 FPS
	maxFrameDelta = 0.1                   // seconds; keeps Euler steps small after a stall
)

type Game struct {
	screen tcell.Screen
	flight *game.Flight
	log    *zap.Logger

	score    int
	attempts int
	status   string

	buttons  tcell.ButtonMask
	lastTick time.Time
}

func NewGame(course game.Course, log *zap.Logger) (*Game, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	g := &Game{screen: screen, log: log, lastTick: time.Now()}
	g.flight = game.NewFlight(course, func() {
		g.score++
		g.status = "score!"
		g.log.Info("scored", zap.Int("score", g.score))
	})
	return g, nil
}

func (g *Game) pointer(ev *tcell.EventMouse) game.PointerInput {
	col, row := ev.Position()
	cols, rows := g.screen.Size()
	x, y := term.CellToPointer(col, row)
	return game.PointerInput{X: x, Y: y, Viewport: term.Viewport(cols, rows)}
}

func (g *Game) handleMouse(ev *tcell.EventMouse) {
	in := g.pointer(ev)
	pressed := ev.Buttons()&tcell.Button1 != 0 && g.buttons&tcell.Button1 == 0
	g.buttons = ev.Buttons()

	cam := g.flight.Course().Camera
	if _, _, err := in.Apply(g.flight, cam); err != nil && !errors.Is(err, game.ErrInFlight) {
		g.log.Debug("aim rejected", zap.Error(err))
	}
	if !pressed {
		return
	}

	in.Click = true
	launched, l, err := in.Apply(g.flight, cam)
	switch {
	case launched:
		g.attempts++
		g.status = ""
		g.log.Debug("launched", zap.Stringer("velocity", l.Velocity), zap.Float64("duration", l.Duration))
	case errors.Is(err, game.ErrInFlight):
	default:
		g.status = "can't shoot there"
	}
}

func (g *Game) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
	case *tcell.EventMouse:
		g.handleMouse(ev)
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

func (g *Game) update(now time.Time) {
	dt := min(now.Sub(g.lastTick).Seconds(), maxFrameDelta)
	g.lastTick = now
	if g.flight.Tick(dt) == game.OutcomeMissed {
		g.status = "miss"
	}
}

func (g *Game) draw() {
	g.screen.Clear()
	term.Draw(g.screen, g.flight, term.HUD{Score: g.score, Attempts: g.attempts, Status: g.status})
	g.screen.Show()
}

func (g *Game) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev, ok := <-eventChan:
			if !ok || !g.handleInput(ev) {
				return
			}
		case now := <-ticker.C:
			g.update(now)
			g.draw()
		}
	}
}

const hoopDepthUsage = "aim on the hoop's depth plane. The built-in court puts the hoop behind the\n" +
	"launch plane, so -hoop-depth=false (aim on the launch point's depth, the server default)\n" +
	"cannot score there"

type options struct {
	coursePath string
	logPath    string
	hoopDepth  bool
}

func parseFlags(args []string, out io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("termshot", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&opts.coursePath, "course", "", "YAML course file (default: built-in court)")
	fs.StringVar(&opts.logPath, "log", "", "write debug logs to this file")
	fs.BoolVar(&opts.hoopDepth, "hoop-depth", true, hoopDepthUsage)
	err := fs.Parse(args)
	return opts, err
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err == nil {
		err = run(opts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "termshot: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	log := zap.NewNop()
	if opts.logPath != "" {
		var err error
		if log, err = logging.New("debug", opts.logPath); err != nil {
			return err
		}
		defer log.Sync()
	}

	course := game.DefaultCourse()
	if opts.coursePath != "" {
		var err error
		if course, err = game.LoadCourseFile(opts.coursePath); err != nil {
			return err
		}
	}
	course.AimAtHoopDepth = opts.hoopDepth

	g, err := NewGame(course, log)
	if err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer g.screen.Fini()

	g.run()
	return nil
}
