package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/cxd309/roadnav/internal/curve"
	"github.com/cxd309/roadnav/internal/graph"
	"github.com/cxd309/roadnav/internal/navigator"
)

const (
	frameInterval = 16 * time.Millisecond
	statusRows    = 2
	roadSamples   = 64

	keyStep     = 0.5  // longitudinal input per key press
	keyLateral  = 0.1  // lateral input per key press
	dragForward = 0.5  // longitudinal input per cell dragged
	dragLateral = 0.05 // lateral input per cell dragged
)

var (
	roadStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	agentStyle  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	haltStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

func DriveCmd(a *app) *cobra.Command {
	var (
		start    navigator.Start
		fraction float64
		logFile  string
	)
	c := &cobra.Command{
		Use:   "drive <scene>",
		Short: "drive one agent over a scene in the terminal",
		Long: "Arrow keys or w/a/s/d steer, a mouse drag does the same.\n" +
			"Esc, q or Ctrl-C quits.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Log lines would tear the screen, so they go to a file or nowhere.
			var w io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			a.log = a.cfg.Log.NewLogger(w)
			slog.SetDefault(a.log)

			g, err := loadGraph(a, args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("fraction") {
				start.Fraction = &fraction
			}
			nav, err := navigator.New(g, a.cfg.Navigator, start, navigator.WithLogger(a.log))
			if err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("terminal: %w", err)
			}
			defer screen.Fini()
			screen.EnableMouse()

			newDriver(screen, g, nav).run()
			return nil
		},
	}
	c.Flags().IntVar(&start.Segment, "segment", 0, "starting segment")
	c.Flags().Float64Var(&start.T, "t", 0, "starting parameter on the segment")
	c.Flags().Float64Var(&start.LateralOffset, "lateral", 0, "starting lateral offset")
	c.Flags().Float64Var(&fraction, "fraction", 0, "start this far (0 to 1) along the chain from --segment instead of at --t")
	c.Flags().StringVar(&logFile, "log-file", "", "append logs to this file")
	return c
}

// viewport maps the scene's X/Z plane onto terminal cells, Z pointing up.
type viewport struct {
	minX, maxX, minZ, maxZ float64
}

func sceneViewport(g *graph.Graph) viewport {
	v := viewport{minX: math.Inf(1), maxX: math.Inf(-1), minZ: math.Inf(1), maxZ: math.Inf(-1)}
	for _, s := range g.Segments() {
		for i := 0; i <= roadSamples; i++ {
			p := s.Curve.Position(float64(i) / roadSamples)
			v.minX, v.maxX = math.Min(v.minX, p.X), math.Max(v.maxX, p.X)
			v.minZ, v.maxZ = math.Min(v.minZ, p.Z), math.Max(v.maxZ, p.Z)
		}
	}
	if g.Len() == 0 {
		return viewport{minX: -1, maxX: 1, minZ: -1, maxZ: 1}
	}
	// Pad so roads on the bounds stay visible and flat scenes keep an extent.
	pad := math.Max(1, 0.05*math.Max(v.maxX-v.minX, v.maxZ-v.minZ))
	v.minX, v.maxX = v.minX-pad, v.maxX+pad
	v.minZ, v.maxZ = v.minZ-pad, v.maxZ+pad
	return v
}

// cell projects p into a w×h area.
func (v viewport) cell(p curve.Point, w, h int) (x, y int) {
	fx := (p[0] - v.minX) / (v.maxX - v.minX)
	fz := (p[2] - v.minZ) / (v.maxZ - v.minZ)
	x = int(math.Round(fx * float64(w-1)))
	y = h - 1 - int(math.Round(fz*float64(h-1)))
	return x, y
}

type driver struct {
	screen tcell.Screen
	graph  *graph.Graph
	nav    *navigator.Navigator
	view   viewport

	lon, lat   float64 // input accumulated since the last tick
	dragging   bool
	dragX      int
	dragY      int
	frame      navigator.Frame
	lastEvents []navigator.Event
}

func newDriver(screen tcell.Screen, g *graph.Graph, nav *navigator.Navigator) *driver {
	return &driver{
		screen: screen,
		graph:  g,
		nav:    nav,
		view:   sceneViewport(g),
		frame: navigator.Frame{
			Pose:       nav.Pose(),
			State:      nav.State(),
			Diagnostic: nav.State().Diagnostic(),
			Chain:      nav.ChainProgress(),
		},
	}
}

// pollEvents forwards screen events until the screen is finalised or done is
// closed. stopped is closed when the forwarding goroutine has exited.
func pollEvents(screen tcell.Screen, done <-chan struct{}) (events <-chan tcell.Event, stopped <-chan struct{}) {
	out := make(chan tcell.Event, 16)
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case out <- ev:
			case <-done:
				return
			}
		}
	}()
	return out, exited
}

func (d *driver) run() {
	done := make(chan struct{})
	defer close(done)
	events, _ := pollEvents(d.screen, done)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	last := time.Now()
	d.draw()
	for {
		select {
		case ev := <-events:
			if !d.handle(ev) {
				return
			}
		case now := <-ticker.C:
			d.tick(now.Sub(last).Seconds())
			last = now
			d.draw()
		}
	}
}

// handle applies one terminal event. It returns false when the user quits.
func (d *driver) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			d.lon += keyStep
		case tcell.KeyDown:
			d.lon -= keyStep
		case tcell.KeyLeft:
			d.lat -= keyLateral
		case tcell.KeyRight:
			d.lat += keyLateral
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'w':
				d.lon += keyStep
			case 's':
				d.lon -= keyStep
			case 'a':
				d.lat -= keyLateral
			case 'd':
				d.lat += keyLateral
			}
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		if ev.Buttons()&tcell.Button1 == 0 {
			d.dragging = false
			break
		}
		if d.dragging {
			d.lat += float64(x-d.dragX) * dragLateral
			d.lon -= float64(y-d.dragY) * dragForward
		}
		d.dragging, d.dragX, d.dragY = true, x, y
	case *tcell.EventResize:
		d.screen.Sync()
	}
	return true
}

// tick feeds the input gathered since the previous frame to the navigator.
func (d *driver) tick(dt float64) {
	in := navigator.NoInput()
	if d.lon != 0 || d.lat != 0 {
		in = navigator.Drag(d.lat, d.lon)
	}
	d.lon, d.lat = 0, 0
	d.frame = d.nav.Tick(in, dt)
	if len(d.frame.Events) > 0 {
		d.lastEvents = d.frame.Events
	}
}

func (d *driver) draw() {
	d.screen.Clear()
	w, h := d.screen.Size()
	mapH := h - statusRows
	if w < 2 || mapH < 2 {
		d.screen.Show()
		return
	}

	for _, s := range d.graph.Segments() {
		for i := 0; i <= roadSamples; i++ {
			p := curve.PointOf(s.Curve.Position(float64(i) / roadSamples))
			x, y := d.view.cell(p, w, mapH)
			d.screen.SetContent(x, y, '·', nil, roadStyle)
		}
	}
	if !d.frame.State.Halted {
		x, y := d.view.cell(d.frame.Pose.Position, w, mapH)
		d.screen.SetContent(x, y, '@', nil, agentStyle)
	}

	style := statusStyle
	if d.frame.State.Halted {
		style = haltStyle
	}
	status := d.frame.Diagnostic
	if p := d.frame.Chain; p != nil {
		status += fmt.Sprintf(" chain=%.0f%%", 100*p.Fraction)
	}
	d.text(0, mapH, status, style)
	d.text(0, mapH+1, eventLine(d.lastEvents), statusStyle)
	d.screen.Show()
}

func (d *driver) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		d.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func eventLine(events []navigator.Event) string {
	if len(events) == 0 {
		return "arrows/wasd or drag to move, q to quit"
	}
	line := "last:"
	for _, e := range events {
		line += fmt.Sprintf(" %s(%d→%d)", e.Kind, e.Segment, e.Neighbor)
	}
	return line
}
