package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/flavioheleno/ledmatrix/internal/app"
	"github.com/flavioheleno/ledmatrix/internal/config"
	"github.com/flavioheleno/ledmatrix/rgb24"
)

// NewSimCommand builds the desktop simulator command.
func NewSimCommand(loader *config.Loader) *cobra.Command {
	v := loader.Viper()
	var bindErr error

	cmd := &cobra.Command{
		Use:   "sim [text...]",
		Short: "Show the matrix in a desktop window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bindErr != nil {
				return bindErr
			}
			cfg, err := loadConfig(loader, args)
			if err != nil {
				return err
			}

			logger := pslog.Ctx(cmd.Context()).With("component", "sim")
			p := newSimPanel(cfg.Display.Width, cfg.Display.Height)
			a, err := app.New(cfg, p, logger)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			done := make(chan error, 1)
			go func() {
				done <- a.Run(ctx, os.Stdin)
			}()

			scale := max(cfg.Sim.Scale, 1)
			ebiten.SetWindowSize(cfg.Display.Width*scale, cfg.Display.Height*scale)
			ebiten.SetWindowTitle(fmt.Sprintf("ledmatrix %dx%d", cfg.Display.Width, cfg.Display.Height))
			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
			ebiten.SetRunnableOnUnfocused(true)
			ebiten.SetWindowClosingHandled(true)
			ebiten.SetTPS(cfg.Display.RefreshRate)

			gerr := ebiten.RunGame(&simGame{ctx: ctx, panel: p, scale: scale})
			cancel()
			if err := <-done; err != nil {
				return err
			}
			if gerr != nil && !errors.Is(gerr, ebiten.Termination) {
				return gerr
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Int("scale", config.DefaultSimScale, "window pixels per LED")
	if err := v.BindPFlag("sim.scale", flags.Lookup("scale")); err != nil {
		bindErr = err
	}
	return cmd
}

// simPanel is a display.Drawer keeping the last frame for the window.
type simPanel struct {
	mu     sync.RWMutex
	frame  *image.RGBA
	halted bool
}

func newSimPanel(w, h int) *simPanel {
	return &simPanel{frame: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (p *simPanel) String() string {
	return fmt.Sprintf("sim{%dx%d}", p.frame.Rect.Dx(), p.frame.Rect.Dy())
}

func (p *simPanel) ColorModel() color.Model { return rgb24.Model }
func (p *simPanel) Bounds() image.Rectangle { return p.frame.Rect }

func (p *simPanel) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.halted {
		return errors.New("sim: halted")
	}
	draw.Draw(p.frame, dst.Intersect(p.frame.Rect), src, sp, draw.Src)
	return nil
}

func (p *simPanel) Halt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.halted = true
	return nil
}

// simGame is the ebiten.Game showing a simPanel.
type simGame struct {
	ctx    context.Context
	panel  *simPanel
	scale  int
	window *ebiten.Image
}

func (g *simGame) Update() error {
	if ebiten.IsWindowBeingClosed() || g.ctx.Err() != nil {
		return ebiten.Termination
	}
	return nil
}

func (g *simGame) Draw(screen *ebiten.Image) {
	b := g.panel.Bounds()
	if g.window == nil {
		g.window = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.panel.mu.RLock()
	g.window.WritePixels(g.panel.frame.Pix)
	g.panel.mu.RUnlock()

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.window, op)
}

func (g *simGame) Layout(int, int) (int, int) {
	b := g.panel.Bounds()
	return b.Dx() * g.scale, b.Dy() * g.scale
}
