// Package app wires a configured compositor, its scan-out loop and the text
// feeds together.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/display"
	"pkt.systems/pslog"

	"github.com/flavioheleno/ledmatrix"
	"github.com/flavioheleno/ledmatrix/bitfont"
	"github.com/flavioheleno/ledmatrix/feed"
	"github.com/flavioheleno/ledmatrix/internal/config"
	"github.com/flavioheleno/ledmatrix/rgb24"
	"github.com/flavioheleno/ledmatrix/scanout"
)

// App is a running display.
type App struct {
	cfg       config.Config
	log       pslog.Logger
	dst       display.Drawer
	comp      *ledmatrix.Compositor
	refresher *scanout.Refresher
	feeder    *feed.Feeder
}

// New builds the compositor described by cfg and a refresher drawing it to
// dst.
func New(cfg config.Config, dst display.Drawer, logger pslog.Logger) (*App, error) {
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	comp, err := Build(cfg, logger)
	if err != nil {
		return nil, err
	}

	bg := rgb24.Black
	if cfg.Display.Background != "" {
		if bg, err = rgb24.Parse(cfg.Display.Background); err != nil {
			return nil, fmt.Errorf("app: background: %w", err)
		}
	}
	r, err := scanout.New(comp, dst, &scanout.Opts{
		RefreshRate: cfg.Display.RefreshRate,
		Background:  image.NewUniform(bg),
		Logger:      logger.With("component", "scanout"),
	})
	if err != nil {
		return nil, err
	}

	var delim byte
	if sc := cfg.Scrollers[cfg.Feed.Scroller]; sc.Delimiter != "" {
		delim = sc.Delimiter[0]
	}
	f := feed.New(comp.Scroller(cfg.Feed.Scroller), &feed.Opts{
		Delimiter:      delim,
		Logger:         logger.With("component", "feed"),
		OriginPatterns: cfg.Feed.OriginPatterns,
	})

	return &App{
		cfg:       cfg,
		log:       logger,
		dst:       dst,
		comp:      comp,
		refresher: r,
		feeder:    f,
	}, nil
}

// Compositor returns the foreground compositor.
func (a *App) Compositor() *ledmatrix.Compositor {
	return a.comp
}

// Refresher returns the scan-out loop.
func (a *App) Refresher() *scanout.Refresher {
	return a.refresher
}

// Feeder returns the feed bound to the configured scroller.
func (a *App) Feeder() *feed.Feeder {
	return a.feeder
}

// Run drives the display until ctx is done. Lines read from stdin are fed to
// the configured scroller when feed.stdin is set; the websocket feed listens
// when feed.listen is not empty. The drawer is halted on return.
func (a *App) Run(ctx context.Context, stdin io.Reader) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.refresher.Run(ctx)
	})

	if a.cfg.Feed.Stdin && stdin != nil {
		g.Go(func() error {
			if err := a.feeder.ReadFrom(ctx, stdin); err != nil {
				return err
			}
			a.log.Info("stdin feed closed", "lines", a.feeder.Lines())
			return nil
		})
	}

	if a.cfg.Feed.Listen != "" {
		ln, err := net.Listen("tcp", a.cfg.Feed.Listen)
		if err != nil {
			return fmt.Errorf("app: feed listen: %w", err)
		}
		srv := newFeedServer(a.cfg.Feed, a.feeder, a.log)
		a.log.Info("feed listening", "addr", ln.Addr().String(), "path", a.cfg.Feed.Path)
		g.Go(func() error {
			if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	if herr := a.dst.Halt(); herr != nil {
		a.log.Warn("halt failed", "err", herr)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func newFeedServer(cfg config.FeedConfig, f *feed.Feeder, logger pslog.Logger) *http.Server {
	path := cfg.Path
	if path == "" {
		path = config.DefaultFeedPath
	}
	mux := http.NewServeMux()
	mux.Handle(path, f.Handler())
	return &http.Server{
		Handler:           mux,
		ErrorLog:          pslog.LogLogger(logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Build creates a compositor and configures its scrollers from cfg.
func Build(cfg config.Config, logger pslog.Logger) (*ledmatrix.Compositor, error) {
	rot, err := ledmatrix.RotationFromDegrees(cfg.Display.Rotation)
	if err != nil {
		return nil, err
	}
	comp, err := ledmatrix.New(&ledmatrix.Opts{
		W:           cfg.Display.Width,
		H:           cfg.Display.Height,
		Rotation:    rot,
		RefreshRate: cfg.Display.RefreshRate,
		Scrollers:   len(cfg.Scrollers),
	})
	if err != nil {
		return nil, err
	}
	for i, sc := range cfg.Scrollers {
		if err := configure(comp.Scroller(i), sc, logger); err != nil {
			return nil, fmt.Errorf("app: scroller %d: %w", i, err)
		}
	}
	return comp, nil
}

func configure(s *ledmatrix.Scroller, sc config.ScrollerConfig, logger pslog.Logger) error {
	mode, err := ledmatrix.ParseScrollMode(sc.Mode)
	if err != nil {
		return err
	}
	font, err := bitfont.Lookup(sc.Font)
	if err != nil {
		return err
	}
	color, err := rgb24.Parse(sc.Color)
	if err != nil {
		return err
	}

	s.SetMode(mode)
	if err := s.SetSpeed(sc.Speed); err != nil {
		return err
	}
	if err := s.SetFont(font); err != nil {
		return err
	}
	s.SetColor(color)
	s.SetTopOffset(sc.Top)
	s.SetLeftOffset(sc.Left)
	if len(sc.Bounds) == 4 {
		s.SetClipBounds(sc.Bounds[0], sc.Bounds[1], sc.Bounds[2], sc.Bounds[3])
	}
	delim := byte(ledmatrix.DefaultDelimiter)
	if sc.Delimiter != "" {
		delim = sc.Delimiter[0]
	}
	s.SetDelimiter(delim)

	log := logger.With("scroller", s.Index())
	s.SetEventCallback(func(s *ledmatrix.Scroller, e ledmatrix.Event) {
		log.Debug("scroller event", "event", e.String())
	})

	if sc.RingCapacity > 0 {
		s.SetRingBuffer(make([]byte, sc.RingCapacity))
		if sc.Text != "" {
			s.AppendStreaming(sc.Text + string(delim))
		}
		return nil
	}
	if sc.Text != "" {
		s.StartText(sc.Text, sc.Loops)
	}
	return nil
}
