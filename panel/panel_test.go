package panel

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/flavioheleno/ledmatrix/rgb24"
)

// tx is one SPI transfer and the latch level it was sent with.
type tx struct {
	data bool
	b    []byte
}

// bus records SPI transfers, tagging each with the latch pin state.
type bus struct {
	latch *gpiotest.Pin
	txs   []tx
}

func (b *bus) Write(p []byte) (int, error) {
	b.txs = append(b.txs, tx{data: b.latch.Read() == gpio.High, b: append([]byte(nil), p...)})
	return len(p), nil
}

func newTestDev(t *testing.T, opts *Opts) (*Dev, *bus) {
	t.Helper()
	b := &bus{latch: &gpiotest.Pin{N: "LATCH"}}
	d, err := NewSPI(spitest.NewRecordRaw(b), b.latch, opts)
	if err != nil {
		t.Fatalf("NewSPI() = %v", err)
	}
	b.txs = nil
	return d, b
}

func TestOptsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    *Opts
		wantErr bool
	}{
		{"nil options (uses defaults)", nil, false},
		{"valid 64x32", &Opts{W: 64, H: 32}, false},
		{"valid 1x1 (minimum)", &Opts{W: 1, H: 1}, false},
		{"valid 256x256 (maximum)", &Opts{W: 256, H: 256}, false},
		{"width zero", &Opts{W: 0, H: 16}, true},
		{"width > 256", &Opts{W: 512, H: 16}, true},
		{"height zero", &Opts{W: 32, H: 0}, true},
		{"height > 256", &Opts{W: 32, H: 300}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &bus{latch: &gpiotest.Pin{N: "LATCH"}}
			_, err := NewSPI(spitest.NewRecordRaw(b), b.latch, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSPI() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewSPIRequiresLatch(t *testing.T) {
	if _, err := NewSPI(spitest.NewRecordRaw(&bytes.Buffer{}), nil, nil); err == nil {
		t.Error("NewSPI() without latch pin should fail")
	}
}

func TestInitSequence(t *testing.T) {
	b := &bus{latch: &gpiotest.Pin{N: "LATCH"}}
	d, err := NewSPI(spitest.NewRecordRaw(b), b.latch, &Opts{W: 4, H: 2, Brightness: 0x80})
	if err != nil {
		t.Fatal(err)
	}
	want := []tx{
		{false, []byte{0xFD, 0x12, 0xAE, 0xCA, 0x03, 0x01, 0xC1, 0x80, 0xA6}},
		{false, []byte{0x15, 0x00, 0x03, 0x75, 0x00, 0x01, 0x5C}},
		{true, make([]byte, 4*2*3)},
		{false, []byte{0xAF}},
	}
	if len(b.txs) != len(want) {
		t.Fatalf("%d transfers, want %d: %v", len(b.txs), len(want), b.txs)
	}
	for i, w := range want {
		if b.txs[i].data != w.data || !bytes.Equal(b.txs[i].b, w.b) {
			t.Errorf("transfer %d = %v % X, want %v % X", i, b.txs[i].data, b.txs[i].b, w.data, w.b)
		}
	}
	if d.String() != "panel.Dev{4x2}" {
		t.Errorf("String() = %q", d.String())
	}
}

func TestInitWithReset(t *testing.T) {
	defer func(d time.Duration) { resetDelay = d }(resetDelay)
	resetDelay = 0

	rst := &gpiotest.Pin{N: "RST", L: gpio.Low}
	b := &bus{latch: &gpiotest.Pin{N: "LATCH"}}
	if _, err := NewSPI(spitest.NewRecordRaw(b), b.latch, &Opts{W: 4, H: 2, RST: rst}); err != nil {
		t.Fatal(err)
	}
	if rst.Read() != gpio.High {
		t.Error("RST should be released after init")
	}
}

func TestDevBounds(t *testing.T) {
	d, _ := newTestDev(t, &Opts{W: 64, H: 32})
	want := image.Rect(0, 0, 64, 32)
	if got := d.Bounds(); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
	if d.ColorModel() != rgb24.Model {
		t.Error("ColorModel() did not return rgb24.Model")
	}
}

func TestDevHalt(t *testing.T) {
	d, b := newTestDev(t, &Opts{W: 4, H: 2})
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if len(b.txs) != 1 || !bytes.Equal(b.txs[0].b, []byte{0xAE}) {
		t.Errorf("Halt sent %v, want display off", b.txs)
	}

	if err := d.SetBrightness(100); !errors.Is(err, ErrHalted) {
		t.Errorf("SetBrightness() = %v, want ErrHalted", err)
	}
	if err := d.Invert(true); !errors.Is(err, ErrHalted) {
		t.Errorf("Invert() = %v, want ErrHalted", err)
	}
	if _, err := d.Write(make([]byte, 4*2*3)); !errors.Is(err, ErrHalted) {
		t.Errorf("Write() = %v, want ErrHalted", err)
	}
	if err := d.Draw(d.Bounds(), image.NewRGBA(d.Bounds()), image.Point{}); !errors.Is(err, ErrHalted) {
		t.Errorf("Draw() = %v, want ErrHalted", err)
	}
	if err := d.Halt(); err != nil {
		t.Errorf("second Halt() = %v", err)
	}
}

func TestWriteBufferSizeValidation(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		bufferSize int
	}{
		{"32x16 too small", 32, 16, 32*16*3 - 1},
		{"32x16 too large", 32, 16, 32*16*3 + 1},
		{"64x32 empty", 64, 32, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDev(t, &Opts{W: tt.width, H: tt.height})
			_, err := d.Write(make([]byte, tt.bufferSize))
			if err == nil || err.Error() != "panel: invalid buffer size" {
				t.Errorf("Write() error = %v, want 'panel: invalid buffer size'", err)
			}
		})
	}
}

func TestWriteFullFrame(t *testing.T) {
	d, b := newTestDev(t, &Opts{W: 2, H: 1})
	frame := []byte{1, 2, 3, 4, 5, 6}
	if n, err := d.Write(frame); err != nil || n != len(frame) {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if len(b.txs) != 2 || !bytes.Equal(b.txs[1].b, frame) || !b.txs[1].data {
		t.Errorf("Write sent %v", b.txs)
	}

	// Drawing the same frame again sends nothing.
	b.txs = nil
	img := rgb24.NewImage(d.Bounds())
	copy(img.Pix, frame)
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if len(b.txs) != 0 {
		t.Errorf("unchanged Draw sent %d transfers", len(b.txs))
	}
}

func TestDrawSendsChangedRegion(t *testing.T) {
	d, b := newTestDev(t, &Opts{W: 8, H: 4})

	img := rgb24.NewImage(d.Bounds())
	img.SetRGB24(2, 1, rgb24.RGB24{R: 0x11})
	img.SetRGB24(4, 2, rgb24.RGB24{B: 0x22})
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}

	if len(b.txs) != 2 {
		t.Fatalf("%d transfers, want 2", len(b.txs))
	}
	if want := []byte{0x15, 2, 4, 0x75, 1, 2, 0x5C}; !bytes.Equal(b.txs[0].b, want) {
		t.Errorf("window = % X, want % X", b.txs[0].b, want)
	}
	want := []byte{
		0x11, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0x22,
	}
	if !b.txs[1].data || !bytes.Equal(b.txs[1].b, want) {
		t.Errorf("data = % X, want % X", b.txs[1].b, want)
	}
}

func TestDrawGenericSource(t *testing.T) {
	d, b := newTestDev(t, &Opts{W: 4, H: 2})
	src := image.NewUniform(color.RGBA{0x10, 0x20, 0x30, 0xFF})
	if err := d.Draw(image.Rect(3, 1, 10, 10), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if want := []byte{0x15, 3, 3, 0x75, 1, 1, 0x5C}; !bytes.Equal(b.txs[0].b, want) {
		t.Errorf("window = % X, want % X", b.txs[0].b, want)
	}
	if want := []byte{0x10, 0x20, 0x30}; !bytes.Equal(b.txs[1].b, want) {
		t.Errorf("data = % X, want % X", b.txs[1].b, want)
	}
}

func TestCalculateDiffNoChanges(t *testing.T) {
	d := newDev(nil, nil, &Opts{W: 4, H: 2})
	if r := d.calculateDiff(); !r.Empty() {
		t.Errorf("calculateDiff() = %v, want empty", r)
	}
}

func TestCalculateDiffWithChanges(t *testing.T) {
	d := newDev(nil, nil, &Opts{W: 4, H: 3})
	d.next.SetRGB24(1, 0, rgb24.White)
	d.next.SetRGB24(3, 2, rgb24.RGB24{G: 1})

	want := image.Rect(1, 0, 4, 3)
	if got := d.calculateDiff(); got != want {
		t.Errorf("calculateDiff() = %v, want %v", got, want)
	}
}

func TestExtractRegion(t *testing.T) {
	d := newDev(nil, nil, &Opts{W: 3, H: 2})
	for i := range d.next.Pix {
		d.next.Pix[i] = byte(i)
	}
	got := d.extractRegion(image.Rect(1, 0, 3, 2))
	want := []byte{3, 4, 5, 6, 7, 8, 12, 13, 14, 15, 16, 17}
	if !bytes.Equal(got, want) {
		t.Errorf("extractRegion() = %v, want %v", got, want)
	}
}

type limitedConn struct {
	max  int
	txs  [][]byte
	fail error
}

func (c *limitedConn) String() string      { return "limited" }
func (c *limitedConn) Duplex() conn.Duplex { return conn.Half }
func (c *limitedConn) MaxTxSize() int      { return c.max }
func (c *limitedConn) Tx(w, r []byte) error {
	if c.fail != nil {
		return c.fail
	}
	c.txs = append(c.txs, append([]byte(nil), w...))
	return nil
}

func TestSendDataChunks(t *testing.T) {
	c := &limitedConn{max: 4}
	d := newDev(c, &gpiotest.Pin{N: "LATCH"}, &Opts{W: 2, H: 2})
	if d.maxTx != 4 {
		t.Fatalf("maxTx = %d, want 4", d.maxTx)
	}
	if err := d.sendData(make([]byte, 10)); err != nil {
		t.Fatal(err)
	}
	if len(c.txs) != 3 || len(c.txs[0]) != 4 || len(c.txs[2]) != 2 {
		t.Errorf("chunks = %v", c.txs)
	}

	c.fail = errors.New("bus fault")
	if err := d.SetBrightness(1); !errors.Is(err, c.fail) {
		t.Errorf("SetBrightness() = %v, want wrapped bus fault", err)
	}
}

func TestInvert(t *testing.T) {
	d, b := newTestDev(t, &Opts{W: 4, H: 2})
	if err := d.Invert(true); err != nil {
		t.Fatal(err)
	}
	if err := d.Invert(false); err != nil {
		t.Fatal(err)
	}
	if len(b.txs) != 2 || b.txs[0].b[0] != 0xA7 || b.txs[1].b[0] != 0xA6 {
		t.Errorf("Invert sent %v", b.txs)
	}
}

func TestConcurrentCommandsKeepLatch(t *testing.T) {
	d, b := newTestDev(t, &Opts{W: 4, H: 2})
	frames := []image.Image{
		image.NewUniform(rgb24.RGB24{R: 0x10, G: 0x10, B: 0x10}),
		image.NewUniform(rgb24.RGB24{R: 0x20, G: 0x20, B: 0x20}),
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if err := d.Draw(d.Bounds(), frames[i%2], image.Point{}); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if err := d.SetBrightness(0x42); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()

	for i, x := range b.txs {
		switch {
		case x.data:
			for _, c := range x.b {
				if c != 0x10 && c != 0x20 {
					t.Fatalf("tx %d: data %x holds command bytes", i, x.b)
				}
			}
		case bytes.Equal(x.b, []byte{cmdBrightness, 0x42}):
		case len(x.b) > 0 && x.b[0] == cmdColumn:
		default:
			t.Fatalf("tx %d: unexpected command %x", i, x.b)
		}
	}
}
