// Command gones is the thin driver around the nescore emulator core: it
// opens a ROM file, pumps the master clock, and hands frames/audio/input to
// ebiten. All emulation logic lives in the nescore module; this file is
// intentionally dumb.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/rng999/nescore"
	"github.com/rng999/nescore/internal/bus"
	"github.com/rng999/nescore/internal/input"
)

const (
	screenWidth  = 256
	screenHeight = 240
	dotsPerFrame = 341 * 262
)

var keymap = map[ebiten.Key]input.Button{
	ebiten.KeyZ:         input.ButtonA,
	ebiten.KeyX:         input.ButtonB,
	ebiten.KeyBackslash: input.ButtonSelect,
	ebiten.KeyEnter:     input.ButtonStart,
	ebiten.KeyUp:        input.ButtonUp,
	ebiten.KeyDown:      input.ButtonDown,
	ebiten.KeyLeft:      input.ButtonLeft,
	ebiten.KeyRight:     input.ButtonRight,
}

// game adapts a *nescore.Console to ebiten's Game interface.
type game struct {
	console *nescore.Console
	rgba    []byte
	samples [4096]float32
}

func (g *game) Update() error {
	for key, button := range keymap {
		g.console.Input(nescore.PlayerOne, button, ebiten.IsKeyPressed(key))
	}
	for i := 0; i < dotsPerFrame; i++ {
		g.console.Tick()
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	pixels := g.console.VideoOutput()
	if len(g.rgba) != screenWidth*screenHeight*4 {
		g.rgba = make([]byte, screenWidth*screenHeight*4)
	}
	for i := 0; i < screenWidth*screenHeight; i++ {
		g.rgba[i*4+0] = pixels[i*3+0]
		g.rgba[i*4+1] = pixels[i*3+1]
		g.rgba[i*4+2] = pixels[i*3+2]
		g.rgba[i*4+3] = 0xFF
	}
	screen.WritePixels(g.rgba)
}

func (g *game) Layout(int, int) (int, int) {
	return screenWidth, screenHeight
}

// audioStream adapts the console's sample ring buffer to io.Reader for
// ebiten's audio player.
type audioStream struct {
	console *nescore.Console
}

func (s *audioStream) Read(p []byte) (int, error) {
	n := len(p) / 4 // 16-bit stereo: 2 bytes * 2 channels per sample
	if n == 0 {
		return 0, nil
	}
	buf := make([]float32, n)
	got, err := s.console.FillAudio(buf)
	if err != nil {
		got = 0
	}
	for i := 0; i < got; i++ {
		sample := int16(buf[i] * 32767)
		p[i*4+0] = byte(sample)
		p[i*4+1] = byte(sample >> 8)
		p[i*4+2] = byte(sample)
		p[i*4+3] = byte(sample >> 8)
	}
	for i := got; i < n; i++ {
		p[i*4+0], p[i*4+1], p[i*4+2], p[i*4+3] = 0, 0, 0, 0
	}
	return n * 4, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gones <path-to-rom>")
		os.Exit(1)
	}

	console := nescore.New()
	if err := console.InsertCartridge(os.Args[1]); err != nil {
		if coreErr, ok := err.(*bus.Error); ok {
			fmt.Fprintf(os.Stderr, "failed to load ROM: %v\n", coreErr)
			os.Exit(coreErr.Code)
		}
		log.Fatalf("failed to load ROM: %v", err)
	}

	audioCtx := audio.NewContext(console.AudioSampleRate())
	player, err := audioCtx.NewPlayer(&audioStream{console: console})
	if err != nil {
		log.Fatalf("failed to create audio player: %v", err)
	}
	player.Play()

	ebiten.SetWindowSize(screenWidth*3, screenHeight*3)
	ebiten.SetWindowTitle("nescore")

	g := &game{console: console}
	if err := ebiten.RunGame(g); err != nil {
		log.Fatalf("emulation loop exited: %v", err)
	}
}
