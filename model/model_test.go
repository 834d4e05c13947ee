package model_test

import (
	"math/rand"
	"testing"

	"github.com/ndev/portfolio/model"
)

func TestQuad(t *testing.T) {
	quad := model.Quad()
	if len(quad) != 6 {
		t.Fatalf("quad has %d vertices, want 6", len(quad))
	}
	pos := model.Positions(quad)
	tex := model.TexCoords(quad)
	if len(pos) != 6*model.PositionSize || len(tex) != 6*model.TexCoordSize {
		t.Fatalf("unexpected buffer sizes %d, %d", len(pos), len(tex))
	}
	for i, v := range quad {
		// texture coordinates map clip space [-1, 1] onto [0, 1]
		if v.Tex.X() != (v.Pos.X()+1)/2 || v.Tex.Y() != (v.Pos.Y()+1)/2 {
			t.Errorf("vertex %d: tex %v does not match pos %v", i, v.Tex, v.Pos)
		}
	}
}

func TestSeeds(t *testing.T) {
	seeds := model.Seeds(100, rand.New(rand.NewSource(1)))
	if len(seeds) != 200 {
		t.Fatalf("got %d floats, want 200", len(seeds))
	}
	for i, s := range seeds {
		if s < 0 || s >= 1 {
			t.Fatalf("seed %d = %v out of range", i, s)
		}
	}
}

func BenchmarkSeeds(b *testing.B) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < b.N; i++ {
		model.Seeds(100, rnd)
	}
}
