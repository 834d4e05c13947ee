// Package model holds the static geometry of the background effect: the
// full screen quad of the main pass and the particle seeds.
package model

import (
	"math/rand"

	glm "github.com/go-gl/mathgl/mgl32"
)

// Component counts of the vertex attributes
const (
	PositionSize = 3
	TexCoordSize = 2
	SeedSize     = 2
)

// Vertex is a quad corner
type Vertex struct {
	Pos glm.Vec3
	Tex glm.Vec2
}

// Quad returns the two triangles covering clip space, texture
// coordinates running from the bottom left corner
func Quad() []Vertex {
	return []Vertex{
		{Pos: glm.Vec3{-1, -1, 0}, Tex: glm.Vec2{0, 0}},
		{Pos: glm.Vec3{1, -1, 0}, Tex: glm.Vec2{1, 0}},
		{Pos: glm.Vec3{-1, 1, 0}, Tex: glm.Vec2{0, 1}},
		{Pos: glm.Vec3{-1, 1, 0}, Tex: glm.Vec2{0, 1}},
		{Pos: glm.Vec3{1, -1, 0}, Tex: glm.Vec2{1, 0}},
		{Pos: glm.Vec3{1, 1, 0}, Tex: glm.Vec2{1, 1}},
	}
}

// Positions flattens the vertex positions for a vertex buffer
func Positions(vertices []Vertex) []float32 {
	data := make([]float32, 0, len(vertices)*PositionSize)
	for _, v := range vertices {
		data = append(data, v.Pos[:]...)
	}
	return data
}

// TexCoords flattens the texture coordinates for a vertex buffer
func TexCoords(vertices []Vertex) []float32 {
	data := make([]float32, 0, len(vertices)*TexCoordSize)
	for _, v := range vertices {
		data = append(data, v.Tex[:]...)
	}
	return data
}

// Seeds returns count random vec2 seeds in [0, 1), one per particle.
// The particle shader derives position and phase from them.
func Seeds(count int, rnd *rand.Rand) []float32 {
	data := make([]float32, count*SeedSize)
	for i := range data {
		data[i] = rnd.Float32()
	}
	return data
}
