package level

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig controls procedural arena generation.
type GenConfig struct {
	Seed      int64
	Cols      int
	Rows      int
	CellSize  float64
	Frequency float64
	// Threshold is the noise level at or above which a lattice cell becomes
	// a blocked box instead of walkable mesh.
	Threshold float64
}

func DefaultGenConfig() GenConfig {
	return GenConfig{
		Cols:      16,
		Rows:      12,
		CellSize:  32,
		Frequency: 0.18,
		Threshold: 0.68,
	}
}

// Generate builds an arena on a square lattice. Walkable lattice cells become
// quad polygons sharing vertices with their neighbours; blocked cells become
// box obstacles. The corner cell at (0, 0) is always walkable.
func Generate(cfg GenConfig) *Level {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	noise := opensimplex.NewNormalized(seed)

	lvl := &Level{Name: fmt.Sprintf("generated-%d", seed)}
	stride := cfg.Cols + 1
	for j := 0; j <= cfg.Rows; j++ {
		for i := 0; i <= cfg.Cols; i++ {
			lvl.Mesh.Vertices = append(lvl.Mesh.Vertices, Point{
				X: float64(i) * cfg.CellSize,
				Y: float64(j) * cfg.CellSize,
			})
		}
	}

	for j := 0; j < cfg.Rows; j++ {
		for i := 0; i < cfg.Cols; i++ {
			n := octaveNoise(noise, float64(i), float64(j), 3, cfg.Frequency, 0.5)
			if n >= cfg.Threshold && (i != 0 || j != 0) {
				lvl.Obstacles = append(lvl.Obstacles, Obstacle{
					Kind: ObstacleBox,
					Min:  Point{X: float64(i) * cfg.CellSize, Y: float64(j) * cfg.CellSize},
					Max:  Point{X: float64(i+1) * cfg.CellSize, Y: float64(j+1) * cfg.CellSize},
				})
				continue
			}
			v0 := j*stride + i
			lvl.Mesh.Polygons = append(lvl.Mesh.Polygons, []int{v0, v0 + 1, v0 + 1 + stride, v0 + stride})
		}
	}
	return lvl
}

// octaveNoise layers frequencies for a less blobby field.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
