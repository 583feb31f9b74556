package scene

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-trace/engine/entity"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidScene is returned by Check for a primitive the kernel cannot trace.
var ErrInvalidScene = errors.New("scene: invalid primitive")

// Scene is the immutable set of primitives traced by the kernel.
// Spheres and Panels are ordinary geometry, Lights are emissive panels sampled directly.
type Scene struct {
	Spheres []entity.GPUSphere
	Panels  []entity.GPUPanel
	Lights  []entity.GPUPanel
}

// NewScene builds a Scene from the given options, applied in order.
//
// Parameters:
//   - options: functional options appending primitives
//
// Returns:
//   - Scene: the assembled scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &Scene{
		Spheres: []entity.GPUSphere{},
		Panels:  []entity.GPUPanel{},
		Lights:  []entity.GPUPanel{},
	}
	for _, opt := range options {
		opt(s)
	}
	return *s
}

// CornellBox returns the fixed Cornell box: one blue sphere, five walls and a ceiling light.
// Box coordinates span [0,600] on x and y and [-600,0] on z. The result is identical on every call.
//
// Returns:
//   - Scene: one sphere, five panels ordered top, left, back, right, bottom, and one light
func CornellBox() Scene {
	white := mgl32.Vec3{0.75, 0.75, 0.75}

	return NewScene(
		WithSphere(mgl32.Vec3{300, 60, -160}, mgl32.Vec3{0, 0, 0.7}, 60),
		// top
		WithPanel(mgl32.Vec3{0, 600, -600}, mgl32.Vec3{600, 600, 0}, mgl32.Vec3{0, -1, 0}, white),
		// left
		WithPanel(mgl32.Vec3{0, 0, -600}, mgl32.Vec3{0, 600, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0.12, 0.45, 0.15}),
		// back
		WithPanel(mgl32.Vec3{0, 0, -600}, mgl32.Vec3{600, 600, -600}, mgl32.Vec3{0, 0, 1}, white),
		// right
		WithPanel(mgl32.Vec3{600, 0, -600}, mgl32.Vec3{600, 600, 0}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0.65, 0.05, 0.05}),
		// bottom
		WithPanel(mgl32.Vec3{0, 0, -600}, mgl32.Vec3{600, 0, 0}, mgl32.Vec3{0, 1, 0}, white),
		WithLight(mgl32.Vec3{225, 599, -350}, mgl32.Vec3{375, 599, -200}, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{7, 7, 7}),
	)
}

// Check verifies the primitives the kernel relies on: every sphere has a positive radius,
// every panel and light faces a unit-length direction and every light is emissive.
//
// Returns:
//   - error: ErrInvalidScene naming the first offending primitive, or nil
func (s Scene) Check() error {
	for i := range s.Spheres {
		if s.Spheres[i].Radius <= 0 {
			return fmt.Errorf("%w: sphere %d has radius %v", ErrInvalidScene, i, s.Spheres[i].Radius)
		}
	}
	for _, group := range []struct {
		name   string
		panels []entity.GPUPanel
	}{{"panel", s.Panels}, {"light", s.Lights}} {
		for i := range group.panels {
			if l := group.panels[i].Direction().Len(); math.Abs(float64(l)-1) > 1e-3 {
				return fmt.Errorf("%w: %s %d normal has length %v", ErrInvalidScene, group.name, i, l)
			}
		}
	}
	for i := range s.Lights {
		if !s.Lights[i].Emissive() {
			return fmt.Errorf("%w: light %d does not emit", ErrInvalidScene, i)
		}
	}
	return nil
}

// Counts returns the number of spheres, panels and lights.
func (s Scene) Counts() (spheres, panels, lights int) {
	return len(s.Spheres), len(s.Panels), len(s.Lights)
}

// SphereBytes returns the encoded sphere array.
func (s Scene) SphereBytes() []byte {
	return entity.EncodeSpheres(s.Spheres)
}

// PanelBytes returns the encoded panel array.
func (s Scene) PanelBytes() []byte {
	return entity.EncodePanels(s.Panels)
}

// LightBytes returns the encoded light array.
func (s Scene) LightBytes() []byte {
	return entity.EncodePanels(s.Lights)
}

// Equal reports whether both scenes hold the same primitives with identical float bit patterns.
func (s Scene) Equal(other Scene) bool {
	if len(s.Spheres) != len(other.Spheres) || len(s.Panels) != len(other.Panels) || len(s.Lights) != len(other.Lights) {
		return false
	}
	return bytes.Equal(s.SphereBytes(), other.SphereBytes()) &&
		bytes.Equal(s.PanelBytes(), other.PanelBytes()) &&
		bytes.Equal(s.LightBytes(), other.LightBytes())
}

// Bounds returns the axis-aligned box enclosing every panel and light corner and every sphere.
// An empty scene returns two zero vectors.
func (s Scene) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	inf := float32(math.Inf(1))
	lo := mgl32.Vec3{inf, inf, inf}
	hi := mgl32.Vec3{-inf, -inf, -inf}
	seen := false

	grow := func(p mgl32.Vec3) {
		seen = true
		for i := range 3 {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	for i := range s.Spheres {
		c, r := s.Spheres[i].Center(), s.Spheres[i].Radius
		grow(c.Sub(mgl32.Vec3{r, r, r}))
		grow(c.Add(mgl32.Vec3{r, r, r}))
	}
	for _, panels := range [][]entity.GPUPanel{s.Panels, s.Lights} {
		for i := range panels {
			a, b := panels[i].Corners()
			grow(a)
			grow(b)
		}
	}
	if !seen {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	return lo, hi
}
