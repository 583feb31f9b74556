package scene

import (
	"github.com/Carmen-Shannon/oxy-trace/engine/entity"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *Scene)

// WithSphere appends a sphere.
//
// Parameters:
//   - center: the sphere center
//   - color: the RGB albedo
//   - radius: the sphere radius
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSphere(center, color mgl32.Vec3, radius float32) SceneBuilderOption {
	return func(s *Scene) {
		s.Spheres = append(s.Spheres, entity.NewSphere(center, color, radius))
	}
}

// WithPanel appends a non-emissive rectangle spanning p0 to p1.
//
// Parameters:
//   - p0: the first corner
//   - p1: the opposite corner
//   - normal: the facing direction
//   - color: the RGB albedo
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPanel(p0, p1, normal, color mgl32.Vec3) SceneBuilderOption {
	return func(s *Scene) {
		s.Panels = append(s.Panels, entity.NewPanel(p0, p1, normal, color))
	}
}

// WithLight appends an emissive rectangle. Color is the emitted radiance.
//
// Parameters:
//   - p0: the first corner
//   - p1: the opposite corner
//   - normal: the emission direction
//   - radiance: the RGB radiance
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLight(p0, p1, normal, radiance mgl32.Vec3) SceneBuilderOption {
	return func(s *Scene) {
		s.Lights = append(s.Lights, entity.NewPanel(p0, p1, normal, radiance))
	}
}
