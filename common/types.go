// package common contains plain structs and helpers shared across the tracer's packages.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// TextureStagingData describes a texture binding pending GPU creation.
type TextureStagingData struct {
	// Pixels is optional initial data, tightly packed at 4 bytes per pixel. When empty the
	// texture is created uninitialized and filled later by a buffer copy.
	Pixels []byte
	// Width and Height are the texture extent in pixels.
	Width, Height uint32
	// Format defaults to RGBA8Unorm when left zero.
	Format wgpu.TextureFormat
	// Usage is OR'd with TextureBinding|CopyDst.
	Usage wgpu.TextureUsage
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero fields fall back to the renderer's defaults.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level.
	MaxAnisotropy uint16
}

// NearestClampSampler returns a sampler that maps each texel to exactly one pixel with no
// filtering and no wrapping at the edges.
func NearestClampSampler() SamplerStagingData {
	return SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeNearest,
		MinFilter:    wgpu.FilterModeNearest,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
	}
}
