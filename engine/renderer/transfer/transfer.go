package transfer

import (
	"errors"
	"fmt"
	"strings"
)

// RowAlignment is the byte alignment required for each row of a buffer-to-texture copy.
const RowAlignment = 256

var (
	// ErrUnknownStrategy is returned by ParseStrategy for unrecognized names.
	ErrUnknownStrategy = errors.New("transfer: unknown strategy")

	// ErrLayoutDrift is returned when GPUCell no longer serializes to CellSize.
	ErrLayoutDrift = errors.New("transfer: cell layout drift")
)

// Strategy selects how the compute result reaches the screen.
type Strategy uint32

const (
	// DirectPull binds the linear f32x3 result buffer as a per-instance vertex buffer
	// and draws one screen-aligned quad per pixel.
	DirectPull Strategy = iota

	// TextureBlit has the kernel write packed RGBA8 texels, copies them into a texture
	// in the compute encoder and draws a single full-screen triangle.
	TextureBlit
)

// String returns the CLI name of the strategy.
func (s Strategy) String() string {
	switch s {
	case DirectPull:
		return "direct"
	case TextureBlit:
		return "blit"
	default:
		return fmt.Sprintf("Strategy(%d)", uint32(s))
	}
}

// ParseStrategy maps a CLI name onto a Strategy. Matching is case-insensitive.
//
// Parameters:
//   - name: "direct", "direct-pull", "blit" or "texture-blit"
//
// Returns:
//   - Strategy: the parsed strategy
//   - error: ErrUnknownStrategy for any other value
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "direct", "direct-pull", "directpull":
		return DirectPull, nil
	case "blit", "texture-blit", "textureblit":
		return TextureBlit, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// ResultElementSize returns the bytes the kernel writes per pixel.
func (s Strategy) ResultElementSize() uint32 {
	if s == TextureBlit {
		return 4
	}
	return 12
}

// RowPitch returns the byte distance between consecutive result rows.
// TextureBlit rows are padded up to RowAlignment, DirectPull rows are tightly packed.
func (s Strategy) RowPitch(width uint32) uint32 {
	pitch := width * s.ResultElementSize()
	if s == TextureBlit {
		return AlignUp(pitch, RowAlignment)
	}
	return pitch
}

// ResultBufferSize returns the exact byte length of the result buffer for a width x height frame.
// It is computed in 64 bits and does not wrap for any frame size.
func (s Strategy) ResultBufferSize(width, height uint32) uint64 {
	pitch := uint64(width) * uint64(s.ResultElementSize())
	if s == TextureBlit {
		pitch = (pitch + RowAlignment - 1) &^ (RowAlignment - 1)
	}
	return pitch * uint64(height)
}

// AlignUp rounds v up to the next multiple of alignment. Alignment must be a power of two.
func AlignUp(v, alignment uint32) uint32 {
	return (v + alignment - 1) &^ (alignment - 1)
}
