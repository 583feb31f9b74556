package render_config

import "github.com/Carmen-Shannon/oxy-trace/engine/renderer/transfer"

// SettingsOption is a functional option for configuring Settings.
type SettingsOption func(s *Settings)

// WithStrategy sets the result transfer strategy.
func WithStrategy(strategy transfer.Strategy) SettingsOption {
	return func(s *Settings) {
		s.Strategy = strategy
	}
}

// WithSize sets the frame dimensions in pixels. Zero values keep the current size.
func WithSize(width, height uint32) SettingsOption {
	return func(s *Settings) {
		if width > 0 {
			s.Width = width
		}
		if height > 0 {
			s.Height = height
		}
	}
}

// WithSamplesPerPixel sets the number of paths traced per pixel. Values below 1 are raised to 1.
func WithSamplesPerPixel(spp uint32) SettingsOption {
	return func(s *Settings) {
		s.SamplesPerPixel = max(spp, 1)
	}
}
