package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// AdapterSummary describes the adapter chosen for one power preference.
type AdapterSummary struct {
	Preference PowerPreference
	Info       wgpu.AdapterInfo
	Err        error
}

// ListAdapters requests an adapter for each power preference without a surface and reports
// what the platform hands back. Adapters are released before returning.
//
// Parameters:
//   - forceFallback: request the software fallback adapter instead of hardware
//
// Returns:
//   - []AdapterSummary: one summary per power preference, low-power first
func ListAdapters(forceFallback bool) []AdapterSummary {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	summaries := make([]AdapterSummary, 0, 2)
	for _, pref := range []PowerPreference{PowerLow, PowerHigh} {
		s := AdapterSummary{Preference: pref}
		adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
			PowerPreference:      pref.toWGPU(),
			ForceFallbackAdapter: forceFallback,
		})
		if err != nil {
			s.Err = err
		} else {
			s.Info = adapter.GetInfo()
			adapter.Release()
		}
		summaries = append(summaries, s)
	}
	return summaries
}
