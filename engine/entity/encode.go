package entity

import "fmt"

// EncodeSpheres concatenates sphere records in order. An empty input yields an empty slice.
func EncodeSpheres(spheres []GPUSphere) []byte {
	buf := make([]byte, 0, len(spheres)*SphereSize)
	for i := range spheres {
		buf = append(buf, spheres[i].Marshal()...)
	}
	return buf
}

// EncodePanels concatenates panel records in order. An empty input yields an empty slice.
func EncodePanels(panels []GPUPanel) []byte {
	buf := make([]byte, 0, len(panels)*PanelSize)
	for i := range panels {
		buf = append(buf, panels[i].Marshal()...)
	}
	return buf
}

// CheckLayout verifies that every record type still serializes to the size the kernels declare.
//
// Returns:
//   - error: ErrLayoutDrift naming the first record whose size disagrees
func CheckLayout() error {
	var s GPUSphere
	var p GPUPanel
	checks := []struct {
		name      string
		want      int
		size      int
		marshaled int
	}{
		{"sphere", SphereSize, s.Size(), len(s.Marshal())},
		{"panel", PanelSize, p.Size(), len(p.Marshal())},
	}
	for _, c := range checks {
		if c.size != c.want || c.marshaled != c.want {
			return fmt.Errorf("%w: %s is %d bytes in memory and %d marshaled, kernel expects %d",
				ErrLayoutDrift, c.name, c.size, c.marshaled, c.want)
		}
	}
	return nil
}
