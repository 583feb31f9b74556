package transfer

import (
	"errors"
	"testing"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"direct", DirectPull, false},
		{"Direct-Pull", DirectPull, false},
		{" blit ", TextureBlit, false},
		{"texture-blit", TextureBlit, false},
		{"readback", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownStrategy) {
					t.Fatalf("error = %v, want ErrUnknownStrategy", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseStrategy(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
			if back, err := ParseStrategy(got.String()); err != nil || back != got {
				t.Errorf("String() %q does not parse back", got.String())
			}
		})
	}
}

func TestRowPitch(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		width    uint32
		want     uint32
	}{
		{"direct 600", DirectPull, 600, 7200},
		{"direct 1", DirectPull, 1, 12},
		{"blit 600", TextureBlit, 600, 2560},
		{"blit 64", TextureBlit, 64, 256},
		{"blit 65", TextureBlit, 65, 512},
		{"blit 1", TextureBlit, 1, 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.strategy.RowPitch(tt.width)
			if got != tt.want {
				t.Errorf("RowPitch(%d) = %d, want %d", tt.width, got, tt.want)
			}
			if tt.strategy == TextureBlit && got%RowAlignment != 0 {
				t.Errorf("RowPitch(%d) = %d is not %d-aligned", tt.width, got, RowAlignment)
			}
		})
	}
}

func TestResultBufferSize(t *testing.T) {
	if got := DirectPull.ResultBufferSize(600, 600); got != 600*600*12 {
		t.Errorf("DirectPull size = %d, want %d", got, 600*600*12)
	}
	if got := TextureBlit.ResultBufferSize(600, 600); got != 2560*600 {
		t.Errorf("TextureBlit size = %d, want %d", got, 2560*600)
	}
	if got := DirectPull.ResultBufferSize(65536, 65536); got != 12<<32 {
		t.Errorf("DirectPull size for 65536x65536 = %d, want %d", got, uint64(12)<<32)
	}
	if got := TextureBlit.ResultBufferSize(1<<30+1, 1); got != 1<<32+RowAlignment {
		t.Errorf("TextureBlit size for a wide row = %d, want %d", got, uint64(1)<<32+RowAlignment)
	}
}
