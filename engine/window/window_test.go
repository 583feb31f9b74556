package window

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/common"
)

func TestKeyBindings(t *testing.T) {
	tests := []struct {
		name      string
		key       uint32
		wantClose bool
		wantDraw  bool
		forwarded bool
	}{
		{"escape closes", common.KeyEsc, true, false, false},
		{"space redraws", common.KeySpace, false, true, true},
		{"other keys forward", common.KeyR, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newEngineWindow()
			var got []uint32
			w.SetKeyDownCallback(func(k uint32) { got = append(got, k) })

			if closed := w.handleKey(tt.key); closed != tt.wantClose {
				t.Errorf("handleKey(%d) closed = %v, want %v", tt.key, closed, tt.wantClose)
			}
			drawn := false
			select {
			case <-w.Redraws():
				drawn = true
			default:
			}
			if drawn != tt.wantDraw {
				t.Errorf("redraw requested = %v, want %v", drawn, tt.wantDraw)
			}
			if (len(got) == 1) != tt.forwarded {
				t.Errorf("forwarded keys = %v", got)
			}
		})
	}
}

func TestRedrawRequestsCoalesce(t *testing.T) {
	w := newEngineWindow()
	for range 5 {
		w.RequestRedraw()
	}
	<-w.Redraws()
	select {
	case <-w.Redraws():
		t.Error("more than one pending redraw")
	default:
	}
}

func TestOptionsAndUninitialized(t *testing.T) {
	w := newEngineWindow(WithTitle("cornell"), WithSize(320, 0))
	if w.title != "cornell" || w.Width() != 320 || w.Height() != 600 {
		t.Errorf("window = %q %dx%d", w.title, w.Width(), w.Height())
	}
	if w.IsRunning() {
		t.Error("uninitialized window reports running")
	}
	if w.SurfaceDescriptor() != nil {
		t.Error("uninitialized window has a surface descriptor")
	}
	if err := w.Close(); err != ErrNotInitialized {
		t.Errorf("Close = %v, want ErrNotInitialized", err)
	}
}
