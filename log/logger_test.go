package log

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func restore() {
	state.mu.Lock()
	clear(state.modules)
	state.mu.Unlock()
	SetLevel(Notice)
	SetSink(os.Stdout)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer restore()

	logger := New("logtest")

	tests := []struct {
		name    string
		level   Level
		emit    func()
		visible bool
	}{
		{"debug hidden at notice", Notice, func() { logger.Debug("debug-line") }, false},
		{"info hidden at notice", Notice, func() { logger.Info("info-line") }, false},
		{"notice shown at notice", Notice, func() { logger.Notice("notice-line") }, true},
		{"info shown at info", Info, func() { logger.Infof("%s-line", "info") }, true},
		{"debug shown at debug", Debug, func() { logger.Debugf("%s-line", "debug") }, true},
		{"warning hidden at error", Error, func() { logger.Warning("warning-line") }, false},
		{"error shown at error", Error, func() { logger.Errorf("%s-line", "error") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			SetLevel(tt.level)
			tt.emit()

			got := buf.Len() > 0
			if got != tt.visible {
				t.Fatalf("visible = %v, want %v (output %q)", got, tt.visible, buf.String())
			}
			if got && !strings.Contains(buf.String(), "[logtest]") {
				t.Errorf("output %q does not carry the module name", buf.String())
			}
		})
	}
}

func TestModuleLevels(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer restore()

	quiet, chatty := New("quiet"), New("chatty")
	SetLevel(Warning)
	if err := SetModuleLevels([]string{"chatty=debug"}); err != nil {
		t.Fatalf("SetModuleLevels: %v", err)
	}

	quiet.Info("quiet-info")
	chatty.Debug("chatty-debug")
	out := buf.String()
	if strings.Contains(out, "quiet-info") || !strings.Contains(out, "chatty-debug") {
		t.Errorf("output = %q", out)
	}

	// the override survives a new sink and a new global level
	var next bytes.Buffer
	SetSink(&next)
	SetLevel(Error)
	chatty.Info("chatty-info")
	quiet.Warning("quiet-warning")
	if out := next.String(); !strings.Contains(out, "chatty-info") || strings.Contains(out, "quiet-warning") {
		t.Errorf("output after sink change = %q", out)
	}
}

func TestSetModuleLevelsRejectsBadPairs(t *testing.T) {
	defer restore()

	tests := []struct {
		name  string
		specs []string
		want  error
	}{
		{"missing level", []string{"engine"}, ErrBadModuleLevel},
		{"missing module", []string{"=info"}, ErrBadModuleLevel},
		{"unknown level", []string{"engine=loud"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SetModuleLevels(append([]string{"window=debug"}, tt.specs...))
			if err == nil || (tt.want != nil && !errors.Is(err, tt.want)) {
				t.Errorf("SetModuleLevels = %v, want %v", err, tt.want)
			}
			if len(state.modules) != 0 {
				t.Errorf("overrides applied despite error: %v", state.modules)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	for _, l := range []Level{Debug, Info, Notice, Warning, Error} {
		got, err := ParseLevel(strings.ToUpper(l.String()))
		if err != nil || got != l {
			t.Errorf("ParseLevel(%q) = %v, %v", l.String(), got, err)
		}
	}
	if _, err := ParseLevel("critical"); err == nil {
		t.Error("ParseLevel accepted a level with no Level constant")
	}
}
