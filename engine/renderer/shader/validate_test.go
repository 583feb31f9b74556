package shader

import (
	"strings"
	"testing"
)

// skipIfCompilerLimited skips when the WGSL compiler reports a feature it does not implement yet.
func skipIfCompilerLimited(t *testing.T, err error) {
	t.Helper()
	msg := err.Error()
	for _, s := range []string{"not yet implemented", "not supported", "unsupported", "lowering error"} {
		if strings.Contains(msg, s) {
			t.Skipf("compiler limitation: %v", err)
		}
	}
}

func TestKernelsCompileToSPIRV(t *testing.T) {
	k := loadTestKernels(t)
	for _, s := range []Shader{k.Trace, k.DirectVertex, k.BlitVertex} {
		t.Run(s.Key(), func(t *testing.T) {
			spirv, err := CompileSPIRV(s.Source())
			if err != nil {
				skipIfCompilerLimited(t, err)
				t.Fatalf("compile %s: %v", s.Key(), err)
			}
			if len(spirv)%4 != 0 {
				t.Errorf("SPIR-V length %d is not word aligned", len(spirv))
			}
		})
	}
}

func TestCompileSPIRVRejectsGarbage(t *testing.T) {
	if _, err := CompileSPIRV("fn main( {"); err == nil {
		t.Error("expected compile error")
	}
}
