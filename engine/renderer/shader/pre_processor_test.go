package shader

import (
	"errors"
	"strings"
	"testing"
)

func TestPreProcessorSizedArrays(t *testing.T) {
	src := strings.Join([]string{
		"//@oxy:include panel",
		"//@oxy:group 1 1 storage_uniform panels array<panel,panel_count>",
		"//@oxy:group 1 2 storage_uniform lights array<panel,light_count>",
	}, "\n")

	pp := NewPreProcessor()
	pp.SetConstant("panel_count", 5)
	pp.SetConstant("light_count", 0)

	out, err := pp.Process(src)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(out, "struct Panel") {
		t.Error("panel struct was not included")
	}
	if !strings.Contains(out, "@group(1) @binding(1) var<uniform> panels: array<Panel, 5>;") {
		t.Errorf("panels declaration missing:\n%s", out)
	}
	// zero counts are raised to one element
	if !strings.Contains(out, "@group(1) @binding(2) var<uniform> lights: array<Panel, 1>;") {
		t.Errorf("lights declaration missing:\n%s", out)
	}
	if v, _ := pp.Constant("light_count"); v != 1 {
		t.Errorf("light_count = %d, want 1", v)
	}
	if got := len(pp.Declarations()); got != 2 {
		t.Errorf("declarations = %d, want 2", got)
	}
}

func TestPreProcessorUnsetConstant(t *testing.T) {
	pp := NewPreProcessor()
	_, err := pp.Process("//@oxy:group 1 0 storage_uniform spheres array<sphere,sphere_count>")
	if !errors.Is(err, ErrUnsetConstant) {
		t.Fatalf("err = %v, want ErrUnsetConstant", err)
	}
}

func TestPreProcessorResetsDeclarations(t *testing.T) {
	pp := NewPreProcessor()
	if _, err := pp.Process("//@oxy:provider 0 0 io pixels\n//@oxy:provider 0 1 io result"); err != nil {
		t.Fatal(err)
	}
	if _, err := pp.Process("//@oxy:provider 0 0 presentation frame_texture"); err != nil {
		t.Fatal(err)
	}
	decls := pp.Declarations()
	if len(decls) != 1 || decls[0].Role() != AnnotationArgFrameTexture {
		t.Errorf("declarations = %+v, want only the frame texture", decls)
	}
}

func TestPreProcessorRuntimeArray(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@oxy:group 0 0 storage_read spheres array<sphere>")
	if err != nil {
		t.Fatal(err)
	}
	if out != "@group(0) @binding(0) var<storage, read> spheres: array<Sphere>;" {
		t.Errorf("out = %q", out)
	}
}
