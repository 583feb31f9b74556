package shader

import "testing"

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    AnnotationType
		args    int
		wantErr bool
		wantNil bool
	}{
		{name: "plain line", line: "let x = 1.0;", wantNil: true},
		{name: "include", line: "//@oxy:include sphere", want: annotationTypeInclude, args: 1},
		{name: "include unknown", line: "//@oxy:include camera", wantErr: true},
		{name: "include extra arg", line: "//@oxy:include sphere panel", wantErr: true},
		{name: "group struct", line: "//@oxy:group 1 3 storage_read config config", want: AnnotationTypeBindingGroup, args: 3},
		{name: "group sized array", line: "//@oxy:group 1 0 storage_uniform spheres array<sphere,sphere_count>", want: AnnotationTypeBindingGroup, args: 3},
		{name: "group runtime array", line: "//@oxy:group 0 0 storage_read spheres array<sphere>", want: AnnotationTypeBindingGroup, args: 3},
		{name: "uniform runtime array", line: "//@oxy:group 1 0 storage_uniform spheres array<sphere>", wantErr: true},
		{name: "group bad address space", line: "//@oxy:group 1 0 private spheres sphere", wantErr: true},
		{name: "group bad index", line: "//@oxy:group x 0 storage_read config config", wantErr: true},
		{name: "group negative binding", line: "//@oxy:group 0 -1 storage_read config config", wantErr: true},
		{name: "provider", line: "//@oxy:provider 0 1 io result", want: AnnotationTypeProvider, args: 2},
		{name: "provider no role", line: "//@oxy:provider 0 0 presentation", want: AnnotationTypeProvider, args: 1},
		{name: "provider bad role", line: "//@oxy:provider 0 0 io diffuse_texture", wantErr: true},
		{name: "provider bad identity", line: "//@oxy:provider 0 0 material", wantErr: true},
		{name: "empty", line: "//@oxy:", wantErr: true},
		{name: "unknown type", line: "//@oxy:define x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parseAnnotation(tt.line, 7)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", a)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil {
				if a != nil {
					t.Fatalf("expected nil annotation, got %+v", a)
				}
				return
			}
			if a.Type != tt.want || len(a.Args) != tt.args || a.Line != 7 {
				t.Errorf("got %+v, want type %s with %d args on line 7", a, tt.want, tt.args)
			}
		})
	}
}

func TestAnnotationRole(t *testing.T) {
	a, err := parseAnnotation("//@oxy:provider 0 1 io result", 1)
	if err != nil {
		t.Fatal(err)
	}
	if a.Role() != AnnotationArgResult {
		t.Errorf("Role() = %q, want %q", a.Role(), AnnotationArgResult)
	}

	g, err := parseAnnotation("//@oxy:group 1 3 storage_read config config", 1)
	if err != nil {
		t.Fatal(err)
	}
	if g.Role() != "" {
		t.Errorf("group Role() = %q, want empty", g.Role())
	}
}

func TestSplitArrayType(t *testing.T) {
	tests := []struct {
		in      string
		elem    AnnotationArg
		count   string
		isArray bool
	}{
		{"config", AnnotationArgConfig, "", false},
		{"array<panel>", AnnotationArgPanel, "", true},
		{"array<panel,light_count>", AnnotationArgPanel, "light_count", true},
	}
	for _, tt := range tests {
		elem, count, isArray := splitArrayType(tt.in)
		if elem != tt.elem || count != tt.count || isArray != tt.isArray {
			t.Errorf("splitArrayType(%q) = %q, %q, %v", tt.in, elem, count, isArray)
		}
	}
}
