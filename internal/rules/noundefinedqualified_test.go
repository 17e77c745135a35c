package rules

import (
	"testing"

	"argus/internal/diag"
	"argus/internal/project"
)

func TestNoUndefinedQualifiedFlagsUnknownName(t *testing.T) {
	app := "module app exposing (main)\n" +
		"import lib\n" +
		"main = lib.value\n" +
		"broken = lib.oops\n"
	fx := fixture{srcs: map[string]string{
		"src/app.ag": app,
		"src/lib.ag": "module lib exposing (value)\nvalue = 1\n",
	}}

	diags := fx.analyze(t, NoUndefinedQualified())
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want exactly one", messages(diags))
	}
	d := diags[0]
	if d.Message != "lib.oops is not exposed by lib" {
		t.Fatalf("Message = %q", d.Message)
	}
	if d.Severity != diag.SevError {
		t.Fatalf("Severity = %v, want error", d.Severity)
	}
	start, end := spanOf(t, app, "lib.oops")
	if d.Primary.Start != start || d.Primary.End != end {
		t.Fatalf("Primary = [%d,%d), want [%d,%d)", d.Primary.Start, d.Primary.End, start, end)
	}
}

func TestNoUndefinedQualifiedChecksDependencyListings(t *testing.T) {
	deps := project.NewDependencySet([]*project.Dependency{{
		Name:    "lib",
		Version: "1.2.0",
		Modules: []project.DepModule{{
			Path:   "lib/str",
			Values: []string{"concat", "length"},
		}},
	}})
	fx := fixture{
		srcs: map[string]string{
			"src/app.ag": "module app exposing (main)\n" +
				"import lib/str\n" +
				"main = str.concat \"a\" \"b\"\n" +
				"broken = str.shout \"x\"\n",
		},
		deps: deps,
	}

	diags := fx.analyze(t, NoUndefinedQualified())
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want exactly one", messages(diags))
	}
	if diags[0].Message != "str.shout is not exposed by lib/str" {
		t.Fatalf("Message = %q", diags[0].Message)
	}
}

func TestNoUndefinedQualifiedQuietCases(t *testing.T) {
	tests := []struct {
		name string
		srcs map[string]string
	}{
		{
			name: "unlisted external module",
			srcs: map[string]string{
				"src/app.ag": "module app exposing (main)\n" +
					"import vendor/thing\n" +
					"main = thing.whatever 1\n",
			},
		},
		{
			name: "upstream exposes all",
			srcs: map[string]string{
				"src/app.ag": "module app exposing (main)\n" +
					"import lib\n" +
					"main = lib.anything\n",
				"src/lib.ag": "module lib exposing (..)\nanything = 1\n",
			},
		},
		{
			name: "aliased import resolves",
			srcs: map[string]string{
				"src/app.ag": "module app exposing (main)\n" +
					"import lib as l\n" +
					"main = l.value\n",
				"src/lib.ag": "module lib exposing (value)\nvalue = 1\n",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := fixture{srcs: tt.srcs}
			if diags := fx.analyze(t, NoUndefinedQualified()); len(diags) != 0 {
				t.Fatalf("diagnostics = %v, want none", messages(diags))
			}
		})
	}
}
