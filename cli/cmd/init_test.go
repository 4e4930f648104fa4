package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/recline/props"
)

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		setup   func(t *testing.T, path string) // setup function to prepare test
		wantErr error
	}{
		{
			name:  "create_new_config",
			force: false,
			setup: nil, // no pre-existing file
		},
		{
			name:  "overwrite_existing_with_force",
			force: true,
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing = content\n"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name:  "fail_without_force",
			force: false,
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing = content\n"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: ErrFileExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config")

			if tt.setup != nil {
				tt.setup(t, confPath)
			}

			var cli struct {
				Marker string `default:"@"`
			}

			parser, err := kong.New(&cli, kong.Vars{
				ConfigIdentifier: confPath,
			})
			if err != nil {
				t.Fatal(err)
			}

			kctx, err := parser.Parse(nil)
			if err != nil {
				t.Fatal(err)
			}

			ctx := WithContext(context.Background(), kctx)

			err = (&Init{Force: tt.force}).Run(ctx)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrWriteConfig) {
					t.Fatalf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() error = %v", err)
			}

			// The generated file must load as properties.
			p, err := props.LoadFile(ctx, confPath, props.Options()...)
			if err != nil {
				t.Fatalf("generated config does not load: %v", err)
			}

			if got, _ := p.Get("marker"); got != "@" {
				t.Errorf("marker = %q, want %q", got, "@")
			}

			if _, ok := p.Get("existing"); ok {
				t.Error("Init.Run() kept the previous content")
			}
		})
	}
}

// TestInitRunNoContext tests that Init.Run fails without a command context.
func TestInitRunNoContext(t *testing.T) {
	t.Parallel()

	if err := (&Init{}).Run(context.Background()); !errors.Is(err, ErrWriteConfig) {
		t.Errorf("Init.Run() error = %v, want %v", err, ErrWriteConfig)
	}
}

// TestWriteConfig tests that flag values are written as properties.
func TestWriteConfig(t *testing.T) {
	t.Parallel()

	var cli struct {
		Verbose bool     `help:"Enable verbose output"`
		Output  string   `help:"Output file"`
		Count   int      `help:"Number of items"`
		Tags    []string `help:"Tags"`
		Empty   string   `help:"Unset"`
		Secret  string   `hidden:""`
		Pprof   string   `name:"pprof-mode"`
	}

	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse([]string{
		"--verbose",
		"--output=test.txt",
		"--count=5",
		"--tags=a,b",
		"--secret=x",
		"--pprof-mode=cpu",
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer

	if err := writeConfig(&buf, kctx); err != nil {
		t.Fatal(err)
	}

	want := configHeader + "\n" +
		"verbose = true\n" +
		"output = test.txt\n" +
		"count = 5\n" +
		"tags = a,b\n"

	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("writeConfig() mismatch (-want +got):\n%s", diff)
	}
}

// TestFlagValue tests formatting of individual flag values.
func TestFlagValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		val    any
		want   string
		wantOK bool
	}{
		{name: "nil", val: nil},
		{name: "false", val: false, want: "false", wantOK: true},
		{name: "empty string", val: ""},
		{name: "string", val: "debug", want: "debug", wantOK: true},
		{name: "empty slice", val: []string{}},
		{name: "slice", val: []string{"x", "y"}, want: "x,y", wantOK: true},
		{name: "ints", val: []int{1, 2}, want: "1,2", wantOK: true},
		{name: "int", val: -1, want: "-1", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := flagValue(tt.val)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("flagValue(%v) = (%q, %v), want (%q, %v)", tt.val, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
