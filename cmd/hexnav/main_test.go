package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWatchDirs(t *testing.T) {
	levels := t.TempDir()
	scripts := t.TempDir()
	level := filepath.Join(levels, "maze.yaml")
	other := filepath.Join(levels, "hall.yaml")
	scenario := filepath.Join(scripts, "run.tengo")
	for _, p := range []string{level, other, scenario} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	cases := []struct {
		name  string
		paths []string
		want  int
	}{
		{"builtin_names", []string{"arena", "skirmish"}, 0},
		{"empty", []string{"", ""}, 0},
		{"level_only", []string{level, "skirmish"}, 1},
		{"same_dir_once", []string{level, other}, 1},
		{"level_and_script", []string{level, scenario}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := watchDirs(tc.paths...)
			if len(got) != tc.want {
				t.Fatalf("watchDirs(%v) = %v, want %d dirs", tc.paths, got, tc.want)
			}
			for i := 1; i < len(got); i++ {
				if got[i-1] >= got[i] {
					t.Fatalf("dirs not sorted: %v", got)
				}
			}
		})
	}
}
