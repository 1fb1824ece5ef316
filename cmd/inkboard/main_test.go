/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */
package main

import (
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

const script = `width: 120
height: 90
steps:
  - op: tool
    tool: rectangle
  - op: drag
    x: 10
    y: 10
    to: {x: 60, y: 50}
`

func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("INK_CONFIG", filepath.Join(dir, "missing.yaml"))
	t.Setenv("INK_LOG_FILE", "")
	t.Setenv("INK_LOG_LEVEL", "error")
	return dir
}

func TestRunVersionAndConfig(t *testing.T) {
	setupCLI(t)
	if code := run([]string{"version"}); code != 0 {
		t.Fatalf("version exit = %d", code)
	}
	if code := run([]string{"config"}); code != 0 {
		t.Fatalf("config exit = %d", code)
	}
	if code := run([]string{"bogus"}); code != 2 {
		t.Fatalf("unknown command exit = %d, want 2", code)
	}
	if code := run([]string{"replay", "only-one"}); code != 2 {
		t.Fatalf("short replay exit = %d, want 2", code)
	}
}

func TestRunReplayWritesPNGAndScene(t *testing.T) {
	dir := setupCLI(t)
	sp := filepath.Join(dir, "draw.yaml")
	if err := os.WriteFile(sp, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out", "board.png")
	if code := run([]string{"replay", sp, out}); code != 0 {
		t.Fatalf("replay exit = %d", code)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 120 || cfg.Height != 90 {
		t.Fatalf("size = %dx%d", cfg.Width, cfg.Height)
	}

	js := filepath.Join(dir, "scene.json")
	if code := run([]string{"replay", sp, js}); code != 0 {
		t.Fatalf("replay json exit = %d", code)
	}
	data, err := os.ReadFile(js)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Fatalf("scene dump is not JSON: %s", data)
	}
}

func TestRunReplayBadScript(t *testing.T) {
	dir := setupCLI(t)
	sp := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(sp, []byte("steps:\n  - op: fly\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code := run([]string{"replay", sp, filepath.Join(dir, "x.png")}); code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
}
