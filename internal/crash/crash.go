/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic in the main goroutine into a crash report and
// a best-effort dump of the board contents.
package crash

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "inkboard/internal/log"
	"inkboard/internal/version"
)

// SceneDumper writes the current board as JSON. The engine implements it.
type SceneDumper interface {
	DumpScene(w io.Writer) error
}

// exitFn is swapped in tests.
var exitFn = os.Exit

// Recover logs a recovered panic, writes crash-<stamp>.log into dir (the temp
// dir when empty), dumps the scene next to it and exits with code 2.
//
// Recover must be deferred directly: defer crash.Recover(dir, eng)
func Recover(dir string, scene SceneDumper) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	report, err := writeReport(dir, r, stack)
	if err != nil {
		l.Error("write crash report", slog.Any("err", err))
	}
	if scene != nil {
		if p, err := dumpScene(dir, scene); err != nil {
			l.Error("scene dump failed", slog.Any("err", err))
		} else {
			l.Info("scene dump written", slog.String("path", p))
		}
	}
	fmt.Fprintf(os.Stderr, "inkboard crashed. Report: %s\n%s %s/%s\n", report, version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func reportDir(dir string) string {
	if dir == "" {
		return os.TempDir()
	}
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

func writeReport(dir string, panicVal any, stack []byte) (string, error) {
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(reportDir(dir), "crash-"+stamp+".log")

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "inkboard crash report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&buf, "\nPanic: %v\n\nStack:\n%s\n", panicVal, stack)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	return path, nil
}

func dumpScene(dir string, scene SceneDumper) (string, error) {
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(reportDir(dir), "scene-"+stamp+".json")
	f, err := os.Create(path)
	if err != nil {
		return path, err
	}
	if err := scene.DumpScene(f); err != nil {
		_ = f.Close()
		return path, err
	}
	return path, f.Close()
}
