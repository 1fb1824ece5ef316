/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"inkboard/internal/assets"
	"inkboard/internal/config"
	"inkboard/internal/crash"
	"inkboard/internal/engine"
	applog "inkboard/internal/log"
	"inkboard/internal/replay"
	"inkboard/internal/ui"
	"inkboard/internal/version"
)

func usage() {
	fmt.Println("inkboard - infinite canvas board")
	fmt.Println("Usage:")
	fmt.Println("  inkboard version")
	fmt.Println("  inkboard config                          # print the effective configuration")
	fmt.Println("  inkboard replay <script.yaml> <out.png>  # play a script headless and render the board")
	fmt.Println("  inkboard replay <script.yaml> <out.json> # same, writing the scene dump instead")
	fmt.Println("  inkboard ui                              # open the board window (default)")
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, cfgErr := config.Load()
	applog.Init(cfg.LogOptions())
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", cfgErr))
	}
	defer crash.Recover("", nil)

	cmd := "ui"
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "version", "-v", "--version":
		fmt.Println(version.String())
		return 0
	case "help", "-h", "--help":
		usage()
		return 0
	case "config":
		data, err := config.Marshal(cfg)
		if err != nil {
			fmt.Println("config error:", err)
			return 1
		}
		fmt.Print(string(data))
		return 0
	case "replay":
		if len(args) < 3 {
			usage()
			return 2
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := replayScript(ctx, cfg, args[1], args[2]); err != nil {
			l.Error("replay failed", slog.String("script", args[1]), slog.Any("err", err))
			fmt.Println("replay error:", err)
			return 1
		}
		fmt.Println("wrote", args[2])
		return 0
	case "ui":
		if err := ui.Run(cfg); err != nil {
			fmt.Println("ui error:", err)
			return 1
		}
		return 0
	default:
		usage()
		return 2
	}
}

// replayScript plays script against a headless engine backed by an in-memory
// asset store and writes the result to out.
func replayScript(ctx context.Context, cfg config.AppConfig, script, out string) error {
	s, err := replay.Load(script)
	if err != nil {
		return err
	}
	loader, err := assets.Open(ctx, "", cfg.Assets.MaxBytes, cfg.Assets.MemoryEntries)
	if err != nil {
		return err
	}
	defer loader.Close()

	opts := engine.OptionsFromConfig(cfg)
	opts.Assets = loader
	e := engine.New(opts)
	if _, err := replay.NewPlayer(e, filepath.Dir(script)).Run(ctx, s); err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(out), ".json") {
		return writeScene(e, out)
	}
	return replay.WritePNG(e, out)
}

func writeScene(e *engine.Engine, path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return e.DumpScene(f)
}
