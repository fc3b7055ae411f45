// Command tantoc is the Tanto compiler frontend CLI: a single cobra
// binary exposing build (with a --watch rebuild mode), serve (language
// server), map, and version subcommands over internal/frontend's Compile
// entry point.
package main

import (
	"context"
	"fmt"
	"go/token"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.lsp.dev/jsonrpc2"

	"github.com/tenstorrent/ronin-sub003/internal/config"
	"github.com/tenstorrent/ronin-sub003/internal/frontend"
	"github.com/tenstorrent/ronin-sub003/internal/lspsrv"
	"github.com/tenstorrent/ronin-sub003/internal/sourcemap"
	"github.com/tenstorrent/ronin-sub003/internal/ui"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "tantoc",
		Short:        "Tanto tile-kernel compiler frontend",
		Version:      version,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintHelp(version)
		},
	}
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		ui.PrintHelp(version)
	})

	rootCmd.AddCommand(buildCmd(), serveCmd(), mapCmd(), versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print tantoc's version",
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintVersionInfo(version)
		},
	}
}

func buildCmd() *cobra.Command {
	var (
		output  string
		watch   bool
		defines []string
		params  []string
	)

	cmd := &cobra.Command{
		Use:   "build [file.tanto]...",
		Short: "Lower Tanto kernel sources into target C++",
		Long: `Build lowers one or more Tanto kernel translation units (.tanto) into
target-language kernel C++ (.cpp), through the matcher/rewriter pipeline:
parse, dead-code elimination, math-init analysis, rule lowering, finalize.

The compile mode is inferred per file from its name: a "_read.tanto" or
"_write.tanto" suffix selects the matching dataflow pipeline; everything
else compiles under the compute pipeline.

Example:
  tantoc build add.tanto
  tantoc build -o out/add.cpp add.tanto
  tantoc build --watch add.tanto
  tantoc build --define TILE_DIM=32 add.tanto
  tantoc build --param 0=4 add.tanto`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args, output, watch, defines, params)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (single-file builds only; default replaces .tanto with .cpp)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Watch the given paths and rebuild on change")
	cmd.Flags().StringArrayVar(&defines, "define", nil, "NAME=VALUE, emitted as a #define in generated output (repeatable)")
	cmd.Flags().StringArrayVar(&params, "param", nil, "INDEX=VALUE, supplies a top-level \"param\" declaration's value (repeatable)")

	return cmd
}

func runBuild(files []string, output string, watch bool, defineFlags, paramFlags []string) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	defines, err := parseDefines(cfg, defineFlags)
	if err != nil {
		return err
	}
	params, err := parseParams(paramFlags)
	if err != nil {
		return err
	}

	buildUI := ui.NewBuildOutput()
	buildUI.PrintHeader(version)
	buildUI.PrintBuildStart(len(files))

	if err := buildAll(files, output, buildUI, cfg, defines, params); err != nil {
		buildUI.PrintSummary(false, err.Error())
		return err
	}
	buildUI.PrintSummary(true, "")

	if !watch {
		return nil
	}

	buildUI.PrintInfo("Watching for changes (Ctrl-C to stop)...")
	return watchAndRebuild(files, output, cfg, defines, params)
}

func buildAll(files []string, output string, buildUI *ui.BuildOutput, cfg *config.Config, defines []frontend.Define, params []frontend.ParamValue) error {
	for _, file := range files {
		if err := buildFile(file, output, buildUI, cfg, defines, params); err != nil {
			buildUI.PrintError(err.Error())
			return err
		}
	}
	return nil
}

func buildFile(inputPath, outputOverride string, buildUI *ui.BuildOutput, cfg *config.Config, defines []frontend.Define, params []frontend.ParamValue) error {
	outputPath := outputOverride
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath)
	}
	buildUI.PrintFileStart(inputPath, outputPath)

	src, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}

	mode := modeForPath(inputPath)

	start := time.Now()
	out, errs, ok := frontend.Compile(mode, defines, params, string(src))
	duration := time.Since(start)

	if !ok {
		buildUI.PrintStep(ui.Step{Name: "Compile", Status: ui.StepError, Duration: duration, Message: strings.Join(errs, "; ")})
		return fmt.Errorf("%s: %s", inputPath, strings.Join(errs, "; "))
	}
	buildUI.PrintStep(ui.Step{Name: "Compile", Status: ui.StepSuccess, Duration: duration})

	if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	if err := writeSourceMap(inputPath, outputPath, cfg); err != nil {
		buildUI.PrintWarning(err.Error())
	}

	buildUI.PrintStep(ui.Step{Name: "Write", Status: ui.StepSuccess, Message: fmt.Sprintf("%d bytes written", len(out))})
	return nil
}

// writeSourceMap emits a v3 source map for inputPath→outputPath at the
// precision line-to-line translation offers: until the rewriter
// threads per-node position carry-through into finalize's output
// builder, tantoc can only promise a whole-file mapping (generated
// line 1 maps to source line 1), which is still enough for "tantoc
// map" to resolve a build error's file identity.
func writeSourceMap(inputPath, outputPath string, cfg *config.Config) error {
	if !cfg.SourceMap.Enabled || cfg.SourceMap.Format == config.FormatNone {
		return nil
	}

	gen := sourcemap.NewGenerator(inputPath, filepath.Base(outputPath))
	gen.AddMapping(token.Position{Line: 1, Column: 1}, token.Position{Line: 1, Column: 1})

	switch cfg.SourceMap.Format {
	case config.FormatInline, config.FormatBoth:
		inline, err := gen.GenerateInline()
		if err != nil {
			return fmt.Errorf("failed to generate source map: %w", err)
		}
		f, err := os.OpenFile(outputPath, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to append source map: %w", err)
		}
		defer f.Close()
		_, err = f.WriteString(inline + "\n")
		if err != nil || cfg.SourceMap.Format == config.FormatInline {
			return err
		}
		fallthrough
	case config.FormatSeparate:
		data, err := gen.Generate()
		if err != nil {
			return fmt.Errorf("failed to generate source map: %w", err)
		}
		if err := os.WriteFile(outputPath+".map", data, 0o644); err != nil {
			return fmt.Errorf("failed to write source map: %w", err)
		}
	}
	return nil
}

func defaultOutputPath(inputPath string) string {
	if strings.HasSuffix(inputPath, ".tanto") {
		return strings.TrimSuffix(inputPath, ".tanto") + ".cpp"
	}
	return inputPath + ".cpp"
}

func modeForPath(path string) frontend.Mode {
	name := filepath.Base(path)
	switch {
	case strings.HasSuffix(name, "_read.tanto"):
		return frontend.ModeRead
	case strings.HasSuffix(name, "_write.tanto"):
		return frontend.ModeWrite
	default:
		return frontend.ModeCompute
	}
}

func parseDefines(cfg *config.Config, flags []string) ([]frontend.Define, error) {
	var defines []frontend.Define
	for name, value := range cfg.Build.Defines {
		defines = append(defines, frontend.Define{Name: name, Value: value})
	}
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --define %q, expected NAME=VALUE", f)
		}
		defines = append(defines, frontend.Define{Name: name, Value: value})
	}
	return defines, nil
}

func parseParams(flags []string) ([]frontend.ParamValue, error) {
	var params []frontend.ParamValue
	for _, f := range flags {
		idxStr, valStr, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --param %q, expected INDEX=VALUE", f)
		}
		idx, err := strconv.ParseUint(idxStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid --param index %q: %w", idxStr, err)
		}
		val, err := strconv.ParseUint(valStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid --param value %q: %w", valStr, err)
		}
		params = append(params, frontend.ParamValue{Index: uint32(idx), Value: uint32(val)})
	}
	return params, nil
}

// watchAndRebuild rebuilds every listed file whenever fsnotify reports
// a write to it or to its containing directory.
func watchAndRebuild(files []string, output string, cfg *config.Config, defines []frontend.Define, params []frontend.ParamValue) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	for _, f := range files {
		dir := filepath.Dir(f)
		if !watched[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			watched[dir] = true
		}
	}

	buildUI := ui.NewBuildOutput()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !isWatchedFile(files, event.Name) {
				continue
			}
			buildUI.PrintInfo(fmt.Sprintf("Change detected: %s", event.Name))
			if err := buildFile(event.Name, output, buildUI, cfg, defines, params); err != nil {
				buildUI.PrintError(err.Error())
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			buildUI.PrintWarning(fmt.Sprintf("watcher error: %v", err))
		}
	}
}

func isWatchedFile(files []string, name string) bool {
	for _, f := range files {
		if filepath.Clean(f) == filepath.Clean(name) {
			return true
		}
	}
	return false
}

func mapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map <sourcemap-or-output.cpp> <line> <column>",
		Short: "Resolve a generated position back to its original kernel source",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap(args[0], args[1], args[2])
		},
	}
}

func runMap(path, lineStr, colStr string) error {
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		return fmt.Errorf("invalid line %q: %w", lineStr, err)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil {
		return fmt.Errorf("invalid column %q: %w", colStr, err)
	}

	mapPath := path
	if !strings.HasSuffix(mapPath, ".map") {
		mapPath = path + ".map"
	}
	data, err := os.ReadFile(mapPath)
	if err != nil {
		return fmt.Errorf("failed to read source map %s: %w", mapPath, err)
	}

	c, err := sourcemap.NewConsumer(data)
	if err != nil {
		return err
	}
	pos, err := c.Source(line, col)
	if err != nil {
		return err
	}
	fmt.Printf("%s:%d:%d\n", pos.Filename, pos.Line, pos.Column)
	return nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tantoc language server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	logger := log.New(os.Stderr, "tantoc-lsp: ", log.LstdFlags)
	logger.Printf("starting tantoc-lsp (version %s)", version)

	server := lspsrv.NewServer(logger)

	rwc := &stdioConn{in: os.Stdin, out: os.Stdout}
	stream := jsonrpc2.NewStream(rwc)
	conn := jsonrpc2.NewConn(stream)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server.SetConn(conn, ctx)
	conn.Go(ctx, server.Handler())
	<-conn.Done()
	return nil
}

// stdioConn adapts stdin/stdout into the io.ReadWriteCloser jsonrpc2
// needs for a stdio transport.
type stdioConn struct {
	in  io.Reader
	out io.Writer
}

func (s *stdioConn) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s *stdioConn) Write(p []byte) (int, error) { return s.out.Write(p) }
func (s *stdioConn) Close() error                { return nil }
