package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pyc-lang/pyc/compiler"
)

type BuildConfig struct {
	OutDir  string
	Runtime RuntimeOptions
	Verbose bool
}

// collectSources expands directories into the source files they hold.
// No arguments means the current directory.
func collectSources(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			// TODO compile within subdirectories too
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), PYC_SUFFIX) {
				continue
			}
			files = append(files, filepath.Join(arg, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found", PYC_SUFFIX)
	}
	return files, nil
}

// compileFile compiles one unit. Each diagnostic is reported as
// "<file>: <err>" on w.
func compileFile(w io.Writer, path string) (string, bool) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "Error reading %s: %v\n", path, err)
		return "", false
	}
	code, errs := compiler.CompileSource(path, string(source))
	for _, e := range errs {
		fmt.Fprintf(w, "%s: %s\n", path, e)
	}
	return code, len(errs) == 0
}

func unitName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), PYC_SUFFIX)
}

// Build compiles every file into cfg.OutDir and returns how many units
// failed. A failing unit is skipped and the others are still built. The
// output directory stays locked for the whole build.
func Build(w io.Writer, cfg BuildConfig, files []string) (int, error) {
	logf := func(format string, args ...any) {
		if cfg.Verbose {
			fmt.Fprintf(w, format, args...)
		}
	}
	if cfg.Runtime.CC != "" && cfg.Runtime.SrcDir == "" {
		return 0, fmt.Errorf("building executables with %s needs a runtime directory (--runtime or %s)", cfg.Runtime.CC, RUNTIME_ENV)
	}

	lock, err := lockDir(cfg.OutDir)
	if err != nil {
		return 0, err
	}
	defer lock.Unlock()

	var rt *Runtime
	if cfg.Runtime.SrcDir != "" {
		if rt, err = prepareRuntime(cfg.OutDir, cfg.Runtime, logf); err != nil {
			return 0, err
		}
		if err := exportHeaders(rt, cfg.OutDir); err != nil {
			return 0, err
		}
	}

	failed := 0
	for _, file := range files {
		logf("Compiling %s\n", file)
		code, ok := compileFile(w, file)
		if !ok {
			fmt.Fprintf(w, "⚠️ Skipping %s\n", file)
			failed++
			continue
		}
		name := unitName(file)
		outPath := filepath.Join(cfg.OutDir, name+C_SUFFIX)
		if err := os.WriteFile(outPath, []byte(code), 0644); err != nil {
			fmt.Fprintf(w, "⚠️ Error writing C to %s: %v\n", outPath, err)
			failed++
			continue
		}
		if cfg.Runtime.CC == "" {
			fmt.Fprintf(w, "✅ Successfully compiled %s to %s\n", file, outPath)
			continue
		}
		binFile := filepath.Join(cfg.OutDir, name)
		if err := genBinary(cfg.Runtime, rt, outPath, binFile); err != nil {
			fmt.Fprintf(w, "⚠️ Binary generation failed for %s: %v\n", file, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "✅ Successfully built binary for %s: %s\n", file, binFile)
	}
	return failed, nil
}

// genBinary compiles the generated C against the prepared runtime objects.
func genBinary(opts RuntimeOptions, rt *Runtime, cFile, binFile string) error {
	args := runtimeCompileFlags(opts.Opt, opts.March)
	args = append(args, "-I", rt.Dir, cFile)
	args = append(args, rt.Objs...)
	if runtime.GOOS == "darwin" {
		args = append(args, "-Wl,-dead_strip")
	} else {
		args = append(args, "-Wl,--gc-sections")
	}
	args = append(args, "-o", binFile)

	if output, err := exec.Command(opts.CC, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("linking failed: %s\n%s", err, string(output))
	}
	return nil
}

// Check compiles every file without writing anything and returns how many
// units failed.
func Check(w io.Writer, files []string) int {
	failed := 0
	for _, file := range files {
		if _, ok := compileFile(w, file); !ok {
			failed++
			continue
		}
		fmt.Fprintf(w, "✅ %s\n", file)
	}
	return failed
}

// Emit writes the C text of one file to w.
func Emit(w io.Writer, path string) error {
	code, ok := compileFile(w, path)
	if !ok {
		return fmt.Errorf("compiling %s failed", path)
	}
	_, err := io.WriteString(w, code)
	return err
}
