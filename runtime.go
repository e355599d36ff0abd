package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pyc-lang/pyc/ctree"
)

const (
	RUNTIME_DIR  = "runtime"
	LOCK_FILE    = ".lock"
	HASH_FILE    = ".hash"
	OBJ_SUFFIX   = ".o"
	C_STD        = "-std=gnu11"
	FPIC         = "-fPIC"
	OS_WINDOWS   = "windows"
	DEFAULT_OPT  = "-O2"
	MARCH_PREFIX = "-march="
)

// runtimeFiles lists every file of the runtime library: headers first.
func runtimeFiles() []string {
	return append(append([]string{}, ctree.Headers...), ctree.RuntimeSources...)
}

// runtimeCompileFlags returns the flags used for the runtime objects. They
// take part in the cache hash, so changing them rebuilds the objects.
func runtimeCompileFlags(opt, march string) []string {
	flags := []string{opt, C_STD}
	if march != "" {
		if !strings.HasPrefix(march, MARCH_PREFIX) {
			march = MARCH_PREFIX + march
		}
		flags = append(flags, march)
	}
	if runtime.GOOS != OS_WINDOWS {
		flags = append(flags, FPIC)
	}
	return flags
}

// metadataHash hashes compiler settings and platform that affect runtime compilation.
func metadataHash(h hash.Hash, cc string, flags []string) {
	h.Write([]byte(cc))
	for _, flag := range flags {
		h.Write([]byte(flag))
	}
	h.Write([]byte(runtime.GOOS))
	h.Write([]byte(runtime.GOARCH))
}

// runtimeInfo hashes the runtime sources found in srcDir together with the
// compile settings. It fails if any runtime file is missing.
func runtimeInfo(srcDir, cc string, flags []string) (shortHash, fullHash string, err error) {
	h := sha256.New()
	metadataHash(h, cc, flags)
	for _, name := range runtimeFiles() {
		data, err := os.ReadFile(filepath.Join(srcDir, name))
		if err != nil {
			return "", "", fmt.Errorf("read runtime file: %w", err)
		}
		h.Write([]byte(name))
		h.Write(data)
	}
	fullHash = hex.EncodeToString(h.Sum(nil))
	return fullHash[:8], fullHash, nil
}

// Runtime is a prepared copy of the runtime library inside the output
// directory.
type Runtime struct {
	Dir  string   // holds the headers and sources
	Objs []string // compiled objects; empty unless a C compiler was given
}

// RuntimeOptions selects where the runtime comes from and how it is built.
type RuntimeOptions struct {
	SrcDir string // directory with the runtime headers and sources
	CC     string // C compiler; empty copies the sources only
	Opt    string
	March  string
}

// prepareRuntime copies the runtime library into outDir/runtime/<hash> and,
// with a C compiler configured, compiles it. The caller must hold the
// output directory lock. A completed copy is marked by its full hash and
// reused on later runs.
func prepareRuntime(outDir string, opts RuntimeOptions, logf func(string, ...any)) (*Runtime, error) {
	flags := runtimeCompileFlags(opts.Opt, opts.March)
	shortHash, fullHash, err := runtimeInfo(opts.SrcDir, opts.CC, flags)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{Dir: filepath.Join(outDir, RUNTIME_DIR, shortHash)}
	hashFile := filepath.Join(rt.Dir, HASH_FILE)

	if stored, err := os.ReadFile(hashFile); err == nil && string(stored) == fullHash {
		if opts.CC == "" {
			logf("Using cached runtime: %s\n", rt.Dir)
			return rt, nil
		}
		if objs, err := filepath.Glob(filepath.Join(rt.Dir, "*"+OBJ_SUFFIX)); err == nil && len(objs) == len(ctree.RuntimeSources) {
			logf("Using cached runtime: %s\n", rt.Dir)
			rt.Objs = objs
			return rt, nil
		}
	}
	// stale, partial or colliding copy
	if err := os.RemoveAll(rt.Dir); err != nil {
		return nil, fmt.Errorf("remove stale runtime: %w", err)
	}

	logf("Preparing runtime: %s\n", rt.Dir)
	if err := copyRuntime(opts.SrcDir, rt.Dir); err != nil {
		return nil, err
	}
	if opts.CC != "" {
		if rt.Objs, err = compileRuntime(rt.Dir, opts.CC, flags); err != nil {
			return nil, err
		}
	}
	// written last, so it marks a complete copy
	if err := os.WriteFile(hashFile, []byte(fullHash), 0644); err != nil {
		return nil, fmt.Errorf("write hash file: %w", err)
	}
	return rt, nil
}

func copyRuntime(srcDir, rtDir string) error {
	if err := os.MkdirAll(rtDir, 0755); err != nil {
		return fmt.Errorf("create runtime dir: %w", err)
	}
	for _, name := range runtimeFiles() {
		if err := Copy(filepath.Join(srcDir, name), filepath.Join(rtDir, name)); err != nil {
			return fmt.Errorf("copy runtime file %s: %w", name, err)
		}
	}
	return nil
}

// exportHeaders copies the runtime headers next to the emitted units, so
// their #include lines resolve without extra include paths.
func exportHeaders(rt *Runtime, outDir string) error {
	for _, name := range ctree.Headers {
		if err := Copy(filepath.Join(rt.Dir, name), filepath.Join(outDir, name)); err != nil {
			return fmt.Errorf("copy runtime header %s: %w", name, err)
		}
	}
	return nil
}

// compileRuntime compiles the runtime sources in rtDir and returns the object paths.
func compileRuntime(rtDir, cc string, flags []string) ([]string, error) {
	var objs []string
	for _, name := range ctree.RuntimeSources {
		src := filepath.Join(rtDir, name)
		obj := filepath.Join(rtDir, name+OBJ_SUFFIX)
		args := append(append([]string{}, flags...), "-I", rtDir, "-c", src, "-o", obj)
		if out, err := exec.Command(cc, args...).CombinedOutput(); err != nil {
			return nil, fmt.Errorf("compile %s: %v\n%s", src, err, out)
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

// lockDir takes the exclusive lock of an output directory, creating it first.
func lockDir(dir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	lock := flock.New(filepath.Join(dir, LOCK_FILE))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	return lock, nil
}
