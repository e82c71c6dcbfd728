// semadump inspects a Lua workspace through the semantic core's module
// topology: it enumerates sources, derives their module paths from the
// configured require patterns, prints the dependency-aware analysis
// order, and optionally reports on a persisted analysis cache.
//
// The concrete-syntax parser is an external collaborator, so semadump
// works from workspace structure alone; wiring a parser in turns the
// same database into a full semantic host.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/emmylua-go/semacore/internal/analyze"
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/luaconfig"
	"github.com/emmylua-go/semacore/internal/persist"
	"github.com/emmylua-go/semacore/internal/vfs"
)

var (
	configPath = flag.String("config", "", "path to a YAML config file (optional)")
	cachePath  = flag.String("cache", "", "path to a persisted analysis cache to report on")
	noColor    = flag.Bool("no-color", false, "disable colored output")
)

func main() {
	flag.Parse()
	root := "."
	if flag.NArg() > 0 {
		root = flag.Arg(0)
	}
	if err := run(root); err != nil {
		log.Fatalf("semadump: %v", err)
	}
}

func colorize() bool {
	if *noColor {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func run(root string) error {
	cfg := luaconfig.Default()
	if *configPath != "" {
		loaded, err := luaconfig.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	start := time.Now()
	v := vfs.NewMemVFS()
	v.UpdateConfig(cfg)
	db := index.NewDbIndex(v, cfg)

	var files []ids.FileId
	var totalBytes int64
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		if !hasLuaExtension(cfg, path) {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		totalBytes += int64(len(src))
		id := v.Load(path, string(src), nil)
		isMeta := strings.HasPrefix(string(src), "---@meta")
		analyze.RegisterModule(db, id, root, index.WorkspaceMain, isMeta)
		files = append(files, id)
		return nil
	})
	if err != nil {
		return err
	}

	bold, reset := "", ""
	if colorize() {
		bold, reset = "\033[1m", "\033[0m"
	}

	fmt.Printf("%sworkspace%s %s: %s files, %s\n",
		bold, reset, root,
		humanize.Comma(int64(len(files))),
		humanize.Bytes(uint64(totalBytes)))

	order := db.GetBestAnalysisOrder(files)
	fmt.Printf("%sanalysis order%s (meta first, then dependency-topological):\n", bold, reset)
	for i, f := range order {
		info, _ := db.Module.ModuleOf(f)
		name := "?"
		if info != nil {
			name = info.FullModuleName
			if info.IsMeta {
				name += " [meta]"
			}
		}
		fmt.Printf("  %3d. %s\n", i+1, name)
	}

	printModuleTree(db, files, bold, reset)

	if *cachePath != "" {
		if err := reportCache(*cachePath, bold, reset); err != nil {
			return err
		}
	}

	fmt.Printf("done in %s\n", humanize.RelTime(start, time.Now(), "", ""))
	return nil
}

func hasLuaExtension(cfg *luaconfig.Config, path string) bool {
	for _, ext := range cfg.Runtime.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func printModuleTree(db *index.DbIndex, files []ids.FileId, bold, reset string) {
	names := make([]string, 0, len(files))
	for _, f := range files {
		if info, ok := db.Module.ModuleOf(f); ok {
			names = append(names, info.FullModuleName)
		}
	}
	sort.Strings(names)
	fmt.Printf("%smodules%s:\n", bold, reset)
	for _, n := range names {
		depth := strings.Count(n, ".")
		fmt.Printf("  %s%s\n", strings.Repeat("  ", depth), n)
	}
}

func reportCache(path, bold, reset string) error {
	store, err := persist.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	stats, err := store.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("%scache%s %s:\n", bold, reset, path)
	kinds := make([]string, 0, len(stats))
	for k := range stats {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("  %-10s %s entries\n", k, humanize.Comma(int64(stats[k])))
	}
	return nil
}
