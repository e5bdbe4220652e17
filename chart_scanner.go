package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/remeh/sizedwaitgroup"

	"bms-hero/internal/bmsparse"
	"bms-hero/internal/chartprint"
)

var chartExtensions = map[string]bool{
	".bms": true,
	".bme": true,
	".bml": true,
	".pms": true,
}

type chartSummary struct {
	path     string
	size     int64
	title    string
	bars     int
	commands int
	length   float64
	err      error
}

// scanCharts compiles every chart below dir and prints a summary line for
// each. It returns the number of charts that failed.
func scanCharts(dir string) (int, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && chartExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logDebug("scanning %d charts in %s", len(paths), dir)

	var (
		mu      sync.Mutex
		results = make([]chartSummary, 0, len(paths))
	)
	swg := sizedwaitgroup.New(runtime.NumCPU())
	for _, p := range paths {
		swg.Add()
		go func(path string) {
			defer swg.Done()
			s := summarizeChart(path)
			mu.Lock()
			results = append(results, s)
			mu.Unlock()
		}(p)
	}
	swg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].path < results[j].path })

	failed := 0
	var total int64
	for _, s := range results {
		rel, _ := filepath.Rel(dir, s.path)
		if s.err != nil {
			failed++
			logError("%s: %v", rel, s.err)
			continue
		}
		total += s.size
		fmt.Printf("%-40s %8s %4d bars %8s cmds %10s  %s\n",
			rel, humanize.Bytes(uint64(s.size)), s.bars, humanize.Comma(int64(s.commands)),
			chartprint.Duration(s.length), s.title)
	}
	fmt.Printf("%d charts, %s, %d failed\n", len(results), humanize.Bytes(uint64(total)), failed)
	return failed, nil
}

func summarizeChart(path string) chartSummary {
	s := chartSummary{path: path}
	if info, err := os.Stat(path); err == nil {
		s.size = info.Size()
	}
	im, err := bmsparse.ImportFile(path)
	if err != nil {
		s.err = err
		return s
	}
	tl, err := im.Timings()
	if err != nil {
		s.err = err
		return s
	}
	chart := im.Compile()
	s.title = im.Title
	s.bars = chart.BarCount()
	s.commands = chart.Len()
	s.length = chartprint.Length(chart, tl)
	return s
}
