package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hlasm-tools/hlasmcore/internal/library"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/task"
	"github.com/hlasm-tools/hlasmcore/pkg/analyzer"
)

// loadLibrary builds a library.MapProvider from every regular file in dir,
// keyed by filename without extension (the member name a COPY/macro-call
// statement would name), for a CLI run that needs COPY or macro members
// resolved from disk. Returns library.None if dir is empty.
func loadLibrary(dir string) (library.Provider, error) {
	if dir == "" {
		return library.None, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	provider := library.NewMapProvider()

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		path := filepath.Join(dir, e.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		provider.Set(name, library.Result{
			Text:     string(data),
			Location: reslocation.New("file://" + path),
		})
	}

	return provider, nil
}

// runAnalysis reads path, builds Options from the shared CLI flags and
// drives Analyze's Task to completion. Every suspension this CLI's
// library provider produces is already a completed Future (MapProvider's
// GetLibrary never really suspends), so the driving loop never needs to
// wait on anything between Step and Resume; a host backed by a genuinely
// asynchronous library.Provider would wait for the pending Future to
// complete before calling Resume.
func runAnalysis(path string) (*analyzer.Result, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lib, err := loadLibrary(libraryDir)
	if err != nil {
		return nil, err
	}

	log := setupLogging()

	opts := analyzer.Options{
		FileLocation:            reslocation.New("file://" + path),
		LibraryProvider:         lib,
		AsmOption:               true,
		CollectHighlightingInfo: true,
		ParsingOpenCode:         true,
		MaxDiagnostics:          1000,
		Log:                     log,
	}

	t := analyzer.Analyze(string(text), opts)

	for {
		switch t.Step() {
		case task.StatusFinished:
			return t.Result()
		case task.StatusSuspended:
			t.Resume()
		}
	}
}
