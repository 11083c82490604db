package model

import (
	"sort"
	"sync"

	"github.com/boyter/gocodewalker"
)

// DeclarationExtensions are the file extensions Discover picks up.
var DeclarationExtensions = []string{"yaml", "yml", "json", "model"}

// Discover walks root for declaration files, respecting .gitignore and
// .ignore files. The result is sorted so that class order stays stable.
func Discover(root string) ([]string, error) {
	fileListQueue := make(chan *gocodewalker.File, 100)

	fileWalker := gocodewalker.NewFileWalker(root, fileListQueue)
	fileWalker.AllowListExtensions = DeclarationExtensions

	// the handler runs on the walker's goroutines; keep the first error
	var (
		errMu   sync.Mutex
		walkErr error
	)
	fileWalker.SetErrorHandler(func(e error) bool {
		errMu.Lock()
		defer errMu.Unlock()
		if walkErr == nil {
			walkErr = e
		}
		return true
	})

	var (
		wg    sync.WaitGroup
		paths []string
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for f := range fileListQueue {
			paths = append(paths, f.Location)
		}
	}()

	if err := fileWalker.Start(); err != nil {
		return nil, err
	}

	wg.Wait()
	errMu.Lock()
	defer errMu.Unlock()
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(paths)
	return paths, nil
}
