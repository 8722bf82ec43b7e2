// Command validate checks quest definition files against the campaign level
// chain before they ship. With --watch it revalidates on every file change.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/jwebster45206/campaign-engine/pkg/levels"
	"github.com/jwebster45206/campaign-engine/pkg/quest"
)

func main() {
	args := os.Args[1:]
	watch := false
	var paths []string
	for _, a := range args {
		if a == "--watch" || a == "-w" {
			watch = true
			continue
		}
		paths = append(paths, a)
	}

	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [--watch] <quests.json | dir> [...]\n", os.Args[0])
		os.Exit(1)
	}

	if err := validateAll(paths); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		if !watch {
			os.Exit(1)
		}
	} else {
		fmt.Println("Quest files are valid!")
	}

	if watch {
		if err := watchAndValidate(paths); err != nil {
			fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
			os.Exit(1)
		}
	}
}

// validateAll loads every quest file under the given paths, merges them with
// the built-in campaign and rebuilds the registry so cross references are
// checked too.
func validateAll(paths []string) error {
	files, err := expand(paths)
	if err != nil {
		return err
	}

	quests := quest.DefaultQuests()
	for _, f := range files {
		loaded, err := validateFile(f)
		if err != nil {
			return err
		}
		quests = append(quests, loaded...)
	}

	reg, err := quest.NewRegistry(quests)
	if err != nil {
		return fmt.Errorf("registry validation: %w", err)
	}

	chain := levels.DefaultChain()
	var errs []string
	for _, q := range reg.All() {
		if chain.Get(q.LevelID) == nil {
			errs = append(errs, fmt.Sprintf("quest %q references unknown level %q", q.ID, q.LevelID))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("level chain errors:\n%s", strings.Join(errs, "\n"))
	}
	return nil
}

func validateFile(filename string) ([]quest.Quest, error) {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return nil, fmt.Errorf("quest file must have .json extension: %s", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("file %s contains invalid JSON", filename)
	}

	loaded, err := quest.LoadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("file %s: %w", filename, err)
	}
	return loaded, nil
}

// expand resolves directories to the .json files inside them.
func expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.json"))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}

// watchAndValidate revalidates whenever a watched file or directory changes.
func watchAndValidate(paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, p := range paths {
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}
	fmt.Println("Watching for changes...")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fmt.Printf("\nChange detected: %s\n", event.Name)
			if err := validateAll(paths); err != nil {
				fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			} else {
				fmt.Println("Quest files are valid!")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
		}
	}
}
