package overrides

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/JillVernus/screentimed/internal/settings"
	"github.com/fsnotify/fsnotify"
)

// Watcher applies a JSON override file into the settings store and
// re-applies it whenever the file changes. This is the escape hatch for
// fixing a locked-out machine: drop a file with a new passcode or limit
// and the daemon picks it up without a restart.
type Watcher struct {
	store   *settings.Store
	file    string
	watcher *fsnotify.Watcher
}

// New creates a watcher for file. The file is optional; a missing file
// is not an error.
func New(store *settings.Store, file string) *Watcher {
	return &Watcher{store: store, file: file}
}

// Start applies the file once if present, then begins watching for
// changes.
func (w *Watcher) Start() error {
	if err := w.apply(); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️ Failed to apply settings override: %v", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	base := filepath.Base(w.file)

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// We watch the directory; ignore unrelated files.
				if filepath.Base(event.Name) != base {
					continue
				}

				// Editors often replace files via atomic rename/create.
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					log.Printf("📝 Settings override file updated, applying...")
					if err := w.apply(); err != nil {
						log.Printf("⚠️ Failed to apply settings override: %v", err)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️ Settings override watcher error: %v", err)
			}
		}
	}()

	// Watch the directory so we see the file being created later
	dir := filepath.Dir(w.file)
	if err := watcher.Add(dir); err != nil {
		return watcher.Add(w.file)
	}
	return nil
}

// Stop closes the underlying watcher.
func (w *Watcher) Stop() {
	if w.watcher != nil {
		w.watcher.Close()
	}
}

// apply reads the override file and writes every known key it contains
// into the store. Unknown keys are skipped with a warning instead of
// failing the whole file.
func (w *Watcher) apply() error {
	data, err := os.ReadFile(w.file)
	if err != nil {
		return err
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}

	known := settings.KnownKeys()
	applied := 0
	for k, v := range values {
		if !known[k] {
			log.Printf("⚠️ Ignoring unknown override key %q", k)
			continue
		}
		if err := w.store.Set(k, v); err != nil {
			return err
		}
		applied++
	}
	if applied > 0 {
		log.Printf("✅ Applied %d settings from %s", applied, w.file)
	}
	return nil
}
