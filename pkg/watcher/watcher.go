package watcher

import (
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches source text files for changes.
//
// Files are watched through their parent directory, so an editor that
// saves by writing a new file and renaming it over the old one is still
// noticed.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	mu      sync.Mutex
	files   map[string]*watchedFile
	dirs    map[string]int
	done    chan struct{}
	wg      sync.WaitGroup
}

type watchedFile struct {
	hash     string
	callback func(string)
	debounce time.Duration
	timer    *time.Timer
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher() (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &FileWatcher{
		watcher: watcher,
		files:   make(map[string]*watchedFile),
		dirs:    make(map[string]int),
		done:    make(chan struct{}),
	}, nil
}

// Watch calls callback whenever the content of path changes. Events that
// arrive within debounceDuration of each other are collapsed into one call.
func (fw *FileWatcher) Watch(path string, callback func(string), debounceDuration time.Duration) error {
	path = filepath.Clean(path)

	hash, err := fileHash(path)
	if err != nil {
		return fmt.Errorf("failed to get initial hash: %w", err)
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, exists := fw.files[path]; exists {
		return fmt.Errorf("already watching %s", path)
	}

	dir := filepath.Dir(path)
	if fw.dirs[dir] == 0 {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory: %w", err)
		}
	}
	fw.dirs[dir]++

	fw.files[path] = &watchedFile{
		hash:     hash,
		callback: callback,
		debounce: debounceDuration,
	}
	return nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start() {
	fw.wg.Add(1)
	go fw.watchLoop()
}

func (fw *FileWatcher) watchLoop() {
	defer fw.wg.Done()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fw.schedule(filepath.Clean(event.Name))

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️  Watcher error: %v", err)

		case <-fw.done:
			return
		}
	}
}

// schedule runs the change check for path now or after its debounce delay
func (fw *FileWatcher) schedule(path string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	file, ok := fw.files[path]
	if !ok {
		return
	}

	if file.debounce == 0 {
		go fw.handleFileChange(path)
		return
	}

	if file.timer != nil {
		file.timer.Stop()
	}
	file.timer = time.AfterFunc(file.debounce, func() {
		fw.handleFileChange(path)
	})
}

// handleFileChange calls the callback if the content hash changed
func (fw *FileWatcher) handleFileChange(path string) {
	newHash, err := fileHash(path)
	if err != nil {
		// the file may be between a remove and a rename
		log.Printf("⚠️  Failed to get hash for %s: %v", path, err)
		return
	}

	fw.mu.Lock()
	file, ok := fw.files[path]
	if !ok || file.hash == newHash {
		fw.mu.Unlock()
		return
	}
	file.hash = newHash
	file.timer = nil
	callback := file.callback
	fw.mu.Unlock()

	log.Printf("🔄 File changed: %s", path)
	callback(path)
}

// fileHash calculates the SHA-256 hash of a file
func fileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// Close stops the file watcher and pending debounce timers
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	select {
	case <-fw.done:
		fw.mu.Unlock()
		return nil
	default:
		close(fw.done)
	}
	for _, file := range fw.files {
		if file.timer != nil {
			file.timer.Stop()
		}
	}
	fw.mu.Unlock()

	err := fw.watcher.Close()
	fw.wg.Wait()
	return err
}

// Unwatch stops watching a specific file
func (fw *FileWatcher) Unwatch(path string) error {
	path = filepath.Clean(path)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	file, ok := fw.files[path]
	if !ok {
		return fmt.Errorf("not watching %s", path)
	}
	if file.timer != nil {
		file.timer.Stop()
	}
	delete(fw.files, path)

	dir := filepath.Dir(path)
	fw.dirs[dir]--
	if fw.dirs[dir] > 0 {
		return nil
	}
	delete(fw.dirs, dir)
	return fw.watcher.Remove(dir)
}
