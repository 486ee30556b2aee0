package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Output receives the formatted exchanges of a dumped client.
type Output interface {
	Write(name string, contents string)
}

// DirOutput writes every exchange to its own file in a directory.
type DirOutput struct {
	directory string
}

// NewDirOutput clears the directory of previous dumps and creates it again.
func NewDirOutput(dir string) (DirOutput, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return DirOutput{}, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return DirOutput{}, err
	}
	return DirOutput{directory: dir}, nil
}

func (o DirOutput) Write(name string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, name), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write http dump", "name", name, "err", err)
	}
}

// MemoryOutput keeps dumps in memory.
type MemoryOutput struct {
	mutex sync.Mutex
	dumps map[string]string
}

func NewMemoryOutput() *MemoryOutput {
	return &MemoryOutput{dumps: map[string]string{}}
}

func (o *MemoryOutput) Write(name string, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.dumps[name] = contents
}

func (o *MemoryOutput) Dumps() map[string]string {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	out := make(map[string]string, len(o.dumps))
	for k, v := range o.dumps {
		out[k] = v
	}
	return out
}
