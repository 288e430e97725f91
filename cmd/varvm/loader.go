package main

import (
	"fmt"
	"os"
	"path/filepath"

	"varvm/internal/assembler"
	"varvm/internal/stdlib"
)

// cliLoader resolves `include` statements first against stdlibDir (when
// set, so an on-disk copy takes precedence over the embedded one), then
// against the bundled stdlib's lookup names, then against the filesystem
// relative to the including file.
type cliLoader struct {
	stdlibDir string
	disk      assembler.FileLoader
}

func newCLILoader(stdlibDir string) cliLoader {
	return cliLoader{
		stdlibDir: stdlibDir,
		disk: assembler.FileLoader{Read: func(path string) (string, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return "", fmt.Errorf("read %s: %w", path, err)
			}
			return string(data), nil
		}},
	}
}

func (l cliLoader) Load(fromFile, path string) (string, string, error) {
	if l.stdlibDir != "" {
		if src, err := os.ReadFile(filepath.Join(l.stdlibDir, path)); err == nil {
			return "stdlib:" + path, string(src), nil
		}
	}
	if src, ok := stdlib.Get(path); ok {
		return "stdlib:" + path, src, nil
	}
	return l.disk.Load(fromFile, path)
}
