package helpers

import (
	"os"
)

func GetDirEntries(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

func CreatePaths(path string) error {
	return os.MkdirAll(path, os.ModePerm)
}

func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
