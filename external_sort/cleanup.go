package extsort

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"recsort/common"
	"recsort/helpers"
)

// removeFiles removes every path, continuing past failures. Paths that are
// already gone are not an error.
func removeFiles(paths []string) error {
	var result *multierror.Error
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			result = multierror.Append(result, common.NewFileError("remove", path, err))
		}
	}
	return result.ErrorOrNil()
}

func isTempFile(name string) bool {
	if !strings.HasPrefix(name, common.TEMP_PREFIX) {
		return false
	}
	switch filepath.Ext(name) {
	case common.CHUNK_EXT, common.MANIFEST_EXT, common.TEMP_OUTPUT_EXT:
		return true
	}
	return false
}

/**
* SweepStale removes chunk, manifest and temp output files in dir whose last
* modification is older than olderThan. A sort that is still running touches
* its files continuously, so a generous threshold keeps live runs safe.
 */
func SweepStale(dir string, olderThan time.Duration, logger logrus.FieldLogger) ([]string, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	entries, err := helpers.GetDirEntries(dir)
	if err != nil {
		return nil, common.NewFileError("list", dir, err)
	}

	cutoff := time.Now().Add(-olderThan)
	var stale []string
	for _, entry := range entries {
		if entry.IsDir() || !isTempFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed concurrently
			continue
		}
		if info.ModTime().Before(cutoff) {
			stale = append(stale, filepath.Join(dir, entry.Name()))
		}
	}

	err = removeFiles(stale)
	if merr, ok := err.(*multierror.Error); ok {
		failed := make(map[string]bool)
		for _, e := range merr.Errors {
			if fe, ok := e.(*common.FileError); ok {
				failed[fe.Path] = true
			}
		}
		removed := stale[:0]
		for _, path := range stale {
			if !failed[path] {
				removed = append(removed, path)
			}
		}
		stale = removed
	}
	for _, path := range stale {
		logger.WithFields(logrus.Fields{"File": path}).Info("Removed stale temp file")
	}
	return stale, err
}
