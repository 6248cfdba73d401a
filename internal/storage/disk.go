package storage

import (
	"io/fs"
	"os"
	"path/filepath"
)

// sqliteSideFiles are the journal files SQLite keeps next to the database in WAL mode.
var sqliteSideFiles = []string{"-wal", "-shm", "-journal"}

// DiskUsage is the on-disk footprint of the document database and the suggest index.
type DiskUsage struct {
	DatabaseBytes int64 `json:"database_bytes"`
	IndexBytes    int64 `json:"index_bytes"`
}

// Total returns the combined size.
func (u DiskUsage) Total() int64 {
	return u.DatabaseBytes + u.IndexBytes
}

// MeasureDiskUsage sizes the database file (with its journal side files) and the index
// directory. Missing paths count as zero.
func MeasureDiskUsage(dbPath, indexPath string) (DiskUsage, error) {
	var u DiskUsage
	if dbPath != "" && dbPath != ":memory:" {
		for _, suffix := range append([]string{""}, sqliteSideFiles...) {
			n, err := pathSize(dbPath + suffix)
			if err != nil {
				return DiskUsage{}, err
			}
			u.DatabaseBytes += n
		}
	}
	n, err := pathSize(indexPath)
	if err != nil {
		return DiskUsage{}, err
	}
	u.IndexBytes = n
	return u, nil
}

// pathSize returns the size of a file, or the summed size of the files under a directory.
func pathSize(p string) (int64, error) {
	if p == "" {
		return 0, nil
	}
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	var total int64
	err = filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		total += fi.Size()
		return nil
	})
	return total, err
}
