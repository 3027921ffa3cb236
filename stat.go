package roarchive

import (
	"os"
	"time"
)

// fileStamp is the modification state of a container path.
// The zero stamp stands for a path that could not be stat'ed.
type fileStamp struct {
	modTime time.Time
	size    int64
	ok      bool
}

func statStamp(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size(), ok: true}
}

func (s fileStamp) differs(other fileStamp) bool {
	if s.ok != other.ok {
		return true
	}
	return s.size != other.size || !s.modTime.Equal(other.modTime)
}
