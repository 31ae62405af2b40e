package cart

import (
	"fmt"
	"hash/crc32"
	"path/filepath"
	"strings"
)

// Info describes a loaded program for logs and window titles.
type Info struct {
	Name  string // file name without extension
	Size  int    // bytes
	CRC32 uint32 // IEEE checksum of the image
}

// ParseInfo computes the Info of a program image.
func ParseInfo(name string, data []byte) Info {
	return Info{
		Name:  strings.TrimSuffix(name, filepath.Ext(name)),
		Size:  len(data),
		CRC32: crc32.ChecksumIEEE(data),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("%s (%d bytes, crc32 %08X)", i.Name, i.Size, i.CRC32)
}
