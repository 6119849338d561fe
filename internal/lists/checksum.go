package lists

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"hash"
	"io"
	"os"

	"github.com/dnsblockd/dnsblockd/internal/log"
	"github.com/dnsblockd/dnsblockd/internal/utils"
)

// checksumReader calculates the MD5 checksum of data as it is read. The
// checksum is used only for change detection on cached lists, so writes to
// disk can be skipped when a list did not change between refreshes.
type checksumReader struct {
	reader   io.Reader
	checksum hash.Hash
}

func newChecksumReader(reader io.Reader) *checksumReader {
	return &checksumReader{
		reader:   reader,
		checksum: md5.New(),
	}
}

// Read reads data from the underlying reader and updates the checksum.
func (p *checksumReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 {
		if _, checksumErr := p.checksum.Write(buf[:n]); checksumErr != nil {
			return n, checksumErr
		}
	}
	return n, err
}

// Checksum returns the calculated MD5 checksum as a hex string.
func (p *checksumReader) Checksum() string {
	return hex.EncodeToString(p.checksum.Sum(nil))
}

// isFileChanged reports whether the cached file at filePath differs from the
// data that passed through the checksum reader. A missing or unreadable
// checksum sidecar counts as changed.
func isFileChanged(proxy *checksumReader, filePath string) bool {
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return true
	}

	checksumFilePath := filePath + ".md5"
	checksum, err := readChecksum(checksumFilePath)
	if err != nil {
		log.Debugf("Failed to read checksum file '%s', assuming it's changed: %v", checksumFilePath, err)
		return true
	}
	return string(checksum) != proxy.Checksum()
}

func readChecksum(checksumFilePath string) ([]byte, error) {
	if checksumFile, err := os.Open(checksumFilePath); err != nil {
		return nil, err
	} else {
		defer utils.CloseOrWarn(checksumFile)

		return io.ReadAll(checksumFile)
	}
}

func writeChecksum(proxy *checksumReader, filePath string) error {
	checksumFilePath := filePath + ".md5"
	return os.WriteFile(checksumFilePath, []byte(proxy.Checksum()), 0644)
}
