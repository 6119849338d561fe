package utils

import (
	"io"

	"github.com/dnsblockd/dnsblockd/internal/log"
)

func CloseOrWarn(file io.Closer) {
	if err := file.Close(); err != nil {
		log.Warnf("Failed to close file: %v", err)
	}
}
