package lists

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dnsblockd/dnsblockd/internal/config"
	"github.com/dnsblockd/dnsblockd/internal/errors"
	"github.com/dnsblockd/dnsblockd/internal/log"
)

// httpClient is shared by all downloads. Filter lists are large (EasyList
// alone is a few megabytes), so the timeout is generous.
var httpClient = &http.Client{Timeout: 2 * time.Minute}

// DownloadSource downloads a single source from its URL into the cache
// directory. Returns (changed, error) where changed indicates if the cache
// file was updated.
func DownloadSource(ctx context.Context, src *Source, cfg *config.Config) (bool, error) {
	if src.URL == "" {
		return false, fmt.Errorf("source %q has no URL configured", src.Name)
	}

	cacheDir := cfg.GetAbsCacheDir()
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return false, fmt.Errorf("failed to create cache directory: %v", err)
	}

	log.Infof("Downloading filter list %q from URL: %s", src.Name, src.URL)

	content, proxy, err := fetch(ctx, src.URL)
	if err != nil {
		return false, errors.NewSourceError(fmt.Sprintf("failed to download filter list %q", src.Name), err)
	}

	filePath := src.CachePath(cfg)

	if !isFileChanged(proxy, filePath) {
		log.Infof("Filter list %q is not changed, skipping write to disk", src.Name)
		return false, nil
	}

	if err := os.WriteFile(filePath, content, 0644); err != nil {
		return false, fmt.Errorf("failed to write list file to %s: %v", filePath, err)
	}
	if err := writeChecksum(proxy, filePath); err != nil {
		return false, fmt.Errorf("failed to write list checksum: %v", err)
	}

	log.Infof("Filter list %q downloaded successfully (%d bytes)", src.Name, len(content))
	return true, nil
}

// fetch retrieves the URL and returns the body along with its checksum reader.
func fetch(ctx context.Context, url string) ([]byte, *checksumReader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	proxy := newChecksumReader(resp.Body)
	content, err := io.ReadAll(proxy)
	if err != nil {
		return nil, nil, err
	}
	return content, proxy, nil
}

// DownloadAll downloads every URL source enabled by the configuration.
// Individual failures are logged and do not abort the remaining downloads.
func DownloadAll(ctx context.Context, cfg *config.Config) error {
	for _, src := range Plan(cfg) {
		if src.URL == "" {
			continue
		}

		if _, err := DownloadSource(ctx, src, cfg); err != nil {
			log.Errorf("Error downloading filter list %q: %v", src.Name, err)
			continue
		}
	}

	return nil
}
