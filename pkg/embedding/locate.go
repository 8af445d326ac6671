package embedding

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Resolve turns a vector source locator into a local file path. Locators
// are plain paths, glob patterns ("vectors/**/wiki.en.vec*", first match in
// lexical order wins) or http(s) URLs, which are downloaded into cacheDir
// once and reused afterwards.
func Resolve(ctx context.Context, locator, cacheDir string) (string, error) {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return Fetch(ctx, locator, cacheDir)
	}
	if !strings.ContainsAny(locator, "*?[{") {
		return locator, nil
	}
	matches, err := doublestar.FilepathGlob(locator)
	if err != nil {
		return "", fmt.Errorf("bad vector pattern %q: %w", locator, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no vector file matches %q", locator)
	}
	sort.Strings(matches)
	return matches[0], nil
}

// Fetch downloads rawURL into cacheDir unless the decompressed file is
// already there, and returns the local path.
func Fetch(ctx context.Context, rawURL, cacheDir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("cannot derive a file name from %s", rawURL)
	}
	if cacheDir == "" {
		cacheDir = "."
	}
	dest := filepath.Join(cacheDir, TrimCompression(name))
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", err
	}
	if err := download(ctx, rawURL, name, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func download(ctx context.Context, rawURL, name, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "lexgraph")

	// Vector dumps run to several GB; only the connection phase is bounded.
	client := &http.Client{Transport: &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: 30 * time.Second,
	}}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	body, err := Decompress(name, resp.Body)
	if err != nil {
		return err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
