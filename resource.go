package stardict

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-stardict/stardict/internal/staterr"
)

// GetResource fetches an auxiliary file (image, audio, …) from the
// dictionary's res/ subdirectory. href is a forward-slash path; a
// leading "/" is stripped, and an empty or root-only href reports
// [ErrNoResourceFound].
func (d *Dictionary) GetResource(href string) ([]byte, error) {
	return getResource(d.dir, href)
}

// GetResource fetches an auxiliary file, see [Dictionary.GetResource].
func (d *CachedDictionary) GetResource(href string) ([]byte, error) {
	return getResource(d.dir, href)
}

// getResource implements the resource-fetch collaborator described at
// spec.md §6: the resolved filesystem path is
// <dictionary_dir>/res/<href components>.
func getResource(dir, href string) ([]byte, error) {
	href = strings.TrimPrefix(href, "/")
	if href == "" {
		return nil, staterr.New(staterr.KindNoResourceFound, href, nil)
	}

	elems := append([]string{dir, "res"}, strings.Split(href, "/")...)
	path := filepath.Join(elems...)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, staterr.New(staterr.KindNoResourceFound, href, nil)
		}
		return nil, staterr.New(staterr.KindFailedLoadResource, href, err)
	}
	return data, nil
}
