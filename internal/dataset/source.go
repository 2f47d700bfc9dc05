package dataset

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wonny/covidtrend/internal/contracts"
)

// Fetcher downloads a remote dataset (pkg/httputil.Client)
type Fetcher interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// IsRemote reports whether source is an http(s) URL
func IsRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Open loads the dataset from a local path or an http(s) URL
func Open(ctx context.Context, source string, opts LoadOptions, fetcher Fetcher, log zerolog.Logger) (*Store, error) {
	if source == "" {
		return nil, &contracts.DataLoadError{Reason: "no dataset source configured"}
	}

	if IsRemote(source) {
		if fetcher == nil {
			return nil, &contracts.DataLoadError{Reason: "remote source " + source + " needs a fetcher"}
		}
		log.Info().Str("source", source).Msg("fetching remote dataset")
		body, err := fetcher.Download(ctx, source)
		if err != nil {
			return nil, &contracts.DataLoadError{Reason: "fetch " + source, Err: err}
		}
		return Load(bytes.NewReader(body), opts, log)
	}

	f, err := os.Open(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &contracts.DataLoadError{Reason: "dataset not found: " + source, Err: err}
		}
		return nil, &contracts.DataLoadError{Reason: "open " + source, Err: err}
	}
	defer f.Close()

	return Load(f, opts, log)
}
