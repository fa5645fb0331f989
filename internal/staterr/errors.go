// Package staterr defines the shared error taxonomy returned by every
// package in this module, from .ifo/.idx/.dict parsing up through the
// multi-process lookup cache. It is kept separate from the root
// stardict package (which re-exports it) so that internal leaf
// packages can return these errors without importing the root package.
package staterr

import "fmt"

// Kind identifies a class of error raised while opening or reading a
// StarDict dictionary. It corresponds to the error taxonomy the whole
// module shares, from the lowest-level gzip parsing up to the cache
// coordinator.
type Kind int

const (
	// KindNoFileFound indicates a required dictionary file is absent.
	KindNoFileFound Kind = iota

	// KindFailedOpenFile indicates an open or read failure on a
	// dictionary file.
	KindFailedOpenFile

	// KindInvalidVersion indicates the .ifo file declares an
	// unsupported version string.
	KindInvalidVersion

	// KindInvalidIfoValue indicates a numeric coercion failure while
	// parsing a .ifo value.
	KindInvalidIfoValue

	// KindInvalidIdxElement indicates a truncated .idx record.
	KindInvalidIdxElement

	// KindInvalidIdxBlock indicates cache population could not decode
	// a block referenced by the index.
	KindInvalidIdxBlock

	// KindInvalidSynIndex indicates a truncated .syn record.
	KindInvalidSynIndex

	// KindFailedParseDictHeader indicates a malformed gzip or RA
	// sub-field in a .dict.dz file.
	KindFailedParseDictHeader

	// KindInvalidDict indicates a gzip inflate failure or non-UTF-8
	// plain dict file.
	KindInvalidDict

	// KindNoResourceFound indicates a res/ side file does not exist.
	KindNoResourceFound

	// KindFailedLoadResource indicates a res/ side file exists but
	// could not be read.
	KindFailedLoadResource

	// KindNoCacheDir indicates the platform user cache directory could
	// not be resolved.
	KindNoCacheDir

	// KindFailedOpenCache indicates the cache backend could not be
	// opened or initialized.
	KindFailedOpenCache

	// KindCacheInitiating indicates the cache is not yet ready to
	// answer lookups on this open.
	KindCacheInitiating

	// KindInvalidDictCache indicates the cache's meta table is
	// malformed; the caller should remove the cache file and retry.
	KindInvalidDictCache
)

func (k Kind) String() string {
	switch k {
	case KindNoFileFound:
		return "no file found"
	case KindFailedOpenFile:
		return "failed to open file"
	case KindInvalidVersion:
		return "invalid version"
	case KindInvalidIfoValue:
		return "invalid ifo value"
	case KindInvalidIdxElement:
		return "invalid idx element"
	case KindInvalidIdxBlock:
		return "invalid idx block"
	case KindInvalidSynIndex:
		return "invalid syn index"
	case KindFailedParseDictHeader:
		return "failed to parse dict header"
	case KindInvalidDict:
		return "invalid dict"
	case KindNoResourceFound:
		return "no resource found"
	case KindFailedLoadResource:
		return "failed to load resource"
	case KindNoCacheDir:
		return "no cache dir"
	case KindFailedOpenCache:
		return "failed to open cache"
	case KindCacheInitiating:
		return "cache initiating"
	case KindInvalidDictCache:
		return "invalid dict cache"
	default:
		return "unknown"
	}
}

// StardictError is the error type returned by every package in this
// module. Detail carries the field/kind/href named in spec.md's error
// taxonomy (e.g. the ifo field name, the dictionary file kind).
type StardictError struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *StardictError) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}
	return msg
}

func (e *StardictError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *StardictError with the same Kind,
// allowing callers to write errors.Is(err, stardict.ErrCacheInitiating)
// style checks against the sentinels below.
func (e *StardictError) Is(target error) bool {
	t, ok := target.(*StardictError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, detail string, err error) *StardictError {
	return &StardictError{Kind: kind, Detail: detail, Err: err}
}

// Sentinels for errors.Is comparisons against a bare Kind, e.g.:
//
//	if errors.Is(err, stardict.ErrCacheInitiating) { ... }
var (
	ErrNoFileFound           = &StardictError{Kind: KindNoFileFound}
	ErrFailedOpenFile        = &StardictError{Kind: KindFailedOpenFile}
	ErrInvalidVersion        = &StardictError{Kind: KindInvalidVersion}
	ErrInvalidIfoValue       = &StardictError{Kind: KindInvalidIfoValue}
	ErrInvalidIdxElement     = &StardictError{Kind: KindInvalidIdxElement}
	ErrInvalidIdxBlock       = &StardictError{Kind: KindInvalidIdxBlock}
	ErrInvalidSynIndex       = &StardictError{Kind: KindInvalidSynIndex}
	ErrFailedParseDictHeader = &StardictError{Kind: KindFailedParseDictHeader}
	ErrInvalidDict           = &StardictError{Kind: KindInvalidDict}
	ErrNoResourceFound       = &StardictError{Kind: KindNoResourceFound}
	ErrFailedLoadResource    = &StardictError{Kind: KindFailedLoadResource}
	ErrNoCacheDir            = &StardictError{Kind: KindNoCacheDir}
	ErrFailedOpenCache       = &StardictError{Kind: KindFailedOpenCache}
	ErrCacheInitiating       = &StardictError{Kind: KindCacheInitiating}
	ErrInvalidDictCache      = &StardictError{Kind: KindInvalidDictCache}
)
