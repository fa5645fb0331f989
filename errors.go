package stardict

import "github.com/go-stardict/stardict/internal/staterr"

// Kind identifies a class of error raised while opening or reading a
// StarDict dictionary.
type Kind = staterr.Kind

// Error kinds, re-exported from the internal error taxonomy so callers
// never need to import internal/staterr directly.
const (
	KindNoFileFound           = staterr.KindNoFileFound
	KindFailedOpenFile        = staterr.KindFailedOpenFile
	KindInvalidVersion        = staterr.KindInvalidVersion
	KindInvalidIfoValue       = staterr.KindInvalidIfoValue
	KindInvalidIdxElement     = staterr.KindInvalidIdxElement
	KindInvalidIdxBlock       = staterr.KindInvalidIdxBlock
	KindInvalidSynIndex       = staterr.KindInvalidSynIndex
	KindFailedParseDictHeader = staterr.KindFailedParseDictHeader
	KindInvalidDict           = staterr.KindInvalidDict
	KindNoResourceFound       = staterr.KindNoResourceFound
	KindFailedLoadResource    = staterr.KindFailedLoadResource
	KindNoCacheDir            = staterr.KindNoCacheDir
	KindFailedOpenCache       = staterr.KindFailedOpenCache
	KindCacheInitiating       = staterr.KindCacheInitiating
	KindInvalidDictCache      = staterr.KindInvalidDictCache
)

// StardictError is the error type returned by this module. See Kind for
// the full taxonomy.
type StardictError = staterr.StardictError

// Sentinels for errors.Is comparisons, e.g.:
//
//	if errors.Is(err, stardict.ErrCacheInitiating) { ... }
var (
	ErrNoFileFound           = staterr.ErrNoFileFound
	ErrFailedOpenFile        = staterr.ErrFailedOpenFile
	ErrInvalidVersion        = staterr.ErrInvalidVersion
	ErrInvalidIfoValue       = staterr.ErrInvalidIfoValue
	ErrInvalidIdxElement     = staterr.ErrInvalidIdxElement
	ErrInvalidIdxBlock       = staterr.ErrInvalidIdxBlock
	ErrInvalidSynIndex       = staterr.ErrInvalidSynIndex
	ErrFailedParseDictHeader = staterr.ErrFailedParseDictHeader
	ErrInvalidDict           = staterr.ErrInvalidDict
	ErrNoResourceFound       = staterr.ErrNoResourceFound
	ErrFailedLoadResource    = staterr.ErrFailedLoadResource
	ErrNoCacheDir            = staterr.ErrNoCacheDir
	ErrFailedOpenCache       = staterr.ErrFailedOpenCache
	ErrCacheInitiating       = staterr.ErrCacheInitiating
	ErrInvalidDictCache      = staterr.ErrInvalidDictCache
)
