package phrase

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/stringsvc/internal/filter"
)

// DefaultCacheSize is used when NewCachedParser is given a non-positive size.
const DefaultCacheSize = 256

// CachedParser memoizes successful parses per exact query string.
// Safe for concurrent use.
type CachedParser struct {
	cache *lru.Cache[string, filter.Set]
}

var _ Parser = (*CachedParser)(nil)

// NewCachedParser creates a parser holding up to size results.
func NewCachedParser(size int) *CachedParser {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, filter.Set](size)
	return &CachedParser{cache: cache}
}

// Parse implements Parser. The key is the raw query: the letter phrase
// keeps its case, so queries differing only in case may parse differently.
func (p *CachedParser) Parse(query string) (filter.Set, error) {
	if set, ok := p.cache.Get(query); ok {
		return set.Clone(), nil
	}

	set, err := Parse(query)
	if err != nil {
		return filter.Set{}, err
	}
	p.cache.Add(query, set)
	return set.Clone(), nil
}

// Len reports the number of cached queries.
func (p *CachedParser) Len() int {
	return p.cache.Len()
}
