package marketplace

import (
	"sort"
	"strings"

	"github.com/elliotchance/phpserialize"
	"github.com/spf13/cast"
)

// Keys of the navigation blob. They are matched by prefix because the
// listing has used both plain and suffixed variants.
const (
	navPageCount  = "NavPageCount"
	navPageNumber = "NavPageNomer"
	navNum        = "NavNum"
)

// PageParamPrefix prefixes the page query parameter, PAGEN_<NavNum>
const PageParamPrefix = "PAGEN_"

// Navigation is the decoded navData of a catalog page
type Navigation struct {
	PageCount  int
	PageNumber int
	NavNum     string
	Fields     map[string]any
}

// PageParam returns the query parameter that selects a page
func (n *Navigation) PageParam() string {
	return PageParamPrefix + n.NavNum
}

// HasNext reports whether pages remain after the current one
func (n *Navigation) HasNext() bool {
	return n.PageNumber < n.PageCount
}

// ParseNavigation decodes a PHP-serialized navigation blob. It returns
// false for empty or malformed blobs, which callers treat as the last page.
func ParseNavigation(blob string) (*Navigation, bool) {
	blob = strings.TrimSpace(blob)
	if !strings.HasPrefix(blob, "a:") {
		return nil, false
	}

	raw, err := phpserialize.UnmarshalAssociativeArray([]byte(blob))
	if err != nil {
		return nil, false
	}

	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		fields[cast.ToString(k)] = v
	}

	count, ok := lookupInt(fields, navPageCount)
	if !ok {
		return nil, false
	}
	number, ok := lookupInt(fields, navPageNumber)
	if !ok {
		return nil, false
	}

	num := "1"
	if v, ok := lookup(fields, navNum); ok {
		num = strings.TrimSpace(cast.ToString(v))
	}
	if num == "" {
		return nil, false
	}

	return &Navigation{
		PageCount:  count,
		PageNumber: number,
		NavNum:     num,
		Fields:     fields,
	}, true
}

// lookup finds key exactly, then by case-insensitive prefix. Candidates
// are checked in sorted order so the result does not depend on map order.
func lookup(fields map[string]any, key string) (any, bool) {
	if v, ok := fields[key]; ok {
		return v, true
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	prefix := strings.ToLower(key)
	for _, name := range names {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			return fields[name], true
		}
	}
	return nil, false
}

func lookupInt(fields map[string]any, key string) (int, bool) {
	v, ok := lookup(fields, key)
	if !ok {
		return 0, false
	}
	if s, isString := v.(string); isString {
		v = strings.TrimSpace(s)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
