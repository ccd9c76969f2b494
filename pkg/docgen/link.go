package docgen

import "strings"

// LinkResolver maps item references to the module where they are
// canonically documented, following the Haddock rules: prefer the current
// module when it exports the item, fall back to the canonical public
// exporter, and produce no link when the item only lives in hidden
// modules.
type LinkResolver struct {
	exports *ExportResolver
}

// NewLinkResolver wraps a prebuilt export resolver.
func NewLinkResolver(exports *ExportResolver) *LinkResolver {
	return &LinkResolver{exports: exports}
}

// ResolveLink resolves the canonical fqn of an item against the module
// currently being rendered. ok is false when the item cannot be linked;
// callers render plain unlinked text in that case.
func (l *LinkResolver) ResolveLink(fqn, currentModule string) (LinkTarget, bool) {
	i := strings.LastIndexByte(fqn, '.')
	if i < 0 {
		return LinkTarget{}, false
	}
	item := fqn[i+1:]

	kind, known := l.exports.Kind(fqn)
	if !known {
		kind = KindClass
	}

	if currentModule != "" && l.exports.Exports(currentModule, item) {
		return LinkTarget{FQN: fqn, Module: currentModule, Kind: kind}, true
	}
	if canonical := l.exports.CanonicalModule(fqn); canonical != "" {
		return LinkTarget{FQN: fqn, Module: canonical, Kind: kind}, true
	}
	return LinkTarget{}, false
}
