package vault

import (
	"path"
	"strings"

	"github.com/aidanlsb/mdvault/internal/paths"
	"github.com/aidanlsb/mdvault/internal/slugs"
)

func (d *derived) addFile(p string) {
	key := strings.ToLower(paths.StripDocumentExt(p))
	d.byRelPath[key] = p

	stem := paths.Stem(p)
	lower := strings.ToLower(stem)
	d.byStem[lower] = append(d.byStem[lower], p)

	if slug := slugs.ComponentSlug(stem); slug != "" {
		d.bySlug[slug] = append(d.bySlug[slug], p)
	}
}

// lookupFile finds the document a link target names, trying in order:
// the vault-relative path, the path relative to the linking document, the
// file stem, and finally the slugified stem. Stem matches prefer the first
// document in path order.
func (d *derived) lookupFile(source, target string) (string, bool) {
	if target == "" {
		return source, true
	}

	t := paths.NormalizeRelPath(paths.StripDocumentExt(target))
	if p, ok := d.byRelPath[strings.ToLower(t)]; ok {
		return p, true
	}

	if dir := path.Dir(source); dir != "." {
		joined := path.Clean(path.Join(dir, t))
		if p, ok := d.byRelPath[strings.ToLower(joined)]; ok {
			return p, true
		}
	}

	base := path.Base(t)
	if ps := d.byStem[strings.ToLower(base)]; len(ps) > 0 {
		return ps[0], true
	}
	if ps := d.bySlug[slugs.ComponentSlug(base)]; len(ps) > 0 {
		return ps[0], true
	}
	return "", false
}

func (s *Snapshot) resolve(d *derived, ref Reference) (Referenceable, bool) {
	if !ref.IsLink() {
		return Referenceable{}, false
	}

	p, found := d.lookupFile(ref.Source, ref.Target)
	name := unresolvedName(ref)
	if name == "" {
		return Referenceable{}, false
	}

	if !found {
		switch ref.Kind {
		case HeadingLink:
			return UnresolvedHeading(name, ref.Infile), true
		case BlockLink:
			return UnresolvedIndexedBlock(name, ref.Infile), true
		default:
			return UnresolvedFile(name), true
		}
	}

	// A missing anchor in an existing file is named by that file's stem, so
	// every spelling of the file name lands on the same target.
	name = paths.Stem(p)
	doc := s.docs[p]
	switch ref.Kind {
	case HeadingLink:
		for _, h := range doc.Headings {
			if slugs.SameHeading(ref.Infile, h.Text) {
				return Heading(p, h.Text), true
			}
		}
		return UnresolvedHeading(name, ref.Infile), true
	case BlockLink:
		for _, b := range doc.Blocks {
			if b.Index == ref.Infile {
				return IndexedBlock(p, b.Index), true
			}
		}
		return UnresolvedIndexedBlock(name, ref.Infile), true
	default:
		return File(p), true
	}
}

// unresolvedName is the name a missing file is known by: the link target
// without its extension, or the linking document's stem for links into the
// same document.
func unresolvedName(ref Reference) string {
	if ref.Target == "" {
		return paths.Stem(ref.Source)
	}
	return paths.NormalizeRelPath(paths.StripDocumentExt(ref.Target))
}
