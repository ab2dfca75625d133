package completion

import (
	"runtime"
	"sync"

	"github.com/aidanlsb/mdvault/internal/vault"
)

// CandidateKind classifies a LinkCompletion.
type CandidateKind int

const (
	CandidateFile CandidateKind = iota
	CandidateHeading
	CandidateBlock
	CandidateUnresolved
	CandidateDailyNote
)

func (k CandidateKind) String() string {
	switch k {
	case CandidateFile:
		return "file"
	case CandidateHeading:
		return "heading"
	case CandidateBlock:
		return "block"
	case CandidateUnresolved:
		return "unresolved"
	case CandidateDailyNote:
		return "daily-note"
	default:
		return "unknown"
	}
}

// LinkCompletion is a candidate link target.
type LinkCompletion struct {
	Kind CandidateKind
	// MatchString is ranked against the filter and shown as the label.
	MatchString string
	// RefName is what gets inserted for wiki links.
	RefName string
	Target  vault.Referenceable
	// SortText is only set for recent-file candidates.
	SortText string
}

// parallelThreshold is the candidate count below which conversion stays on
// the calling goroutine.
const parallelThreshold = 256

// linkCompletions converts every target in the vault, leaving out the
// unresolved target under the cursor when this is its only reference.
func linkCompletions(ctx *Context) []LinkCompletion {
	targets := ctx.Index.Referenceables("")
	skip, hasSkip := cursorTarget(ctx)
	return convert(ctx, targets, func(r vault.Referenceable) bool {
		return hasSkip && r == skip
	})
}

// cursorTarget finds the unresolved target of the link being edited, if
// that link is the only one pointing at it. Offering it back would just
// echo what is already typed.
func cursorTarget(ctx *Context) (vault.Referenceable, bool) {
	ref, ok := ctx.Index.ReferenceAt(ctx.Path, ctx.Position)
	if !ok {
		return vault.Referenceable{}, false
	}
	for _, t := range ctx.Index.Resolve(ref) {
		if t.IsUnresolved() && len(ctx.Index.ReferencesTo(t)) == 1 {
			return t, true
		}
	}
	return vault.Referenceable{}, false
}

// convert fans the targets out over workers. Output order matches input order.
func convert(ctx *Context, targets []vault.Referenceable, skip func(vault.Referenceable) bool) []LinkCompletion {
	results := make([]LinkCompletion, len(targets))
	ok := make([]bool, len(targets))

	work := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if skip(targets[i]) {
				continue
			}
			results[i], ok[i] = newLinkCompletion(ctx, targets[i])
		}
	}

	if len(targets) < parallelThreshold {
		work(0, len(targets))
	} else {
		workers := runtime.GOMAXPROCS(0)
		chunk := (len(targets) + workers - 1) / workers
		var wg sync.WaitGroup
		for lo := 0; lo < len(targets); lo += chunk {
			hi := min(lo+chunk, len(targets))
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				work(lo, hi)
			}(lo, hi)
		}
		wg.Wait()
	}

	out := results[:0]
	for i := range results {
		if ok[i] {
			out = append(out, results[i])
		}
	}
	return out
}

// newLinkCompletion builds the candidate for a target. Files whose stem
// parses as a date near today become daily-note candidates.
func newLinkCompletion(ctx *Context, r vault.Referenceable) (LinkCompletion, bool) {
	switch r.Kind {
	case vault.KindFile:
		if dn, ok := dailyNote(ctx, r); ok {
			return dn, true
		}
		stem := r.Stem()
		if stem == "" {
			return LinkCompletion{}, false
		}
		return LinkCompletion{Kind: CandidateFile, MatchString: stem, RefName: stem, Target: r}, true

	case vault.KindHeading:
		s := r.Stem() + "#" + r.Heading
		return LinkCompletion{Kind: CandidateHeading, MatchString: s, RefName: s, Target: r}, true

	case vault.KindBlock:
		s := r.Stem() + "#^" + r.Index
		return LinkCompletion{Kind: CandidateBlock, MatchString: s, RefName: s, Target: r}, true

	case vault.KindUnresolvedFile, vault.KindUnresolvedHeading, vault.KindUnresolvedBlock:
		s := r.Name
		switch r.Kind {
		case vault.KindUnresolvedHeading:
			s += "#" + r.Heading
		case vault.KindUnresolvedBlock:
			s += "#^" + r.Index
		}
		return LinkCompletion{Kind: CandidateUnresolved, MatchString: s, RefName: s, Target: r}, true
	}
	return LinkCompletion{}, false
}
