package completion

import (
	"path"

	"github.com/aidanlsb/mdvault/internal/dates"
	"github.com/aidanlsb/mdvault/internal/paths"
	"github.com/aidanlsb/mdvault/internal/vault"
)

// dailyNote recognizes a file named after yesterday, today or tomorrow in
// the vault's daily note format. The match string leads with the keyword so
// typing "today" finds it.
func dailyNote(ctx *Context, r vault.Referenceable) (LinkCompletion, bool) {
	stem := paths.StripDocumentExt(path.Base(r.Path))
	date, err := dates.ParseWithFormat(stem, ctx.Settings.DailyNoteFormat)
	if err != nil {
		return LinkCompletion{}, false
	}
	keyword, ok := dates.RelativeKeyword(date, ctx.now())
	if !ok {
		return LinkCompletion{}, false
	}
	return LinkCompletion{
		Kind:        CandidateDailyNote,
		MatchString: keyword + ": " + stem,
		RefName:     stem,
		Target:      r,
	}, true
}
