package completion

import (
	"sort"
	"strconv"
	"time"
)

// recentCompletions lists the targets of open documents, most recently
// modified document first. Each candidate's SortText is its document's mtime
// in Unix seconds.
func recentCompletions(ctx *Context) []LinkCompletion {
	type openDoc struct {
		path  string
		mtime time.Time
	}

	docs := make([]openDoc, 0, len(ctx.OpenFiles))
	for _, p := range ctx.OpenFiles {
		mtime, err := ctx.modTime(p)
		if err != nil {
			mtime = time.Unix(0, 0)
		}
		docs = append(docs, openDoc{path: p, mtime: mtime})
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].mtime.After(docs[j].mtime)
	})

	var out []LinkCompletion
	for _, d := range docs {
		sortText := strconv.FormatInt(d.mtime.Unix(), 10)
		for _, r := range ctx.Index.Referenceables(d.path) {
			c, ok := newLinkCompletion(ctx, r)
			if !ok {
				continue
			}
			c.SortText = sortText
			out = append(out, c)
		}
	}
	return out
}
