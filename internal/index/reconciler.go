// Package index drives sync passes: it reconciles the set of files on disk
// against the set of documents in the collection and applies the difference.
package index

// Diff is the outcome of comparing the current target file set against the
// ids already stored in the collection.
type Diff struct {
	// Upserts are target files to (re)index: every file currently on disk.
	Upserts []string

	// Deletes are stored ids with no corresponding target file.
	Deletes []string
}

// Reconcile computes the diff between the target files on disk and the
// stored document ids. All target files are upserted unconditionally; staleness
// is not tracked, so a sync pass always refreshes content. Stored ids absent
// from the target set are deleted. Both inputs and outputs preserve order.
func Reconcile(targetFiles, storedIDs []string) Diff {
	current := make(map[string]struct{}, len(targetFiles))
	for _, path := range targetFiles {
		current[path] = struct{}{}
	}

	diff := Diff{Upserts: targetFiles}
	for _, id := range storedIDs {
		if _, ok := current[id]; !ok {
			diff.Deletes = append(diff.Deletes, id)
		}
	}

	return diff
}
