package fix

import (
	"path/filepath"

	"github.com/xxxsen/romdoctor/internal/fileutil"
	"github.com/xxxsen/romdoctor/internal/gamelist"
	"github.com/xxxsen/romdoctor/internal/pathutil"
	"github.com/xxxsen/romdoctor/internal/scanner"
	"github.com/xxxsen/romdoctor/internal/walker"
)

var referenceFields = append([]string{gamelist.PathElement}, gamelist.MediaElements...)

// cleanMedia removes media files that no gamelist record references.
func (r *runner) cleanMedia() error {
	doc, exists, err := r.loadGamelist()
	if err != nil {
		return err
	}
	if !exists {
		r.logf("No gamelist found, skipping media cleanup.")
		return nil
	}
	walked, err := walker.Walk(r.ctx, r.req.Root, r.opts.Walker)
	if err != nil {
		return err
	}

	referenced := make(map[string]struct{})
	for _, rec := range doc.Records() {
		for _, field := range referenceFields {
			res := pathutil.Resolve(r.req.Root, rec.Get(field))
			if res.Exists {
				referenced[res.Abs] = struct{}{}
			}
		}
	}
	orphans := scanner.OrphanMedia(walked.Media, referenced)
	if len(orphans) == 0 {
		r.logf("No orphaned media found.")
		return nil
	}
	for _, abs := range orphans {
		r.logf("[-] Orphaned media: %s", pathutil.StripDotSlash(pathutil.Ref(r.req.Root, abs)))
	}
	if r.req.DryRun {
		r.logf("Summary: Would delete %d orphaned media files.", len(orphans))
		return nil
	}

	res := fileutil.DeleteFiles(r.ctx, orphans)
	for _, p := range res.Failed {
		r.logf("[!] Failed to delete: %s", filepath.ToSlash(p))
	}
	r.logf("Deleted %d orphaned media files, %d failed.", len(res.Deleted), len(res.Failed))
	return nil
}
