package fix

import (
	"path/filepath"

	"github.com/xxxsen/romdoctor/internal/gamelist"
	"github.com/xxxsen/romdoctor/internal/pathutil"
	"github.com/xxxsen/romdoctor/internal/walker"
)

// syncGamelist appends a minimal record for every unlisted ROM and, in live
// mode, drops records whose ROM is gone.
func (r *runner) syncGamelist() error {
	walked, err := walker.Walk(r.ctx, r.req.Root, r.opts.Walker)
	if err != nil {
		return err
	}
	doc, exists, err := r.loadGamelist()
	if err != nil {
		return err
	}
	records := doc.Records()

	listed := make(map[string]struct{}, len(records))
	var orphans []*gamelist.Record
	for _, rec := range records {
		res := pathutil.Resolve(r.req.Root, rec.Path())
		if res.Abs != "" {
			listed[res.Abs] = struct{}{}
		}
		switch {
		case res.Abs != "" && !res.Inside:
			r.logf("[!] Skipping entry outside system root: %s", rec.Path())
		case !res.Exists:
			r.logf("[-] Found orphan entry (ROM missing): %s", rec.Path())
			orphans = append(orphans, rec)
		}
	}

	var additions [][]gamelist.Field
	for _, abs := range walked.Roms {
		if _, ok := listed[filepath.Clean(abs)]; ok {
			continue
		}
		ref := pathutil.Ref(r.req.Root, abs)
		r.logf("[+] Found unlisted ROM: %s", pathutil.StripDotSlash(ref))
		additions = append(additions, []gamelist.Field{
			{Name: gamelist.PathElement, Value: ref},
			{Name: gamelist.NameElement, Value: pathutil.Stem(abs)},
		})
	}

	if len(additions) == 0 && len(orphans) == 0 {
		r.logf("No changes needed.")
		return nil
	}
	if r.req.DryRun {
		r.logf("Summary: Would add %d entries and remove %d orphan entries.", len(additions), len(orphans))
		return nil
	}

	for _, rec := range orphans {
		doc.Remove(rec)
	}
	for _, fields := range additions {
		doc.Append(fields)
	}
	if err := r.commit(doc, exists); err != nil {
		return err
	}
	r.logf("Gamelist updated. Added: %d, Removed: %d", len(additions), len(orphans))
	return nil
}
