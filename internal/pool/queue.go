package pool

import "github.com/jward/lucien/internal/catalog"

const queuePageSize = 100

// workQueue is the lazy, paginated view of the catalog's "files needing
// extraction" query. It draws fixed-size pages on demand so the supervisor
// never materializes the whole backlog in memory. Pagination is keyed off
// the last file id seen (lastID), not an offset: the underlying query's
// filtered set shrinks as extractions complete concurrently with the
// supervisor's refill loop, and an offset would drift against that
// shrinking set, skipping files. A cursor on the immutable id column
// can't drift.
type workQueue struct {
	cat            *catalog.Catalog
	skipExtensions []string
	force          bool
	lastID         int64
	buf            []catalog.WorkItem
	exhausted      bool
}

func newWorkQueue(cat *catalog.Catalog, skipExtensions []string, force bool) *workQueue {
	return &workQueue{cat: cat, skipExtensions: skipExtensions, force: force}
}

// refill draws one more page if the queue isn't already known to be
// exhausted.
func (q *workQueue) refill() error {
	if q.exhausted {
		return nil
	}
	items, err := q.cat.FilesNeedingExtraction(q.skipExtensions, q.lastID, queuePageSize, q.force)
	if err != nil {
		return err
	}
	if len(items) > 0 {
		q.lastID = items[len(items)-1].FileID
	}
	q.buf = append(q.buf, items...)
	if len(items) < queuePageSize {
		q.exhausted = true
	}
	return nil
}

// len reports how many items are buffered right now (not the total
// remaining backlog).
func (q *workQueue) len() int {
	return len(q.buf)
}

// drained reports whether the queue has no buffered items and the
// underlying catalog query has nothing more to give.
func (q *workQueue) drained() bool {
	return q.exhausted && len(q.buf) == 0
}

func (q *workQueue) pop() (catalog.WorkItem, bool) {
	if len(q.buf) == 0 {
		return catalog.WorkItem{}, false
	}
	item := q.buf[0]
	q.buf = q.buf[1:]
	return item, true
}
