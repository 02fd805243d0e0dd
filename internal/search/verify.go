package search

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/llehouerou/wavestore/internal/db"
)

// Drift counts the ways the index disagrees with the catalog.
type Drift struct {
	Missing  int `db:"missing"`  // playables without an entry
	Orphaned int `db:"orphaned"` // entries without a playable
	Stale    int `db:"stale"`    // entries whose text differs from the catalog
}

// Total is the number of entries Rebuild would fix.
func (d Drift) Total() int {
	return d.Missing + d.Orphaned + d.Stale
}

// Verify compares every entry with the catalog.
func (x *Index) Verify(ctx context.Context) (Drift, error) {
	var d Drift
	err := sqlx.GetContext(ctx, x.q, &d, `
		SELECT
			(SELECT COUNT(*) FROM playables p
				WHERE NOT EXISTS (SELECT 1 FROM playable_search s WHERE s.rowid = p.id)) AS missing,
			(SELECT COUNT(*) FROM playable_search s
				WHERE NOT EXISTS (SELECT 1 FROM playables p WHERE p.id = s.rowid)) AS orphaned,
			(SELECT COUNT(*) FROM playable_search s
				JOIN playables p ON p.id = s.rowid
				LEFT JOIN artists ar ON ar.id = p.artist_id
				LEFT JOIN albums al ON al.id = p.album_id
				WHERE s.title IS NOT p.title
					OR s.artist IS NOT COALESCE(ar.name, '')
					OR s.album IS NOT COALESCE(al.name, '')) AS stale
	`)
	return d, db.Classify(err)
}
