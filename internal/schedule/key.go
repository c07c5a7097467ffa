package schedule

import "fmt"

// SlotKey derives the deterministic identifier of a template-born shift from
// (template id, calendar date, slot position). Regenerating the same template
// over the same horizon reproduces the same keys, which is what makes
// generation an idempotent upsert rather than a source of duplicates.
func SlotKey(templateID, date string, slot int) string {
	return fmt.Sprintf("tmpl:%s:%s:%d", templateID, date, slot)
}
