package share

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dkoval/mailshare/internal/models"
)

// Fingerprint derives a stable change-detection string from the given
// messages. It depends only on each message's (id, version) pair: the
// store bumps version on every content mutation, so hashing bodies here
// would be redundant work. Messages are ordered by id ascending so two
// calls over the same set always agree.
//
// This is a change detector, not a security boundary.
func Fingerprint(msgs []*models.Message) string {
	sorted := make([]*models.Message, len(msgs))
	copy(sorted, msgs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	markers := make([]string, 0, len(sorted))
	for _, m := range sorted {
		// ids are uuids and versions are integers, so neither ":" nor
		// "|" can occur inside a marker.
		markers = append(markers, fmt.Sprintf("%s:%d", m.ID, m.Version))
	}
	return strings.Join(markers, "|")
}
