package v1

import "statuspage-cron/models"

// Compact reduces the statuses of a group's members to one status.
//
// When every member reports the same status the group reports it too.
// Otherwise the group reports the category of its least healthy member,
// ranked by models.Status.Rank. An empty input is Unknown.
func Compact(statuses []models.Status) models.ResourceStatus {
	if len(statuses) == 0 {
		return models.Unknown
	}

	worst := statuses[0]
	uniform := true
	for _, s := range statuses[1:] {
		if s != statuses[0] {
			uniform = false
		}
		if s.Rank() > worst.Rank() {
			worst = s
		}
	}

	if uniform {
		return worst
	}
	return worst.Category()
}
