package scanjobs

import "time"

// Status is a scan job lifecycle state. Transitions are
// queued -> processing -> completed|failed; terminal states never revisit.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ScanJob tracks one inbox scan for one user.
type ScanJob struct {
	ID                 string
	TenantID           string
	UserID             string
	Status             Status
	StartDate          time.Time
	EndDate            time.Time
	TotalDocuments     int
	ProcessedDocuments int
	InvoicesFound      int
	ErrorMessage       string
	StartedAt          *time.Time
	CompletedAt        *time.Time
	CreatedAt          time.Time
}

// Active reports whether the job still holds the user's single scan slot.
func (j ScanJob) Active() bool {
	return j.Status == StatusQueued || j.Status == StatusProcessing
}
