package models

import "fmt"

// Job status constants. Status only ever moves forward:
// pending -> processing -> completed | failed.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// JobType is the closed set of processing stages. The dispatcher switches
// exhaustively over these values; anything else fails the job.
type JobType string

const (
	JobTypeTranscript JobType = "transcript"
	JobTypeTranscode  JobType = "transcode"
	JobTypeThumbnail  JobType = "thumbnail"
	JobTypeVectorize  JobType = "vectorize"
	JobTypeSummary    JobType = "summary"
)

// AllJobTypes lists every valid job type, in pipeline order.
var AllJobTypes = []JobType{
	JobTypeTranscript,
	JobTypeTranscode,
	JobTypeThumbnail,
	JobTypeVectorize,
	JobTypeSummary,
}

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeTranscript, JobTypeTranscode, JobTypeThumbnail, JobTypeVectorize, JobTypeSummary:
		return true
	}
	return false
}

func (t JobType) String() string { return string(t) }

// ParseJobType converts a raw string into a JobType.
func ParseJobType(s string) (JobType, error) {
	t := JobType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown job type %q", s)
	}
	return t, nil
}
