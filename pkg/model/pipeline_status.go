package model

//go:generate go run github.com/dmarkham/enumer -type PipelineStatus -trimprefix Status -transform snake -json -sql -output pipeline_status.gen.go

// PipelineStatus is the stage a job application has reached.
type PipelineStatus int

const (
	StatusApplied PipelineStatus = iota
	StatusPhoneScreen
	StatusOnSite
	StatusRemote
	StatusOffer
	StatusAccepted
	StatusRejected
)

// InterviewStatuses are the stages that count as an interview.
var InterviewStatuses = []PipelineStatus{StatusPhoneScreen, StatusOnSite, StatusRemote}

// Label returns the human readable name shown next to the status.
func (i PipelineStatus) Label() string {
	switch i {
	case StatusApplied:
		return "Applied"
	case StatusPhoneScreen:
		return "Phone Screen"
	case StatusOnSite:
		return "On Site Interview"
	case StatusRemote:
		return "Remote Interview"
	case StatusOffer:
		return "Offer"
	case StatusAccepted:
		return "Accepted"
	case StatusRejected:
		return "Rejected"
	default:
		return i.String()
	}
}

// IsInterview reports whether the status is one of the interview stages.
func (i PipelineStatus) IsInterview() bool {
	for _, s := range InterviewStatuses {
		if s == i {
			return true
		}
	}
	return false
}
