package http

type scanRequest struct {
	// Assignees optionally overrides the configured assignee list for this
	// run only.
	Assignees []string `json:"assignees" validate:"omitempty,dive,required,username"`
}
