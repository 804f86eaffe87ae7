package dto

// GenerateRequest asks the AI adapter to draft an assignment. Only the
// prompt (topic) is required; the optional hints narrow the output.
type GenerateRequest struct {
	Prompt     string `json:"prompt" validate:"required"`
	Subject    string `json:"subject"`
	Difficulty string `json:"difficulty"`
	Type       string `json:"type"`
}

// GeneratedContent is the parsed title/description pair produced by the adapter.
type GeneratedContent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// GenerateFeedbackRequest asks the adapter to draft grading feedback for a
// student's submission.
type GenerateFeedbackRequest struct {
	SubmissionID uint `json:"submission_id" validate:"required,gt=0"`
}

// GeneratedFeedback carries the drafted feedback text.
type GeneratedFeedback struct {
	Feedback string `json:"feedback"`
}
