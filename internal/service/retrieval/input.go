package retrieval

import (
	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// IngestInput holds the parameters for ingesting a document.
type IngestInput struct {
	LearnerID string
	Content   string
	Type      string
	Source    string
}

// Validate checks all fields and collects all errors.
func (i *IngestInput) Validate() error {
	var errs []domain.FieldError

	if i.LearnerID == "" {
		errs = append(errs, domain.FieldError{Field: "learner_id", Message: "required"})
	}
	if len(i.Content) == 0 {
		errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
	}
	if len(i.Content) > maxDocumentBytes {
		errs = append(errs, domain.FieldError{Field: "content", Message: "max 1 MiB"})
	}
	if len(i.Type) > 50 {
		errs = append(errs, domain.FieldError{Field: "type", Message: "max 50 characters"})
	}
	if len(i.Source) > 200 {
		errs = append(errs, domain.FieldError{Field: "source", Message: "max 200 characters"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// SearchInput holds the parameters for a similarity search.
// Zero TopK and nil Threshold use the configured defaults.
type SearchInput struct {
	LearnerID string
	Query     string
	TopK      int
	Threshold *float64
	Filter    domain.ChunkFilter
}

// Validate checks all fields and collects all errors.
func (i *SearchInput) Validate() error {
	var errs []domain.FieldError

	if i.LearnerID == "" {
		errs = append(errs, domain.FieldError{Field: "learner_id", Message: "required"})
	}
	if i.Query == "" {
		errs = append(errs, domain.FieldError{Field: "query", Message: "required"})
	}
	if i.TopK < 0 || i.TopK > 100 {
		errs = append(errs, domain.FieldError{Field: "top_k", Message: "must be between 0 and 100"})
	}
	if i.Threshold != nil && (*i.Threshold < -1 || *i.Threshold > 1) {
		errs = append(errs, domain.FieldError{Field: "threshold", Message: "must be between -1 and 1"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
