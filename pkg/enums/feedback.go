package enums

import "fmt"

// FeedbackCategory classifies guest feedback.
type FeedbackCategory string

const (
	FeedbackCategoryService FeedbackCategory = "service"
	FeedbackCategoryFood    FeedbackCategory = "food"
	FeedbackCategoryStaff   FeedbackCategory = "staff"
	FeedbackCategoryOther   FeedbackCategory = "other"
)

var validFeedbackCategories = []FeedbackCategory{
	FeedbackCategoryService,
	FeedbackCategoryFood,
	FeedbackCategoryStaff,
	FeedbackCategoryOther,
}

// String implements fmt.Stringer.
func (c FeedbackCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known FeedbackCategory.
func (c FeedbackCategory) IsValid() bool {
	for _, candidate := range validFeedbackCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseFeedbackCategory converts raw input into a FeedbackCategory.
func ParseFeedbackCategory(value string) (FeedbackCategory, error) {
	for _, candidate := range validFeedbackCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid feedback category %q", value)
}

// FeedbackStatus tracks admin triage of a feedback entry.
type FeedbackStatus string

const (
	FeedbackStatusNew      FeedbackStatus = "new"
	FeedbackStatusRead     FeedbackStatus = "read"
	FeedbackStatusResolved FeedbackStatus = "resolved"
)

var validFeedbackStatuses = []FeedbackStatus{
	FeedbackStatusNew,
	FeedbackStatusRead,
	FeedbackStatusResolved,
}

// String implements fmt.Stringer.
func (s FeedbackStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known FeedbackStatus.
func (s FeedbackStatus) IsValid() bool {
	for _, candidate := range validFeedbackStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// FeedbackStatuses returns every triage state.
func FeedbackStatuses() []FeedbackStatus {
	out := make([]FeedbackStatus, len(validFeedbackStatuses))
	copy(out, validFeedbackStatuses)
	return out
}

// ParseFeedbackStatus converts raw input into a FeedbackStatus.
func ParseFeedbackStatus(value string) (FeedbackStatus, error) {
	for _, candidate := range validFeedbackStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid feedback status %q", value)
}
