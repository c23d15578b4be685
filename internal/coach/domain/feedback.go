package domain

import "strings"

// FeedbackType classifies a user's reaction to a suggestion.
type FeedbackType string

const (
	FeedbackHelpful    FeedbackType = "HELPFUL"
	FeedbackNotHelpful FeedbackType = "NOT_HELPFUL"
	FeedbackDone       FeedbackType = "DONE"
)

// IsValid reports whether the feedback type is part of the closed set.
func (t FeedbackType) IsValid() bool {
	switch t {
	case FeedbackHelpful, FeedbackNotHelpful, FeedbackDone:
		return true
	}
	return false
}

// Rating returns the fixed star rating derived from the feedback type.
// The mapping is fixed for this deployment.
func (t FeedbackType) Rating() int {
	switch t {
	case FeedbackHelpful:
		return 5
	case FeedbackDone:
		return 4
	case FeedbackNotHelpful:
		return 1
	}
	return 0
}

// Applied reports whether the user acted on the suggestion, derived from the
// feedback type.
func (t FeedbackType) Applied() bool {
	return t != FeedbackNotHelpful
}

// FeedbackReason is one of the product's closed reason taxonomy. The keys are
// the Vietnamese product codes used across the CRM's clients.
type FeedbackReason string

const (
	// ReasonEasyToFollow — "dễ làm theo".
	ReasonEasyToFollow FeedbackReason = "de_lam_theo"
	// ReasonMatchesReality — "đúng thực tế".
	ReasonMatchesReality FeedbackReason = "dung_thuc_te"
	// ReasonNoResources — "thiếu nguồn lực".
	ReasonNoResources FeedbackReason = "thieu_nguon_luc"
	// ReasonNotFeasible — "không khả thi".
	ReasonNotFeasible FeedbackReason = "khong_kha_thi"
	// ReasonAlreadyKnown — "đã biết trước".
	ReasonAlreadyKnown FeedbackReason = "da_biet_truoc"
	// ReasonOther — "khác"; requires a free-text detail.
	ReasonOther FeedbackReason = "khac"
)

// IsValid reports whether the reason is part of the closed set.
func (r FeedbackReason) IsValid() bool {
	switch r {
	case ReasonEasyToFollow, ReasonMatchesReality, ReasonNoResources,
		ReasonNotFeasible, ReasonAlreadyKnown, ReasonOther:
		return true
	}
	return false
}

// RequiresDetail reports whether the reason must be accompanied by a
// non-empty reasonDetail.
func (r FeedbackReason) RequiresDetail() bool {
	return r == ReasonOther
}

// ActualResult holds the optional self-reported outcome counters a user can
// attach to feedback. Absent fields stay nil; present fields must be
// non-negative.
type ActualResult struct {
	CallsMade         *int `json:"callsMade,omitempty"`
	AppointmentsSet   *int `json:"appointmentsSet,omitempty"`
	ContractsSigned   *int `json:"contractsSigned,omitempty"`
	PaymentsCollected *int `json:"paymentsCollected,omitempty"`
}

// Validate checks that every present counter is non-negative.
func (a *ActualResult) Validate() bool {
	if a == nil {
		return true
	}
	for _, v := range []*int{a.CallsMade, a.AppointmentsSet, a.ContractsSigned, a.PaymentsCollected} {
		if v != nil && *v < 0 {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no counter is set.
func (a *ActualResult) IsEmpty() bool {
	if a == nil {
		return true
	}
	return a.CallsMade == nil && a.AppointmentsSet == nil &&
		a.ContractsSigned == nil && a.PaymentsCollected == nil
}

// ValidateReasonDetail applies the reason/detail coupling rule: reason
// "khac" needs a detail that is non-empty after trimming.
func ValidateReasonDetail(reason FeedbackReason, detail *string) bool {
	if !reason.RequiresDetail() {
		return true
	}
	return detail != nil && strings.TrimSpace(*detail) != ""
}
