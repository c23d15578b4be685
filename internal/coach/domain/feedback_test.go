package domain

import "testing"

func TestFeedbackTypeDerivation(t *testing.T) {
	tests := []struct {
		fbType      FeedbackType
		wantRating  int
		wantApplied bool
	}{
		{FeedbackHelpful, 5, true},
		{FeedbackDone, 4, true},
		{FeedbackNotHelpful, 1, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.fbType), func(t *testing.T) {
			if got := tt.fbType.Rating(); got != tt.wantRating {
				t.Errorf("Rating() = %d, want %d", got, tt.wantRating)
			}
			if got := tt.fbType.Applied(); got != tt.wantApplied {
				t.Errorf("Applied() = %v, want %v", got, tt.wantApplied)
			}
		})
	}

	if FeedbackType("MAYBE").IsValid() {
		t.Error("unknown feedback type should be invalid")
	}
}

func TestValidateReasonDetail(t *testing.T) {
	detail := "quá nhiều việc trong ngày"
	blank := "   "

	tests := []struct {
		name   string
		reason FeedbackReason
		detail *string
		want   bool
	}{
		{"khac with detail", ReasonOther, &detail, true},
		{"khac without detail", ReasonOther, nil, false},
		{"khac with blank detail", ReasonOther, &blank, false},
		{"other reasons need no detail", ReasonEasyToFollow, nil, true},
		{"detail allowed on any reason", ReasonNoResources, &detail, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateReasonDetail(tt.reason, tt.detail); got != tt.want {
				t.Errorf("ValidateReasonDetail() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActualResultValidate(t *testing.T) {
	five := 5
	negative := -1

	if !(*ActualResult)(nil).Validate() {
		t.Error("nil result should validate")
	}
	if !(&ActualResult{CallsMade: &five}).Validate() {
		t.Error("non-negative counter should validate")
	}
	if (&ActualResult{ContractsSigned: &negative}).Validate() {
		t.Error("negative counter should fail")
	}
	if !(&ActualResult{}).IsEmpty() {
		t.Error("empty result should report empty")
	}
	if (&ActualResult{AppointmentsSet: &five}).IsEmpty() {
		t.Error("set counter should not report empty")
	}
}
