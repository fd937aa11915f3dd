package domain

import "testing"

func TestApplicationStatusValid(t *testing.T) {
	cases := []struct {
		status ApplicationStatus
		valid  bool
	}{
		{StatusSubmitted, true},
		{StatusUnderReview, true},
		{StatusInterviewScheduled, true},
		{StatusAccepted, true},
		{StatusRejected, true},
		{ApplicationStatus(""), false},
		{ApplicationStatus("ON_HOLD"), false},
		{ApplicationStatus("submitted"), false},
	}
	for _, tc := range cases {
		if got := tc.status.Valid(); got != tc.valid {
			t.Errorf("Valid(%q) = %v, want %v", tc.status, got, tc.valid)
		}
	}
}

func TestApplicationStatusDisplay(t *testing.T) {
	cases := map[ApplicationStatus]string{
		StatusSubmitted:          "Submitted",
		StatusUnderReview:        "Under Review",
		StatusInterviewScheduled: "Interview Scheduled",
		StatusAccepted:           "Accepted",
		StatusRejected:           "Rejected",
	}
	for status, want := range cases {
		if got := status.Display(); got != want {
			t.Errorf("Display(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestDepartmentValid(t *testing.T) {
	for _, d := range Departments() {
		if !d.Valid() {
			t.Errorf("Valid(%q) = false, want true", d)
		}
	}
	for _, d := range []Department{"", "LEGAL", "it"} {
		if d.Valid() {
			t.Errorf("Valid(%q) = true, want false", d)
		}
	}
	if got := DepartmentFinance.Display(); got != "Finance" {
		t.Errorf("Display(FINANCE) = %q, want Finance", got)
	}
}

func TestCandidateHasResume(t *testing.T) {
	var nilCandidate *Candidate
	if nilCandidate.HasResume() {
		t.Error("nil candidate reports a resume")
	}
	if (&Candidate{}).HasResume() {
		t.Error("empty key reports a resume")
	}
	if !(&Candidate{ResumeKey: "resumes/a/b.pdf"}).HasResume() {
		t.Error("populated key reports no resume")
	}
}
