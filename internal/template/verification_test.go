package template

import (
	"strings"
	"testing"
)

func TestVerificationPageSuccess(t *testing.T) {
	page := VerificationPage(true, "Your email has been verified successfully!", "http://localhost:3000/?verified=true")

	if !strings.Contains(page, "Email Verified!") {
		t.Fatal("missing success title")
	}
	if !strings.Contains(page, "Your email has been verified successfully!") {
		t.Fatal("missing message")
	}
	// html/template escapes the URL for the JS string context, so match
	// the pieces that survive escaping rather than the raw URL.
	if !strings.Contains(page, "window.location.href") {
		t.Fatal("missing redirect script")
	}
	if !strings.Contains(page, "localhost:3000") || !strings.Contains(page, "verified=true") {
		t.Fatal("missing redirect target")
	}
	if !strings.Contains(page, "countdown") {
		t.Fatal("missing redirect countdown")
	}
}

func TestVerificationPageFailure(t *testing.T) {
	page := VerificationPage(false, "The link may be expired or invalid.", "")

	if !strings.Contains(page, "Verification Failed") {
		t.Fatal("missing failure title")
	}
	if strings.Contains(page, "countdown") {
		t.Fatal("failure page should not redirect")
	}
}

func TestVerificationPageEscapesMessage(t *testing.T) {
	page := VerificationPage(false, `<script>alert("x")</script>`, "")

	if strings.Contains(page, `<script>alert("x")</script>`) {
		t.Fatal("message not escaped")
	}
}
