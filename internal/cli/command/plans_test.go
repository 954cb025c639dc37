package command

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/yndnr/trainly-go/internal/core/domain"
)

func TestPlansList(t *testing.T) {
	h := newHarness(t)
	h.login()

	out := h.mustRun("-o", "json", "plans")
	var plans []domain.TrainingPlan
	if err := json.Unmarshal([]byte(out), &plans); err != nil {
		t.Fatalf("decode plans: %v", err)
	}
	if len(plans) != 2 || plans[1].Title != "Marathon Build" || plans[1].Weeks != 16 {
		t.Errorf("plans = %+v", plans)
	}

	out = h.mustRun("plans")
	if !strings.Contains(out, "First 5k") {
		t.Errorf("table output = %q", out)
	}
}

func TestPlansRequiresLogin(t *testing.T) {
	h := newHarness(t)

	err := h.run("plans")
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestPlansServerErrorFallsBack(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.setPlansStatus(http.StatusInternalServerError)

	out := h.mustRun("-o", "json", "plans")
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("fallback output = %q, want []", out)
	}
	if !strings.Contains(h.errOut.String(), "could not load plans") {
		t.Errorf("stderr = %q", h.errOut.String())
	}

	// The session survives a server error.
	st := decodeStatus(t, h.mustRun("-o", "json", "status"))
	if st.Phase != domain.PhaseAuthenticated {
		t.Errorf("phase = %q after 500", st.Phase)
	}
}

func TestPlansUnauthorizedLogsOut(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.setPlansStatus(http.StatusUnauthorized)

	err := h.run("plans")
	if !domain.IsUnauthorized(err) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
	if !strings.Contains(h.errOut.String(), "Signed out") {
		t.Errorf("stderr = %q", h.errOut.String())
	}

	st := decodeStatus(t, h.mustRun("-o", "json", "status"))
	if st.Phase != domain.PhaseAnonymous || st.TokenStored {
		t.Errorf("status after 401 = %+v", st)
	}
}
