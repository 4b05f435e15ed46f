package scheduler

import (
	"errors"
	"testing"

	"github.com/go-co-op/gocron/v2"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	sched, err := gocron.NewScheduler()
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	svc := &Service{scheduler: sched}
	t.Cleanup(func() {
		_ = svc.Stop()
	})
	return svc
}

func TestAddJobValidatesInputs(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.AddJob("", "*/5 * * * *", func() {}); !errors.Is(err, ErrEmptyJobName) {
		t.Errorf("empty name: err = %v, want ErrEmptyJobName", err)
	}
	if _, err := svc.AddJob("job", "  ", func() {}); !errors.Is(err, ErrEmptyCronExpr) {
		t.Errorf("empty cron: err = %v, want ErrEmptyCronExpr", err)
	}
}

func TestAddJobRejectsMalformedCron(t *testing.T) {
	svc := newTestService(t)

	for _, expr := range []string{"not a cron", "61 * * * *", "* * * *"} {
		if _, err := svc.AddJob("job", expr, func() {}); err == nil {
			t.Errorf("expression %q: expected error", expr)
		}
	}
}

func TestAddJobAcceptsStandardExpressions(t *testing.T) {
	svc := newTestService(t)

	for _, expr := range []string{"*/15 * * * *", "0 6 * * 1", "30 18 * * *"} {
		if _, err := svc.AddJob("job-"+expr, expr, func() {}); err != nil {
			t.Errorf("expression %q: unexpected error %v", expr, err)
		}
	}
}

func TestNilServiceErrors(t *testing.T) {
	var svc *Service
	if err := svc.Stop(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("stop: err = %v, want ErrNotInitialized", err)
	}
	if _, err := svc.AddJob("job", "* * * * *", func() {}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("add job: err = %v, want ErrNotInitialized", err)
	}
}
