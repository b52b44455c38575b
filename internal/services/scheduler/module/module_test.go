package module

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reviewpipe/internal/modkit"
	"reviewpipe/internal/platform/config"
	"reviewpipe/internal/platform/testkit"
	pipedom "reviewpipe/internal/services/pipeline/domain"

	"github.com/go-chi/chi/v5"
)

type runner struct{}

func (runner) Run(_ context.Context, q string) (pipedom.Report, error) {
	return pipedom.Report{Query: q}, nil
}

func TestFromConfig(t *testing.T) {
	t.Setenv("SCHEDULER_RUN_AT", "03:30")
	t.Setenv("SCHEDULER_POLL", "5s")

	c := FromConfig(config.New())
	if c.Hour != 3 || c.Minute != 30 || c.Poll != 5*time.Second || c.LookbackDays != 7 {
		t.Fatalf("config = %+v", c)
	}
}

func TestFromConfig_BadClock(t *testing.T) {
	t.Setenv("SCHEDULER_RUN_AT", "25:00")
	testkit.MustPanic(t, func() { FromConfig(config.New()) })
}

func TestNew_RequiresRunner(t *testing.T) {
	testkit.MustPanic(t, func() { New(modkit.Deps{Cfg: config.New()}) })
}

func TestMountRoutes(t *testing.T) {
	for _, prefix := range []string{"", "/ops"} {
		m := New(modkit.Deps{Cfg: config.New()},
			modkit.WithPorts[pipedom.RunnerPort](runner{}),
			modkit.WithPrefix(prefix))
		r := chi.NewRouter()
		m.MountRoutes(r)

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, prefix+"/healthz", nil))
		if rr.Code != stdhttp.StatusOK {
			t.Fatalf("prefix %q: healthz = %d", prefix, rr.Code)
		}
	}
}

func TestNew_TriggerRunsPipeline(t *testing.T) {
	m := New(modkit.Deps{Cfg: config.New()}, modkit.WithPorts[pipedom.RunnerPort](runner{}))
	s := modkit.MustPortsOf[Ports](m).Scheduler
	if err := s.Trigger(context.Background(), "SELECT 1"); err != nil {
		t.Fatal(err)
	}
	s.Wait()
	if last, ok := s.Last(); !ok || last.Report.Query != "SELECT 1" {
		t.Fatalf("last = %+v", last)
	}
}
