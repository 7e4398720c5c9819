package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)

	before := testutil.ToFloat64(Registrations.WithLabelValues("full"))
	Registrations.WithLabelValues("full").Inc()
	if got := testutil.ToFloat64(Registrations.WithLabelValues("full")); got != before+1 {
		t.Fatalf("registrations = %v, want %v", got, before+1)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}
}
