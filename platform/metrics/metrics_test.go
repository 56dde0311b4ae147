package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestIncAccumulatesPerLabelSet(t *testing.T) {
	reg := NewRegistryWithMeter(noop.NewMeterProvider().Meter("test"))
	ctx := context.Background()

	reg.Inc(ctx, "profile_images_uploaded_total", map[string]string{"owner_type": "customer"}, 2)
	reg.Inc(ctx, "profile_images_uploaded_total", map[string]string{"owner_type": "customer"}, 1)
	reg.Inc(ctx, "profile_images_uploaded_total", map[string]string{"owner_type": "lead"}, 5)

	if got := reg.Value("profile_images_uploaded_total", map[string]string{"owner_type": "customer"}); got != 3 {
		t.Fatalf("expected customer counter 3, got %d", got)
	}
	if got := reg.Value("profile_images_uploaded_total", map[string]string{"owner_type": "lead"}); got != 5 {
		t.Fatalf("expected lead counter 5, got %d", got)
	}
}

func TestFullKeyIsOrderIndependent(t *testing.T) {
	a := fullKey("x", map[string]string{"b": "2", "a": "1"})
	b := fullKey("x", map[string]string{"a": "1", "b": "2"})
	if a != b || a != "x{a=1,b=2}" {
		t.Fatalf("unexpected keys %q and %q", a, b)
	}
}

func TestNilRegistryIsSafe(t *testing.T) {
	var reg *Registry
	reg.Inc(context.Background(), "x", nil, 1)
	if reg.Value("x", nil) != 0 {
		t.Fatal("expected nil registry to report zero")
	}
}

func TestHandlerServesSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := NewRegistryWithMeter(nil)
	reg.Inc(context.Background(), "hits", nil, 4)

	engine := gin.New()
	engine.GET("/metrics", reg.Handler())

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["hits"] != 4 {
		t.Fatalf("expected hits=4, got %v", body)
	}
}
