package cart

import (
	"testing"

	"github.com/bft-labs/cartkeeper/internal/app"
)

func TestConfig_SetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	if cfg.Backend != BackendFile || cfg.Key != app.DefaultKey {
		t.Errorf("backend = %q, key = %q", cfg.Backend, cfg.Key)
	}
	if got, want := cfg.retryPolicy(), app.DefaultRetryPolicy(); got != want {
		t.Errorf("retryPolicy() = %+v, want %+v", got, want)
	}
}
