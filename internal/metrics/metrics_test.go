package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/compose-network/random-winner-game/configs"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderValues(t *testing.T) {
	r := New(configs.Metrics{}, "mumbai")

	r.ObserveStep("confirm", 1500*time.Millisecond)
	r.SetGasUsed(421_337)
	r.SetVerificationAttempts(3)
	r.SetResult("deployment_failed")
	r.SetResult("verified")

	assert.Equal(t, 1.5, testutil.ToFloat64(r.stepDuration.WithLabelValues("confirm")))
	assert.Equal(t, 421_337.0, testutil.ToFloat64(r.gasUsed))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.verificationAttempts))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.result.WithLabelValues("verified")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.result))
}

func TestPushWithoutGatewayIsNoop(t *testing.T) {
	r := New(configs.Metrics{}, "mumbai")
	assert.NoError(t, r.Push(context.Background()))
}

func TestPushSendsToGateway(t *testing.T) {
	var (
		method string
		path   string
		body   []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		method = req.Method
		path = req.URL.Path
		body, _ = io.ReadAll(req.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	r := New(configs.Metrics{PushgatewayURL: server.URL, Job: "rwg"}, "mumbai")
	r.SetGasUsed(100)
	r.SetResult("verified")

	require.NoError(t, r.Push(context.Background()))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/rwg/network/mumbai", path)
	assert.Contains(t, string(body), "rwg_deploy_gas_used")
}

func TestPushReportsGatewayErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	r := New(configs.Metrics{PushgatewayURL: server.URL}, "")

	assert.ErrorContains(t, r.Push(context.Background()), "failed to push metrics")
}
