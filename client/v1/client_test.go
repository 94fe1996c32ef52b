package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cryptohub/inventory/classifier"
	"cryptohub/inventory/types"
)

func TestClassifyRequestConfig(t *testing.T) {
	base := classifier.DefaultConfig()

	type args struct {
		req *ClassifyRequest
	}
	tests := [...]struct {
		name string
		args args
		want classifier.Config
	}{
		{`nil`, args{nil}, base},
		{`empty`, args{&ClassifyRequest{}}, base},
		{`horizon`, args{&ClassifyRequest{ExpiryHorizonDays: types.P(7)}}, classifier.Config{
			ExpiryHorizonDays:            7,
			WeakAlgorithmPatterns:        base.WeakAlgorithmPatterns,
			RotationExpectedEnvironments: base.RotationExpectedEnvironments,
		}},
		{`patterns and environments`, args{&ClassifyRequest{
			WeakAlgorithmPatterns:        []string{"DSA"},
			RotationExpectedEnvironments: []types.Environment{types.EnvironmentVMware},
		}}, classifier.Config{
			ExpiryHorizonDays:            base.ExpiryHorizonDays,
			WeakAlgorithmPatterns:        []string{"DSA"},
			RotationExpectedEnvironments: []types.Environment{types.EnvironmentVMware},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.args.req.Config(base))
		})
	}
}

func TestHTTPError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid batch"}`))
	}))
	defer ts.Close()

	_, err := New(ts.URL).Ingest(ctx, &types.Batch{})
	require.Error(t, err)

	var he *HttpError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusBadRequest, he.Code())
	require.Equal(t, "invalid batch", he.Error())
	require.False(t, he.Temporary())
}

func TestRetry(t *testing.T) {
	type args struct {
		failures int32
		status   int
	}
	tests := [...]struct {
		name      string
		args      args
		wantErr   bool
		wantCalls int32
	}{
		{`success`, args{0, http.StatusServiceUnavailable}, false, 1},
		{`recover from 503`, args{2, http.StatusServiceUnavailable}, false, 3},
		{`no retry on 400`, args{5, http.StatusBadRequest}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var calls int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&calls, 1)
				w.Header().Set("Content-Type", "application/json")
				if n <= tt.args.failures {
					w.WriteHeader(tt.args.status)
					w.Write([]byte(`{"message":"failed"}`))
					return
				}
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"status":"success","batch_id":"b1"}`))
			}))
			defer ts.Close()

			resp, err := New(ts.URL).WithRetry(5, time.Millisecond).Ingest(ctx, &types.Batch{})
			require.Truef(t, (err != nil) == tt.wantErr, `Ingest() failed: error = %+v, wantErr = %v`, err, tt.wantErr)
			require.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
			if !tt.wantErr {
				require.Equal(t, "b1", resp.BatchID)
			}
		})
	}
}
