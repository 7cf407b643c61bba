package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappilot/dustzap/pkg/dzerrors"
)

func TestZeroXAdapter_NoLiquidityIsNotTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"liquidityAvailable":false}`))
	}))
	defer srv.Close()

	a := NewZeroXAdapter(srv.URL, "")
	_, err := a.GetSwapData(context.Background(), baseQuoteRequest())
	require.Error(t, err)
	dzErr, ok := err.(*dzerrors.Error)
	require.True(t, ok)
	assert.Equal(t, dzerrors.KindNoLiquidity, dzErr.Kind)
}

func TestZeroXAdapter_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"liquidityAvailable":true,"buyAmount":"500000000000000000","to":"0xROUTER","data":"0xbeef","allowanceTarget":"0xALLOW","gas":"120000","gasPrice":"10000000000"}`))
	}))
	defer srv.Close()

	a := NewZeroXAdapter(srv.URL, "apikey")
	q, err := a.GetSwapData(context.Background(), baseQuoteRequest())
	require.NoError(t, err)
	assert.Equal(t, "0x", q.Provider)
	assert.Equal(t, "0xALLOW", q.ApproveTo)
}
