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

func TestParaswapProxyByChainIsExact(t *testing.T) {
	assert.Equal(t, "0x216b4b4ba9f3e719726886d34a177484278bfcae", ParaswapProxyByChain[1])
	assert.Equal(t, "0x93aAAe79a53759cD164340E4C8766E4Db5331cD7", ParaswapProxyByChain[8453])
	assert.Equal(t, "0x216B4B4Ba9F3e719726886d34a177484278Bfcae", ParaswapProxyByChain[42161])
}

func TestParaswapAdapter_UnsupportedChain(t *testing.T) {
	a := NewParaswapAdapter("http://unused")
	req := baseQuoteRequest()
	req.ChainID = 999999

	_, err := a.GetSwapData(context.Background(), req)
	require.Error(t, err)
	dzErr, ok := err.(*dzerrors.Error)
	require.True(t, ok)
	assert.Equal(t, dzerrors.KindUnsupportedToken, dzErr.Kind)
}

func TestParaswapAdapter_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"priceRoute":{"destAmount":"2000000000000000000","gasCostUSD":"0.5","gasCost":"130000"}}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"to":"0xROUTER","data":"0xcafe"}`))
	}))
	defer srv.Close()

	a := NewParaswapAdapter(srv.URL)
	req := baseQuoteRequest()
	req.ChainID = 1

	q, err := a.GetSwapData(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "paraswap", q.Provider)
	assert.Equal(t, ParaswapProxyByChain[1], q.ApproveTo)
	assert.True(t, q.GasIncludedInToUSD)
}
