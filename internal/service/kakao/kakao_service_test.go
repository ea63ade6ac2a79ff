package kakao

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moim-be/pkg/logger"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log, err := logger.New("error", "test")
	require.NoError(t, err)

	return &Service{
		restAPIKey: "test-key",
		searchURL:  srv.URL,
		httpClient: &http.Client{Timeout: 2 * time.Second},
		logger:     log,
	}
}

func TestSearchByKeyword(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "KakaoAK test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "강남 삼겹살", r.URL.Query().Get("query"))
		assert.Equal(t, "127.02", r.URL.Query().Get("x"))
		assert.Equal(t, "37.49", r.URL.Query().Get("y"))
		assert.Equal(t, "2000", r.URL.Query().Get("radius"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"documents": [
				{
					"id": "26338954",
					"place_name": "하남돼지집",
					"category_name": "음식점 > 한식 > 육류,고기",
					"address_name": "서울 강남구 역삼동 817-8",
					"phone": "02-552-9980",
					"place_url": "http://place.map.kakao.com/26338954",
					"x": "127.0286", "y": "37.4981", "distance": "312"
				}
			],
			"meta": {"total_count": 1}
		}`))
	})

	results, err := s.SearchByKeyword(context.Background(), "강남 삼겹살", "127.02", "37.49", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, "26338954", got.ID)
	assert.Equal(t, "하남돼지집", got.Name)
	assert.InDelta(t, 127.0286, got.Longitude, 1e-9)
	assert.InDelta(t, 37.4981, got.Latitude, 1e-9)
	assert.Equal(t, 312, got.Distance)
}

func TestSearchByKeyword_NoCoordinateSkipsRadius(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("x"))
		assert.Empty(t, r.URL.Query().Get("radius"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"documents": [], "meta": {"total_count": 0}}`))
	})

	results, err := s.SearchByKeyword(context.Background(), "홍대 카페", "", "", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchByKeyword_EmptyQuery(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := s.SearchByKeyword(context.Background(), "", "", "", 0)
	require.Error(t, err)
}

func TestSearchByKeyword_UpstreamError(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorType": "AccessDeniedError"}`))
	})

	_, err := s.SearchByKeyword(context.Background(), "강남 삼겹살", "", "", 0)
	require.Error(t, err)
}
