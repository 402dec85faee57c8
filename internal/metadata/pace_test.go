package metadata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediarr/pkg/anilist"
	"github.com/vmunix/mediarr/pkg/jikan"
	"github.com/vmunix/mediarr/pkg/release"
)

// jikanServer answers year-bounded searches with nothing, so BestMatch
// has to retry without the year.
func jikanServer(t *testing.T) (*httptest.Server, func() []time.Time) {
	t.Helper()
	var (
		mu    sync.Mutex
		times []time.Time
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()

		data := []jikan.Anime{}
		if r.URL.Query().Get("start_date") == "" {
			data = append(data, jikan.Anime{MalID: 52991, Title: "Sousou no Frieren", Type: "TV", Year: 2023})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	t.Cleanup(srv.Close)
	return srv, func() []time.Time {
		mu.Lock()
		defer mu.Unlock()
		return append([]time.Time(nil), times...)
	}
}

func TestResolver_SpacesEveryJikanRequest(t *testing.T) {
	srv, requests := jikanServer(t)
	interval := 200 * time.Millisecond

	r := NewResolver(Sources{
		AniList: &stubAniList{},
		Jikan:   jikan.New(jikan.WithBaseURL(srv.URL)),
	},
		WithGateInterval(ProviderAniList, 0),
		WithGateInterval(ProviderJikan, interval),
	)

	rec, err := r.Resolve(context.Background(), "Sousou no Frieren", 2023, release.ClassAnime)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(52991), rec.MALID)

	times := requests()
	require.Len(t, times, 2, "search with year, then without")
	assert.GreaterOrEqual(t, times[1].Sub(times[0]), interval*3/4)
}

func TestResolver_CacheHitSkipsGate(t *testing.T) {
	next := &stubAniList{media: &anilist.Media{ID: 154587, Title: anilist.Title{Romaji: "Sousou no Frieren"}, SeasonYear: 2023}}
	r := NewResolver(Sources{AniList: next},
		WithCache(NewCache(setupTestDB(t))),
		WithGateInterval(ProviderAniList, time.Hour),
		WithGateInterval(ProviderJikan, 0),
	)

	_, err := r.Resolve(context.Background(), "Sousou no Frieren", 2023, release.ClassAnime)
	require.NoError(t, err)

	// The gate's next slot is an hour away; only the cache can answer in time.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	rec, err := r.Resolve(ctx, "Sousou no Frieren", 2023, release.ClassAnime)
	require.NoError(t, err)
	assert.Equal(t, int64(154587), rec.AniListID)
	assert.Equal(t, 1, next.searches)
}

type pacedStub struct {
	stubAniList
	pacer func(context.Context) error
}

func (p *pacedStub) SetPacer(wait func(context.Context) error) { p.pacer = wait }

func TestPace_InstallsGateOnClients(t *testing.T) {
	g := NewGate(time.Hour)
	wrap := func(s AniListSource, g *Gate) AniListSource { return &gatedAniList{next: s, gate: g} }

	client := &pacedStub{}
	assert.Same(t, client, pace[AniListSource](client, g, wrap))
	require.NotNil(t, client.pacer)

	plain := &stubAniList{}
	got := pace[AniListSource](plain, g, wrap)
	require.IsType(t, &gatedAniList{}, got)

	ctx := context.Background()
	_, err := got.BestMatch(ctx, "Frieren", 0)
	assert.ErrorIs(t, err, anilist.ErrNotFound)

	// The first turn was spent; the next one is past any short deadline.
	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = got.BestMatch(short, "Frieren", 0)
	assert.Error(t, err)
	assert.Equal(t, 1, plain.searches)

	assert.Nil(t, pace[AniListSource](nil, g, wrap))
}
