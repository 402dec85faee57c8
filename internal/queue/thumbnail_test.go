package queue

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/probe"
)

type fakeProber struct {
	info     *probe.Info
	probeErr error
	thumbErr error
	thumbAt  time.Duration
	thumbOut string
	width    int
	calls    int
}

func (p *fakeProber) Probe(context.Context, string) (*probe.Info, error) {
	return p.info, p.probeErr
}

func (p *fakeProber) Thumbnail(_ context.Context, _, out string, at time.Duration, width int) error {
	p.calls++
	p.thumbOut, p.thumbAt, p.width = out, at, width
	return p.thumbErr
}

func TestThumbnailGenerator_UsesTenPercentOffset(t *testing.T) {
	dir := t.TempDir()
	prober := &fakeProber{info: &probe.Info{Duration: 24 * time.Minute}}
	rec := &fakeRecorder{}
	g := NewThumbnailGenerator(dir, prober, rec, nil)

	require.NoError(t, g.Handle(context.Background(), ThumbnailJob{ItemID: 5, VideoPath: "/media/a.mkv"}))
	assert.Equal(t, 144*time.Second, prober.thumbAt)
	assert.Equal(t, probe.DefaultThumbnailWidth, prober.width)

	want := filepath.Join(dir, "images", "5", "thumb.jpg")
	assert.Equal(t, want, prober.thumbOut)
	assert.Equal(t, []recordedImage{{5, library.ImagePrimary, want}}, rec.images)
}

func TestThumbnailGenerator_ProbeFailureUsesDefault(t *testing.T) {
	prober := &fakeProber{probeErr: errors.New("moov atom not found")}
	g := NewThumbnailGenerator(t.TempDir(), prober, &fakeRecorder{}, nil)

	require.NoError(t, g.Handle(context.Background(), ThumbnailJob{ItemID: 1, VideoPath: "/media/a.mkv"}))
	assert.Equal(t, 30*time.Second, prober.thumbAt)
}

func TestThumbnailGenerator_ThumbnailError(t *testing.T) {
	prober := &fakeProber{info: &probe.Info{Duration: time.Hour}, thumbErr: errors.New("exit status 1")}
	rec := &fakeRecorder{}
	g := NewThumbnailGenerator(t.TempDir(), prober, rec, nil)

	err := g.Handle(context.Background(), ThumbnailJob{ItemID: 1, VideoPath: "/media/a.mkv"})
	require.Error(t, err)
	assert.Empty(t, rec.images)
}

func TestThumbnailGenerator_KeepsExistingArtwork(t *testing.T) {
	prober := &fakeProber{info: &probe.Info{Duration: time.Hour}}
	rec := &fakeRecorder{has: true}
	g := NewThumbnailGenerator(t.TempDir(), prober, rec, nil)

	require.NoError(t, g.Handle(context.Background(), ThumbnailJob{ItemID: 1, VideoPath: "/media/a.mkv"}))
	assert.Zero(t, prober.calls)
	assert.Empty(t, rec.images)
}
