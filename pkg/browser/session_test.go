package browser

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-scraper/pkg/config"
	"review-scraper/pkg/fetch"
	"review-scraper/pkg/utils"
)

func newTestLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

// stubPage satisfies fetch.Page without any browser behind it.
type stubPage struct {
	closed bool
}

func (p *stubPage) Navigate(string, time.Duration) error      { return nil }
func (p *stubPage) URL() string                               { return "" }
func (p *stubPage) Title() string                             { return "" }
func (p *stubPage) HTML() (string, error)                     { return "", nil }
func (p *stubPage) WaitVisible(string, time.Duration) error   { return nil }
func (p *stubPage) WaitStable(time.Duration) error            { return nil }
func (p *stubPage) Count(string) int                          { return 0 }
func (p *stubPage) Styles(string) []string                    { return nil }
func (p *stubPage) Find(string) (fetch.Control, bool)         { return nil, false }
func (p *stubPage) FindVisibleByText([]string) (fetch.Control, bool) { return nil, false }
func (p *stubPage) Sleep(time.Duration)                       {}
func (p *stubPage) Close() error                              { p.closed = true; return nil }

// newStubManager wires a Manager whose launch and open hooks never touch
// a real Chromium. The rod.Browser handle stays unconnected; the Manager
// only stores it.
func newStubManager(capacity int) (*Manager, *int, *int) {
	m := NewManager(config.BrowserConfig{MaxConcurrentPages: capacity}, nil, newTestLog())
	launches := 0
	opens := 0
	m.launchFn = func() (*rod.Browser, *launcher.Launcher, error) {
		launches++
		return rod.New(), nil, nil
	}
	m.openFn = func(*rod.Browser) (fetch.Page, error) {
		opens++
		return &stubPage{}, nil
	}
	m.closeFn = func(*rod.Browser, *launcher.Launcher) {}
	return m, &launches, &opens
}

func TestManager_LeaseLaunchesOnce(t *testing.T) {
	m, launches, opens := newStubManager(2)

	p1, err := m.Lease(context.Background())
	require.NoError(t, err)
	p2, err := m.Lease(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, *launches)
	assert.Equal(t, 2, *opens)

	m.Release(p1)
	m.Release(p2)
	assert.True(t, p1.(*stubPage).closed)
	assert.True(t, p2.(*stubPage).closed)
}

func TestManager_GateBlocksAtCapacity(t *testing.T) {
	m, _, _ := newStubManager(1)

	p, err := m.Lease(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Lease(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrResourceExhausted)

	// Releasing frees the slot again.
	m.Release(p)
	p2, err := m.Lease(context.Background())
	require.NoError(t, err)
	m.Release(p2)
}

func TestManager_OpenFailureReturnsSlot(t *testing.T) {
	m, _, _ := newStubManager(1)
	fail := true
	m.openFn = func(*rod.Browser) (fetch.Page, error) {
		if fail {
			return nil, errors.New("cannot create target")
		}
		return &stubPage{}, nil
	}

	_, err := m.Lease(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrResourceExhausted)

	// The failed lease must not leak its slot.
	fail = false
	p, err := m.Lease(context.Background())
	require.NoError(t, err)
	m.Release(p)
}

func TestManager_LaunchFailureReturnsSlot(t *testing.T) {
	m, _, _ := newStubManager(1)
	m.launchFn = func() (*rod.Browser, *launcher.Launcher, error) {
		return nil, nil, errors.New("chrome not found")
	}

	_, err := m.Lease(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrResourceExhausted)

	m.launchFn = func() (*rod.Browser, *launcher.Launcher, error) {
		return rod.New(), nil, nil
	}
	p, err := m.Lease(context.Background())
	require.NoError(t, err)
	m.Release(p)
}

func TestManager_ResetForcesRelaunch(t *testing.T) {
	m, launches, _ := newStubManager(2)

	p, err := m.Lease(context.Background())
	require.NoError(t, err)
	m.Release(p)
	require.Equal(t, 1, *launches)

	m.Reset(context.Background())

	p, err = m.Lease(context.Background())
	require.NoError(t, err)
	m.Release(p)
	assert.Equal(t, 2, *launches)
}

func TestManager_StartIsEagerAndIdempotent(t *testing.T) {
	m, launches, _ := newStubManager(2)

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Start(context.Background()))
	assert.Equal(t, 1, *launches)

	p, err := m.Lease(context.Background())
	require.NoError(t, err)
	m.Release(p)
	assert.Equal(t, 1, *launches)
}

func TestManager_Capacity(t *testing.T) {
	m, _, _ := newStubManager(3)
	assert.Equal(t, 3, m.Capacity())
}
