package render

import (
	"fmt"
	"io"

	"github.com/stretchr/testify/mock"

	"csvdash/domain/dashboard"
	"csvdash/internal"
	"csvdash/ports"
)

var quietLogger = internal.NewLoggerTo(io.Discard, internal.LogLevelError)

// fakeHandle counts how often it was destroyed
type fakeHandle struct {
	lib       *fakeLibrary
	target    dashboard.TargetID
	destroyed bool
}

func (h *fakeHandle) Destroy() error {
	if h.destroyed {
		return nil
	}
	h.destroyed = true
	h.lib.destroys++
	h.lib.live[h.target]--
	return nil
}

// fakeLibrary records created specs and tracks live instances per target
type fakeLibrary struct {
	creates  int
	destroys int
	live     map[dashboard.TargetID]int
	specs    map[dashboard.TargetID]dashboard.ChartSpec
	failOn   map[dashboard.TargetID]bool
	panicOn  map[dashboard.TargetID]bool
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{
		live:    make(map[dashboard.TargetID]int),
		specs:   make(map[dashboard.TargetID]dashboard.ChartSpec),
		failOn:  make(map[dashboard.TargetID]bool),
		panicOn: make(map[dashboard.TargetID]bool),
	}
}

func (l *fakeLibrary) Create(target dashboard.TargetID, spec dashboard.ChartSpec) (ports.ChartHandle, error) {
	if l.panicOn[target] {
		panic("canvas exploded")
	}
	if l.failOn[target] {
		return nil, fmt.Errorf("cannot draw on %s", target)
	}
	l.creates++
	l.live[target]++
	l.specs[target] = spec
	return &fakeHandle{lib: l, target: target}, nil
}

// fakeSurfaces registers a fixed set of targets
type fakeSurfaces map[dashboard.TargetID]bool

func allSurfaces() fakeSurfaces {
	s := fakeSurfaces{}
	for _, t := range dashboard.Targets {
		s[t] = true
	}
	return s
}

func (s fakeSurfaces) Has(target dashboard.TargetID) bool { return s[target] }

// MockChartLibrary is a testify mock for expectation-style tests
type MockChartLibrary struct {
	mock.Mock
}

func (m *MockChartLibrary) Create(target dashboard.TargetID, spec dashboard.ChartSpec) (ports.ChartHandle, error) {
	args := m.Called(target, spec)
	if h, ok := args.Get(0).(ports.ChartHandle); ok {
		return h, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockChartHandle struct {
	mock.Mock
}

func (m *MockChartHandle) Destroy() error {
	args := m.Called()
	return args.Error(0)
}
