// Package view holds the single chart mount and the toggle state between the
// temperature and activity views.
package view

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"circadian/internal/chart"
	"circadian/internal/dataset"
	"circadian/internal/logger"
)

// State 是挂载点的状态：未渲染、温度视图、活动视图。
type State int

const (
	StateUnrendered State = iota
	StateTemperature
	StateActivity
)

func (s State) String() string {
	switch s {
	case StateTemperature:
		return "temperature"
	case StateActivity:
		return "activity"
	default:
		return "unrendered"
	}
}

func stateFor(kind chart.Kind) State {
	if kind == chart.KindActivity {
		return StateActivity
	}
	return StateTemperature
}

// Button IDs on the page.
const (
	ButtonTemperature = "tempBtn"
	ButtonActivity    = "actBtn"
)

// ErrAlreadyLoaded is returned when datasets are handed over a second time.
var ErrAlreadyLoaded = errors.New("datasets already loaded")

// Button 是页面上的一个切换按钮。
type Button struct {
	ID     string     `json:"id"`
	Kind   chart.Kind `json:"-"`
	Active bool       `json:"active"`
}

// Snapshot is a copy of the controller state safe to hand to other goroutines.
type Snapshot struct {
	State   State
	Buttons []Button
	SVG     []byte
	Scene   *chart.Scene
	LoadErr error
	Renders int
}

// Controller 串行处理加载完成与切换通知，每次渲染整体替换挂载内容。
type Controller struct {
	mu      sync.Mutex
	data    dataset.Datasets
	state   State
	scene   *chart.Scene
	svg     []byte
	loadErr error
	renders int
}

func NewController() *Controller {
	return &Controller{}
}

// Loaded hands over the datasets and renders the default temperature view.
func (c *Controller) Loaded(data dataset.Datasets) error {
	if !data.Loaded() {
		return chart.ErrNotLoaded
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data.Loaded() {
		return ErrAlreadyLoaded
	}
	c.data = data
	c.loadErr = nil
	return c.renderLocked(chart.KindTemperature)
}

// Failed records a load failure. The mount stays unrendered for good.
func (c *Controller) Failed(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data.Loaded() {
		return
	}
	c.loadErr = err
	logger.Errorf("chart stays unrendered: %v", err)
}

// Toggle renders the requested view into the mount and marks its button active.
func (c *Controller) Toggle(kind chart.Kind) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.data.Loaded() {
		return c.snapshotLocked(), chart.ErrNotLoaded
	}
	if err := c.renderLocked(kind); err != nil {
		return c.snapshotLocked(), err
	}
	return c.snapshotLocked(), nil
}

// Datasets returns the loaded datasets, if any.
func (c *Controller) Datasets() (dataset.Datasets, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data, c.data.Loaded()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) renderLocked(kind chart.Kind) error {
	scene, err := chart.Render(kind, c.data)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := chart.EncodeSVG(&buf, scene); err != nil {
		return fmt.Errorf("encode %s view: %w", kind, err)
	}
	// 旧内容整体丢弃
	c.scene = scene
	c.svg = buf.Bytes()
	c.state = stateFor(kind)
	c.renders++
	logger.Debugf("rendered %s view (%d bytes, render #%d)", kind, len(c.svg), c.renders)
	return nil
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:   c.state,
		Buttons: buttonsFor(c.state),
		SVG:     append([]byte(nil), c.svg...),
		Scene:   c.scene,
		LoadErr: c.loadErr,
		Renders: c.renders,
	}
}

func buttonsFor(state State) []Button {
	return []Button{
		{ID: ButtonTemperature, Kind: chart.KindTemperature, Active: state == StateTemperature},
		{ID: ButtonActivity, Kind: chart.KindActivity, Active: state == StateActivity},
	}
}

// ButtonKind maps a page button id to the view it selects.
func ButtonKind(id string) (chart.Kind, error) {
	switch id {
	case ButtonTemperature:
		return chart.KindTemperature, nil
	case ButtonActivity:
		return chart.KindActivity, nil
	default:
		return 0, fmt.Errorf("%w: button %q", chart.ErrUnknownKind, id)
	}
}
