// Package i2cdev gives every device driver the same fault-tolerant access
// pattern: lazy bus setup, optional multiplexer routing, presence probing
// and automatic reinitialisation after a device is unplugged.
//
// A driver owns one Controller and expresses each public method as a
// guarded call:
//
//	v, ok, err := i2cdev.Guard(c, func(bus drivers.I2C) (uint16, error) {
//		return readDistance(bus)
//	})
//
// ok == false with a nil error means "no reading": the device did not
// acknowledge and will be set up again on the next call. Any other failure
// is returned unchanged.
package i2cdev

import (
	"periphkit-go/errcode"
	"periphkit-go/i2cbus"
	"periphkit-go/x/conv"
	"periphkit-go/x/logx"

	"github.com/sirupsen/logrus"
	"tinygo.org/x/drivers"
)

// State is the lifecycle state of a Controller.
type State uint8

const (
	NeedsInit State = iota
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "needs_init"
}

// Device describes the chip a Controller guards.
type Device struct {
	Name    string
	Address uint16
	// Init runs once per successful probe, before any other operation.
	// May be nil.
	Init func(bus drivers.I2C) error
}

// Config is supplied at construction. Start from DefaultConfig: the zero
// Channel is segment 0, not NoChannel.
type Config struct {
	Channel      Channel
	I2C          i2cbus.Config
	MuxAddress   uint16 // 0 => DefaultMuxAddress
	ShowWarnings bool

	// Open opens the owned bus; nil => i2cbus.Open.
	Open i2cbus.Opener
	// Shared is an externally owned bus. When set, Open and I2C are unused
	// and the controller never reopens it.
	Shared drivers.I2C
	// IsAbsent classifies errors; nil => IsAbsent.
	IsAbsent func(error) bool

	Logger *logrus.Entry
}

// DefaultConfig is channel 255 on bus 0 (GP12/GP13, 400 kHz) with warnings.
func DefaultConfig() Config {
	return Config{
		Channel:      NoChannel,
		I2C:          i2cbus.DefaultConfig(),
		MuxAddress:   DefaultMuxAddress,
		ShowWarnings: true,
	}
}

type muxProbe uint8

const (
	muxUnknown muxProbe = iota
	muxPresent
	muxMissing
)

// Controller implements the lifecycle of one device. Not safe for
// concurrent use.
type Controller struct {
	cfg    Config
	dev    Device
	log    *logrus.Entry
	absent func(error) bool

	bus    drivers.I2C
	state  State
	mux    muxProbe
	warned bool
}

// NewController validates cfg and returns a controller in NeedsInit. The
// bus is not touched until the first call.
func NewController(cfg Config, dev Device) (*Controller, error) {
	if !cfg.Channel.Valid() {
		return nil, &errcode.E{C: errcode.InvalidChannel, Op: "new controller", Msg: dev.Name}
	}
	if dev.Address < scanFirst || dev.Address > scanLast {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "new controller", Msg: "address out of range"}
	}
	if cfg.MuxAddress == 0 {
		cfg.MuxAddress = DefaultMuxAddress
	}
	cfg.I2C = cfg.I2C.WithDefaults()
	if cfg.Open == nil {
		cfg.Open = i2cbus.Open
	}
	absent := cfg.IsAbsent
	if absent == nil {
		absent = IsAbsent
	}
	log := cfg.Logger
	if log == nil {
		log = logx.Discard()
	}
	name := dev.Name
	if name == "" {
		name = conv.AddrHex(dev.Address)
	}
	log = logx.Prefix(log, name).WithField("addr", conv.AddrHex(dev.Address))

	return &Controller{
		cfg:    cfg,
		dev:    dev,
		log:    log,
		absent: absent,
		bus:    cfg.Shared,
	}, nil
}

func (c *Controller) State() State { return c.state }
func (c *Controller) Address() uint16 { return c.dev.Address }
func (c *Controller) Channel() Channel { return c.cfg.Channel }
func (c *Controller) Name() string { return c.dev.Name }
func (c *Controller) Bus() drivers.I2C { return c.bus }

// MuxInUse reports whether the multiplexer was found. It is false until
// the first probe.
func (c *Controller) MuxInUse() bool { return c.mux == muxPresent }

// Reset returns to NeedsInit and forgets the multiplexer probe. An owned
// bus is reopened on the next call.
func (c *Controller) Reset() {
	c.state = NeedsInit
	c.mux = muxUnknown
	if c.cfg.Shared == nil {
		c.bus = nil
	}
}

// EnsureReady brings the device to Ready. It returns (false, nil) when the
// device (or the multiplexer route to it) does not answer.
func (c *Controller) EnsureReady() (bool, error) {
	if c.state == Ready {
		return true, nil
	}

	if c.cfg.Shared == nil {
		bus, err := c.cfg.Open(c.cfg.I2C)
		if err != nil {
			return false, err
		}
		c.bus = bus
	}

	if c.mux == muxUnknown {
		found, err := visible(c.bus, c.cfg.MuxAddress, c.absent)
		if err != nil {
			return c.fail("mux probe", err)
		}
		if found {
			c.mux = muxPresent
			c.log.WithField("mux", conv.AddrHex(c.cfg.MuxAddress)).Debug("multiplexer found")
		} else {
			c.mux = muxMissing
			c.log.Debug("no multiplexer, using bus directly")
		}
	}
	if c.mux == muxPresent {
		if err := SelectChannel(c.bus, c.cfg.MuxAddress, c.cfg.Channel); err != nil {
			return c.fail("select", err)
		}
	}

	found, err := visible(c.bus, c.dev.Address, c.absent)
	if err != nil {
		return c.fail("probe", err)
	}
	if !found {
		c.warnAbsent()
		return false, nil
	}

	if c.dev.Init != nil {
		if err := c.dev.Init(c.bus); err != nil {
			if c.absent(err) {
				c.warnAbsent()
				return false, nil
			}
			return false, &errcode.E{C: errcode.InitFailed, Op: "init", Msg: c.dev.Name, Err: err}
		}
	}

	c.state = Ready
	c.warned = false
	c.log.Debug("device ready")
	return true, nil
}

// Do is the guarded call. op runs only when the device is Ready, after the
// multiplexer channel has been reselected. An absence-class failure moves
// the controller back to NeedsInit and is reported as (false, nil).
func (c *Controller) Do(op func(bus drivers.I2C) error) (bool, error) {
	ready, err := c.EnsureReady()
	if err != nil || !ready {
		return false, err
	}
	if c.mux == muxPresent {
		if err := SelectChannel(c.bus, c.cfg.MuxAddress, c.cfg.Channel); err != nil {
			return c.lost(err)
		}
	}
	if err := op(c.bus); err != nil {
		return c.lost(err)
	}
	return true, nil
}

// Guard is Do for operations that produce a value. The zero T is returned
// whenever ok is false.
func Guard[T any](c *Controller, op func(bus drivers.I2C) (T, error)) (v T, ok bool, err error) {
	ok, err = c.Do(func(bus drivers.I2C) error {
		var opErr error
		v, opErr = op(bus)
		return opErr
	})
	if !ok {
		var zero T
		return zero, false, err
	}
	return v, true, nil
}

// lost handles a failure while Ready.
func (c *Controller) lost(err error) (bool, error) {
	if !c.absent(err) {
		c.log.WithError(err).WithField("code", errcode.Of(err)).Debug("operation failed")
		return false, err
	}
	c.state = NeedsInit
	c.warnAbsent()
	return false, nil
}

// fail handles a failure during setup; state is still NeedsInit.
func (c *Controller) fail(step string, err error) (bool, error) {
	if c.absent(err) {
		c.warnAbsent()
		return false, nil
	}
	c.log.WithError(err).WithField("step", step).Debug("setup failed")
	return false, err
}

func (c *Controller) warnAbsent() {
	if c.warned || !c.cfg.ShowWarnings {
		return
	}
	c.warned = true
	e := c.log
	if c.mux == muxPresent {
		e = e.WithField("channel", int(c.cfg.Channel))
	}
	e.Warn("device not found, check wiring and channel")
}
