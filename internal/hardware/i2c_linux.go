//go:build linux && !tinygo

package hardware

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"
)

const (
	i2cRdwrIOCTL    = 0x0707 // I2C_RDWR: combined write+read with REPEATED START
	i2cMsgRD        = 0x0001 // i2c_msg flag: read direction
	maxI2COpsPerSec = 500
)

// i2cMsg mirrors struct i2c_msg from linux/i2c.h
type i2cMsg struct {
	addr   uint16
	flags  uint16
	length uint16
	_pad   uint16 // struct alignment
	buf    uintptr
}

// i2cRdwr mirrors struct i2c_rdwr_ioctl_data from linux/i2c-dev.h
type i2cRdwr struct {
	msgs  uintptr
	nmsgs uint32
}

// I2CBus is a Linux i2c-dev adapter driven with I2C_RDWR transactions.
type I2CBus struct {
	mu      sync.Mutex
	path    string
	fd      int
	limiter *rate.Limiter
}

// OpenI2C opens an i2c-dev adapter, e.g. /dev/i2c-1.
func OpenI2C(path string) (*I2CBus, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("i2c: open %s: %w", path, err)
	}
	return &I2CBus{
		path:    path,
		fd:      fd,
		limiter: rate.NewLimiter(rate.Limit(maxI2COpsPerSec), 10),
	}, nil
}

// WriteReg16 writes [reg, hi, lo] in one message.
func (b *I2CBus) WriteReg16(addr uint16, reg byte, val uint16) error {
	wbuf := [3]byte{reg, byte(val >> 8), byte(val)}
	msgs := [1]i2cMsg{
		{addr: addr, flags: 0, length: 3, buf: uintptr(unsafe.Pointer(&wbuf[0]))},
	}
	if err := b.transfer(msgs[:]); err != nil {
		return fmt.Errorf("i2c: write 0x%02x reg=0x%02x: %w", addr, reg, err)
	}
	return nil
}

// ReadReg16 selects reg and reads two bytes back after a REPEATED START.
func (b *I2CBus) ReadReg16(addr uint16, reg byte) (uint16, error) {
	wbuf := [1]byte{reg}
	rbuf := [2]byte{}
	msgs := [2]i2cMsg{
		{addr: addr, flags: 0, length: 1, buf: uintptr(unsafe.Pointer(&wbuf[0]))},
		{addr: addr, flags: i2cMsgRD, length: 2, buf: uintptr(unsafe.Pointer(&rbuf[0]))},
	}
	if err := b.transfer(msgs[:]); err != nil {
		return 0, fmt.Errorf("i2c: read 0x%02x reg=0x%02x: %w", addr, reg, err)
	}
	return uint16(rbuf[0])<<8 | uint16(rbuf[1]), nil
}

func (b *I2CBus) transfer(msgs []i2cMsg) error {
	if err := b.limiter.Wait(context.Background()); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return fmt.Errorf("%s closed", b.path)
	}
	rdwr := i2cRdwr{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: uint32(len(msgs))}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(b.fd), i2cRdwrIOCTL, uintptr(unsafe.Pointer(&rdwr))); errno != 0 {
		return errno
	}
	return nil
}

// Close releases the adapter file descriptor.
func (b *I2CBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return nil
	}
	err := unix.Close(b.fd)
	b.fd = -1
	return err
}

var _ RegisterBus = (*I2CBus)(nil)
