//go:build linux

package mei

import (
	"encoding/binary"
	"errors"
	"os"
	"time"
	"unsafe"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// connectClientDataSize is sizeof(struct mei_connect_client_data): a union of the 16-byte client
// UUID (input) and struct mei_client (output).
const connectClientDataSize = 16

// mei ioctl type character.
const meiIoctlType = 'H'

// IOCTL_MEI_CONNECT_CLIENT = _IOWR('H', 0x01, struct mei_connect_client_data)
var ioctlConnectClient = ioc(iocRead|iocWrite, meiIoctlType, 0x01, connectClientDataSize)

// ioc constructs an ioctl number from direction, type, number, and size.
func ioc(dir, typ, nr, size uintptr) uintptr {
	return (dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift)
}

// fdHandle is a Handle on an open MEI character device.
type fdHandle struct {
	fd   int
	path string
}

var _ Handle = (*fdHandle)(nil)

func openDevice(path string) (Handle, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if errors.Is(err, unix.ENOENT) && path == DefaultDevicePath {
		path = LegacyDevicePath
		fd, err = unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	}
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}

	return &fdHandle{fd: fd, path: path}, nil
}

func (h *fdHandle) ConnectClient(id uuid.UUID) (ClientProperties, error) {
	var data [connectClientDataSize]byte
	putGUID(data[:], id)

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(h.fd), ioctlConnectClient, uintptr(unsafe.Pointer(&data[0])))
	if errno != 0 {
		return ClientProperties{}, errno
	}

	return decodeClientProperties(data[:]), nil
}

func (h *fdHandle) Read(p []byte) (int, error) {
	n, err := unix.Read(h.fd, p)
	if err != nil {
		return 0, err
	}

	return n, nil
}

func (h *fdHandle) Write(p []byte) (int, error) {
	n, err := unix.Write(h.fd, p)
	if err != nil {
		return 0, err
	}

	return n, nil
}

// WaitReady waits with poll(2) for the device to become writable, which the mei driver reports once
// the queued write has been consumed by the firmware. Interrupted polls are restarted with the time left.
func (h *fdHandle) WaitReady(timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	fds := []unix.PollFd{{Fd: int32(h.fd), Events: unix.POLLOUT}}

	for {
		fds[0].Revents = 0
		n, err := unix.Poll(fds, pollTimeout(time.Until(deadline)))
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, nil
		}

		revents := fds[0].Revents
		switch {
		case revents&unix.POLLNVAL != 0:
			return false, unix.EBADF
		case revents&(unix.POLLERR|unix.POLLHUP) != 0:
			return false, unix.EIO
		}

		return revents&unix.POLLOUT != 0, nil
	}
}

func (h *fdHandle) Close() error {
	if h.fd < 0 {
		return nil
	}
	fd := h.fd
	h.fd = -1

	return unix.Close(fd)
}

// decodeClientProperties decodes struct mei_client: u32 max_msg_length, u8 protocol_version, u8 reserved[3].
func decodeClientProperties(b []byte) ClientProperties {
	return ClientProperties{
		MaxMessageLength: binary.LittleEndian.Uint32(b[0:4]),
		ProtocolVersion:  b[4],
	}
}
